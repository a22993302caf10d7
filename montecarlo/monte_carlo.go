package montecarlo

import (
	"math"
	"runtime"
	"time"

	"github.com/charlerive/pricing/bsmath"
	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultPaths = 50000

	// antithetic pairs drawn from one block source
	blockPairs = 1 << 12
)

// Estimate discounted mean payoff and its standard error.
type Estimate struct {
	Price  float64 `json:"price"`
	StdErr float64 `json:"std_err"`
	Paths  int     `json:"paths"` // draws actually used, originals plus antithetic
}

type settings struct {
	src    rand.Source
	seed   uint64
	seeded bool
}

type Option func(*settings)

// WithSeed makes the run reproducible. Blocks of pairs get their own source derived
// from seed and the block index, so the result does not depend on GOMAXPROCS.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed, s.seeded = seed, true
	}
}

// WithSource draws every variate sequentially from src. The source is used from a
// single goroutine and must not be shared with concurrent calls.
func WithSource(src rand.Source) Option {
	return func(s *settings) {
		s.src = src
	}
}

// European prices a european option from simulated terminal prices under GBM.
func European(p option.Params, nPaths int, opts ...Option) (float64, error) {
	est, err := EuropeanEstimate(p, nPaths, opts...)
	if err != nil {
		return 0, err
	}
	return est.Price, nil
}

// EuropeanEstimate draws ceil(nPaths/2) normals z, prices each with its antithetic -z,
// and discounts the mean payoff. An odd nPaths is rounded up to the next even count.
//
// S_T = S * e^((r - sigma^2/2)T + sigma*sqrt(T)*z)
func EuropeanEstimate(p option.Params, nPaths int, opts ...Option) (Estimate, error) {
	if err := p.Type.Validate(); err != nil {
		return Estimate{}, err
	}
	if nPaths < 1 {
		return Estimate{}, errors.Wrapf(option.ErrInvalidArgument, "n_paths must be positive, got %d", nPaths)
	}
	if err := p.Validate(); err != nil {
		return Estimate{}, err
	}

	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	pairs := (nPaths + 1) / 2
	gbm := terminal{
		params:    p,
		drift:     (p.Rate - p.Vol*p.Vol/2) * p.Expiry,
		diffusion: p.Vol * math.Sqrt(p.Expiry),
	}
	pairMeans := make([]float64, pairs)

	if s.src != nil {
		gbm.simulate(pairMeans, rand.New(s.src))
	} else {
		seed := s.seed
		if !s.seeded {
			seed = uint64(time.Now().UnixNano())
		}
		g := errgroup.Group{}
		g.SetLimit(runtime.GOMAXPROCS(0))
		for block := 0; block*blockPairs < pairs; block++ {
			lo := block * blockPairs
			hi := lo + blockPairs
			if hi > pairs {
				hi = pairs
			}
			rng := rand.New(rand.NewSource(blockSeed(seed, block)))
			g.Go(func() error {
				gbm.simulate(pairMeans[lo:hi], rng)
				return nil
			})
		}
		_ = g.Wait()
	}

	df := bsmath.Discount(p.Rate, p.Expiry)
	est := Estimate{Paths: 2 * pairs}
	if pairs < 2 {
		est.Price = df * pairMeans[0]
		return est, nil
	}
	mean, std := stat.MeanStdDev(pairMeans, nil)
	est.Price = df * mean
	// pair means are independent, the draws within a pair are not
	est.StdErr = df * std / math.Sqrt(float64(pairs))
	return est, nil
}

type terminal struct {
	params    option.Params
	drift     float64
	diffusion float64
}

func (t terminal) simulate(out []float64, rng *rand.Rand) {
	s, k, typ := t.params.Spot, t.params.Strike, t.params.Type
	for i := range out {
		z := rng.NormFloat64()
		up := s * math.Exp(t.drift+t.diffusion*z)
		down := s * math.Exp(t.drift-t.diffusion*z)
		out[i] = (typ.Payoff(up, k) + typ.Payoff(down, k)) / 2
	}
}

// blockSeed splitmix64 of the seed advanced by block
func blockSeed(seed uint64, block int) uint64 {
	z := seed + uint64(block+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
