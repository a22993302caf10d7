package volsurface

import (
	"math"
	"strings"

	"github.com/charlerive/pricing/binomial"
	"github.com/charlerive/pricing/blackscholes"
	"github.com/charlerive/pricing/montecarlo"
	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
)

// Method engine used by PriceFromSurface
type Method uint8

const (
	MethodBSM Method = iota + 1
	MethodBinomial
	MethodMonteCarlo
)

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bsm", "black-scholes":
		return MethodBSM, nil
	case "binomial", "crr":
		return MethodBinomial, nil
	case "mc", "monte-carlo":
		return MethodMonteCarlo, nil
	}
	return 0, errors.Wrapf(option.ErrInvalidArgument, "method must be bsm, binomial or mc, got %q", s)
}

func (m Method) String() string {
	switch m {
	case MethodBSM:
		return "bsm"
	case MethodBinomial:
		return "binomial"
	case MethodMonteCarlo:
		return "mc"
	}
	return "unknown"
}

type pricing struct {
	steps    int
	american bool
	paths    int
	mc       []montecarlo.Option
}

type PriceOption func(*pricing)

// WithSteps binomial tree steps, binomial.DefaultSteps otherwise.
func WithSteps(steps int) PriceOption {
	return func(p *pricing) {
		p.steps = steps
	}
}

// WithAmerican early exercise in the binomial tree.
func WithAmerican() PriceOption {
	return func(p *pricing) {
		p.american = true
	}
}

// WithPaths Monte Carlo paths, montecarlo.DefaultPaths otherwise.
func WithPaths(paths int) PriceOption {
	return func(p *pricing) {
		p.paths = paths
	}
}

func WithMonteCarlo(opts ...montecarlo.Option) PriceOption {
	return func(p *pricing) {
		p.mc = append(p.mc, opts...)
	}
}

// PriceFromSurface prices p at the surface volatility for its strike and expiry.
// p.Vol is replaced.
func PriceFromSurface(surface Surface, p option.Params, method Method, opts ...PriceOption) (float64, error) {
	cfg := pricing{
		steps: binomial.DefaultSteps,
		paths: montecarlo.DefaultPaths,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sigma, err := surface.Vol(p.Strike, p.Expiry)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(sigma) || !(sigma > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "surface returned invalid vol %v for K=%v T=%v", sigma, p.Strike, p.Expiry)
	}
	p = p.WithVol(sigma)

	switch method {
	case MethodBSM:
		return blackscholes.Price(p)
	case MethodBinomial:
		return binomial.Price(p, cfg.steps, cfg.american)
	case MethodMonteCarlo:
		return montecarlo.European(p, cfg.paths, cfg.mc...)
	}
	return 0, errors.Wrapf(option.ErrInvalidArgument, "unknown pricing method %d", uint8(method))
}
