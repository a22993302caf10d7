package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/charlerive/pricing/binomial"
	"github.com/charlerive/pricing/blackscholes"
	"github.com/charlerive/pricing/montecarlo"
	"github.com/charlerive/pricing/option"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Settings struct {
	Steps int    `json:"steps"` // binomial tree steps
	Paths int    `json:"paths"` // monte carlo paths
	Seed  uint64 `json:"seed"`
}

func DefaultSettings() Settings {
	return Settings{
		Steps: binomial.DefaultSteps,
		Paths: montecarlo.DefaultPaths,
		Seed:  42,
	}
}

// Report the three engines priced with identical inputs.
type Report struct {
	Params       option.Params       `json:"params"`
	Settings     Settings            `json:"settings"`
	BlackScholes float64             `json:"black_scholes"`
	Greeks       blackscholes.Greeks `json:"greeks"`
	Binomial     float64             `json:"binomial"`
	American     float64             `json:"american"`
	MonteCarlo   montecarlo.Estimate `json:"monte_carlo"`
}

// Run prices p with every engine concurrently. The first engine error is returned as is.
func Run(p option.Params, s Settings) (*Report, error) {
	r := &Report{Params: p, Settings: s}

	var g errgroup.Group
	g.Go(func() error {
		bsm, err := blackscholes.NewBSM(p)
		if err != nil {
			return err
		}
		r.BlackScholes, r.Greeks = bsm.Price, bsm.Greeks
		return nil
	})
	g.Go(func() (err error) {
		r.Binomial, err = binomial.Price(p, s.Steps, false)
		return err
	})
	g.Go(func() (err error) {
		r.American, err = binomial.Price(p, s.Steps, true)
		return err
	})
	g.Go(func() (err error) {
		r.MonteCarlo, err = montecarlo.EuropeanEstimate(p, s.Paths, montecarlo.WithSeed(s.Seed))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// BinomialDiff relative difference of the european tree to the closed form.
func (r *Report) BinomialDiff() float64 {
	return relDiff(r.Binomial, r.BlackScholes)
}

func (r *Report) MonteCarloDiff() float64 {
	return relDiff(r.MonteCarlo.Price, r.BlackScholes)
}

// EarlyExercisePremium american minus european tree price.
func (r *Report) EarlyExercisePremium() float64 {
	return r.American - r.Binomial
}

// Converged both approximations within tol of the closed form, relative.
func (r *Report) Converged(tol float64) bool {
	return math.Abs(r.BinomialDiff()) <= tol && math.Abs(r.MonteCarloDiff()) <= tol
}

func (r *Report) Table() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "=================== MODEL COMPARISON ===================")
	row(b, "Black–Scholes (Closed Form):", fixed(r.BlackScholes))
	row(b, fmt.Sprintf("Binomial Tree (%d steps):", r.Settings.Steps),
		fixed(r.Binomial)+"  ("+percent(r.BinomialDiff())+")")
	row(b, fmt.Sprintf("Binomial American (%d steps):", r.Settings.Steps), fixed(r.American))
	row(b, fmt.Sprintf("Monte Carlo (%d paths):", r.MonteCarlo.Paths),
		fixed(r.MonteCarlo.Price)+"  ("+percent(r.MonteCarloDiff())+", se "+fixed(r.MonteCarlo.StdErr)+")")
	fmt.Fprintln(b, "========================================================")
	fmt.Fprintf(b, "MC vs BSM difference: %s\n", fixed(math.Abs(r.MonteCarlo.Price-r.BlackScholes)))
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-34s%s\n", label, value)
}

func relDiff(x, ref float64) float64 {
	if ref == 0 {
		if x == 0 {
			return 0
		}
		return math.Copysign(math.Inf(1), x)
	}
	return (x - ref) / ref
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

func percent(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v * 100).StringFixed(3) + "%"
}
