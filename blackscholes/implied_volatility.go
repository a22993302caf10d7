package blackscholes

import (
	"math"

	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
)

const (
	MaxExecTimes = 100

	DefaultIvMin     = 1e-6
	DefaultIvMax     = 5.0
	DefaultOpEpsilon = 1e-8 // price precision

	// interpolation steps before falling back to plain bisection
	secantSteps = 5
	ivEpsilon   = 1e-12
)

type ivSettings struct {
	ivMin, ivMax float64
	opEpsilon    float64
	maxExecTimes int
}

type IVOption func(*ivSettings)

// WithBounds volatility bracket searched for the root.
func WithBounds(ivMin, ivMax float64) IVOption {
	return func(s *ivSettings) {
		s.ivMin, s.ivMax = ivMin, ivMax
	}
}

// WithTolerance absolute price error accepted as converged.
func WithTolerance(opEpsilon float64) IVOption {
	return func(s *ivSettings) {
		s.opEpsilon = opEpsilon
	}
}

func WithMaxIterations(n int) IVOption {
	return func(s *ivSettings) {
		s.maxExecTimes = n
	}
}

// ImpliedVolatility finds sigma with Price(p.WithVol(sigma)) == marketPrice. p.Vol is ignored.
//
// The root is kept bracketed the whole time: the first steps interpolate linearly
// between the bracket prices, the rest bisect. An empty bracket, for instance a price
// outside the arbitrage bounds, or an exhausted budget returns option.ErrConvergence.
func ImpliedVolatility(marketPrice float64, p option.Params, opts ...IVOption) (float64, error) {
	s := ivSettings{
		ivMin:        DefaultIvMin,
		ivMax:        DefaultIvMax,
		opEpsilon:    DefaultOpEpsilon,
		maxExecTimes: MaxExecTimes,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if err := p.Type.Validate(); err != nil {
		return 0, err
	}
	if err := p.ValidateMarket(); err != nil {
		return 0, err
	}
	if !(marketPrice > 0) || math.IsInf(marketPrice, 0) {
		return 0, errors.Wrapf(option.ErrInvalidArgument, "market price must be positive, got %v", marketPrice)
	}
	if !(s.ivMin > 0) || !(s.ivMax > s.ivMin) {
		return 0, errors.Wrapf(option.ErrInvalidArgument, "invalid volatility bounds [%v, %v]", s.ivMin, s.ivMax)
	}
	if s.maxExecTimes < 1 {
		return 0, errors.Wrapf(option.ErrInvalidArgument, "max iterations must be positive, got %d", s.maxExecTimes)
	}

	priceAt := func(iv float64) (float64, error) {
		return Price(p.WithVol(iv))
	}

	ivMin, ivMax := s.ivMin, s.ivMax
	opMin, err := priceAt(ivMin)
	if err != nil {
		return 0, err
	}
	opMax, err := priceAt(ivMax)
	if err != nil {
		return 0, err
	}
	if math.Abs(opMin-marketPrice) < s.opEpsilon {
		return ivMin, nil
	}
	if math.Abs(opMax-marketPrice) < s.opEpsilon {
		return ivMax, nil
	}
	// the price is increasing in sigma
	if marketPrice < opMin || marketPrice > opMax {
		return 0, errors.Wrapf(option.ErrConvergence,
			"implied vol not bracketed: price %v outside [%v, %v] for sigma in [%v, %v]",
			marketPrice, opMin, opMax, ivMin, ivMax)
	}

	for execCount := 0; execCount < s.maxExecTimes; execCount++ {
		var iv float64
		if execCount < secantSteps && opMax > opMin {
			iv = ivMin + (marketPrice-opMin)*(ivMax-ivMin)/(opMax-opMin)
		}
		if iv <= ivMin || iv >= ivMax {
			iv = (ivMax + ivMin) / 2
		}

		op, err := priceAt(iv)
		if err != nil {
			return 0, err
		}
		if math.Abs(op-marketPrice) < s.opEpsilon {
			return iv, nil
		}
		if op < marketPrice {
			ivMin, opMin = iv, op
		} else {
			ivMax, opMax = iv, op
		}
		if ivMax-ivMin < ivEpsilon {
			return (ivMax + ivMin) / 2, nil
		}
	}
	return 0, errors.Wrapf(option.ErrConvergence,
		"implied vol did not converge within %d iterations, bracket [%v, %v]", s.maxExecTimes, ivMin, ivMax)
}
