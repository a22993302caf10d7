package volsurface

import (
	"math"

	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
)

// SviParams raw SVI parameterization of one smile slice
type SviParams struct {
	A   float64 `json:"a"`   // variance level
	B   float64 `json:"b"`   // angle between the asymptotes
	C   float64 `json:"c"`   // smoothness at the vertex
	Rho float64 `json:"rho"` // rotation
	Eta float64 `json:"eta"` // shift
}

func (s *SviParams) Copy() *SviParams {
	return &SviParams{
		A:   s.A,
		B:   s.B,
		C:   s.C,
		Rho: s.Rho,
		Eta: s.Eta,
	}
}

// SviVolatility smile of a single expiry. Vol holds the slice's implied
// volatility constant across maturities.
type SviVolatility struct {
	*SviParams
	ForwardPrice float64 // forward of the underlying
	T            float64 // slice time to maturity in years
}

func NewSviVolatility(forwardPrice float64, T float64, p SviParams) (*SviVolatility, error) {
	s := &SviVolatility{
		SviParams:    p.Copy(),
		ForwardPrice: forwardPrice,
		T:            T,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SviVolatility) Validate() error {
	if !(s.ForwardPrice > 0) || !(s.T > 0) {
		return errors.Wrapf(option.ErrDomain, "forward and T must be positive, got F=%v T=%v", s.ForwardPrice, s.T)
	}
	if !(s.B >= 0) {
		return errors.Wrapf(option.ErrInvalidArgument, "svi b must be non-negative, got %v", s.B)
	}
	if !(math.Abs(s.Rho) < 1) {
		return errors.Wrapf(option.ErrInvalidArgument, "svi rho must lie in (-1, 1), got %v", s.Rho)
	}
	return nil
}

// GetVariance total implied variance w(k) at the strike, k = ln(K/F)
func (s *SviVolatility) GetVariance(strikePrice float64) float64 {
	kM := math.Log(strikePrice/s.ForwardPrice) - s.Eta
	return Variance(kM, s.A, s.B, s.C, s.Rho)
}

// GetImVol sqrt(w(k) / T)
func (s *SviVolatility) GetImVol(strikePrice float64) (float64, error) {
	if !(strikePrice > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "strike must be positive, got %v", strikePrice)
	}
	w := s.GetVariance(strikePrice)
	if !(w >= 0) {
		return 0, errors.Wrapf(option.ErrDomain, "negative svi total variance %v at strike %v", w, strikePrice)
	}
	return math.Sqrt(w / s.T), nil
}

func (s *SviVolatility) Vol(strike, expiry float64) (float64, error) {
	if !(expiry > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "expiry must be positive, got %v", expiry)
	}
	return s.GetImVol(strike)
}

// Smile implied volatilities for a strip of strikes.
func (s *SviVolatility) Smile(strikes []float64) ([]float64, error) {
	kList := make([]float64, 0, len(strikes))
	for _, strike := range strikes {
		if !(strike > 0) {
			return nil, errors.Wrapf(option.ErrDomain, "strike must be positive, got %v", strike)
		}
		kList = append(kList, math.Log(strike/s.ForwardPrice))
	}
	res := TotalVariance(kList, s.SviParams)
	for i, w := range res {
		if !(w >= 0) {
			return nil, errors.Wrapf(option.ErrDomain, "negative svi total variance %v at strike %v", w, strikes[i])
		}
		res[i] = math.Sqrt(w / s.T)
	}
	return res, nil
}

func Variance(kM, a, b, c, rho float64) float64 {
	return a + b*(rho*kM+math.Sqrt(kM*kM+c*c))
}

func TotalVariance(kList []float64, p *SviParams) []float64 {
	res := make([]float64, 0, len(kList))
	for _, k := range kList {
		res = append(res, Variance(k-p.Eta, p.A, p.B, p.C, p.Rho))
	}
	return res
}
