package bsmath

import (
	"math"

	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Pdf standard normal density
func Pdf(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

/**
 * cumulative normal distribution function
 */
func Cdf(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// D1 = (ln(S/K) + (r + sigma^2/2)T) / (sigma * sqrt(T))
func D1(S, K, T, r, sigma float64) (float64, error) {
	if !(T > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "T must be positive, got %v", T)
	}
	if !(sigma > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "sigma must be positive, got %v", sigma)
	}
	if !(S > 0) || !(K > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "S and K must be positive, got S=%v K=%v", S, K)
	}
	return (math.Log(S/K) + (r+sigma*sigma/2)*T) / (sigma * math.Sqrt(T)), nil
}

// D2 = d1 - sigma * sqrt(T)
func D2(S, K, T, r, sigma float64) (float64, error) {
	d1, err := D1(S, K, T, r, sigma)
	if err != nil {
		return 0, err
	}
	return d1 - sigma*math.Sqrt(T), nil
}

// Discount risk-neutral discount factor e^(-rT)
func Discount(r, T float64) float64 {
	return math.Exp(-r * T)
}
