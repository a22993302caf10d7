package blackscholes

import (
	"math"

	"github.com/charlerive/pricing/bsmath"
	"github.com/charlerive/pricing/option"
)

// Black–Scholes model, no dividends, european exercise
// see wiki: https://en.wikipedia.org/wiki/Black%E2%80%93Scholes_model
type BSM struct {
	option.Params
	Price  float64 `json:"option_price"`
	D1     float64 `json:"d1"`
	D2     float64 `json:"d2"`
	Nd1    float64 `json:"nd1"` // density at d1
	Greeks Greeks  `json:"greeks"`
}

// Greeks raw partial derivatives of the price
type Greeks struct {
	Delta float64 `json:"delta"` // dV/dS
	Gamma float64 `json:"gamma"` // d2V/dS2
	Vega  float64 `json:"vega"`  // dV/dsigma, per 1.0 of volatility
	Theta float64 `json:"theta"` // dV/dt, per year
	Rho   float64 `json:"rho"`   // dV/dr, per 1.0 of rate
}

// MarketConvention vega and rho per 1%, theta per calendar day.
func (g Greeks) MarketConvention() Greeks {
	return Greeks{
		Delta: g.Delta,
		Gamma: g.Gamma,
		Vega:  g.Vega / 100,
		Theta: g.Theta / 365,
		Rho:   g.Rho / 100,
	}
}

// NewBSM prices p and computes its Greeks in one pass.
func NewBSM(p option.Params) (*BSM, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	bsm := &BSM{Params: p}
	if err := bsm.calcD(); err != nil {
		return nil, err
	}
	bsm.Nd1 = bsmath.Pdf(bsm.D1)
	bsm.calcPrice()
	bsm.calcGreeks()
	return bsm, nil
}

// NewBSMFromPrice solves the implied volatility of marketPrice first.
func NewBSMFromPrice(marketPrice float64, p option.Params, opts ...IVOption) (*BSM, error) {
	iv, err := ImpliedVolatility(marketPrice, p, opts...)
	if err != nil {
		return nil, err
	}
	return NewBSM(p.WithVol(iv))
}

// Price closed-form price of a european call or put.
func Price(p option.Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	bsm := &BSM{Params: p}
	if err := bsm.calcD(); err != nil {
		return 0, err
	}
	bsm.calcPrice()
	return bsm.Price, nil
}

// CalcGreeks delta, gamma, vega, theta and rho at the same d1/d2 as Price.
func CalcGreeks(p option.Params) (Greeks, error) {
	bsm, err := NewBSM(p)
	if err != nil {
		return Greeks{}, err
	}
	return bsm.Greeks, nil
}

func (bsm *BSM) calcD() (err error) {
	if bsm.D1, err = bsmath.D1(bsm.Spot, bsm.Strike, bsm.Expiry, bsm.Rate, bsm.Vol); err != nil {
		return err
	}
	bsm.D2 = bsm.D1 - bsm.Vol*math.Sqrt(bsm.Expiry)
	return nil
}

func (bsm *BSM) calcPrice() {
	df := bsmath.Discount(bsm.Rate, bsm.Expiry)
	if bsm.Type == option.Call {
		bsm.Price = bsm.Spot*bsmath.Cdf(bsm.D1) - bsm.Strike*df*bsmath.Cdf(bsm.D2)
	} else {
		bsm.Price = bsm.Strike*df*bsmath.Cdf(-bsm.D2) - bsm.Spot*bsmath.Cdf(-bsm.D1)
	}
}

func (bsm *BSM) calcGreeks() {
	sqrtT := math.Sqrt(bsm.Expiry)
	df := bsmath.Discount(bsm.Rate, bsm.Expiry)
	decay := -bsm.Spot * bsm.Nd1 * bsm.Vol / (2 * sqrtT)

	g := &bsm.Greeks
	g.Gamma = bsm.Nd1 / (bsm.Spot * bsm.Vol * sqrtT)
	g.Vega = bsm.Spot * sqrtT * bsm.Nd1
	if bsm.Type == option.Call {
		g.Delta = bsmath.Cdf(bsm.D1)
		g.Theta = decay - bsm.Rate*bsm.Strike*df*bsmath.Cdf(bsm.D2)
		g.Rho = bsm.Strike * bsm.Expiry * df * bsmath.Cdf(bsm.D2)
	} else {
		g.Delta = bsmath.Cdf(bsm.D1) - 1
		g.Theta = decay + bsm.Rate*bsm.Strike*df*bsmath.Cdf(-bsm.D2)
		g.Rho = -bsm.Strike * bsm.Expiry * df * bsmath.Cdf(-bsm.D2)
	}
}
