package binomial

import (
	"math"

	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
)

const DefaultSteps = 200

// Price Cox–Ross–Rubinstein binomial tree, european or american exercise.
//
// u = e^(sigma*sqrt(dt)), d = 1/u, p = (e^(r*dt) - d) / (u - d).
// A risk-neutral probability outside [0, 1] is reported as option.ErrDomain.
func Price(p option.Params, steps int, american bool) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if steps < 1 {
		return 0, errors.Wrapf(option.ErrInvalidArgument, "steps must be positive, got %d", steps)
	}

	dt := p.Expiry / float64(steps)
	u := math.Exp(p.Vol * math.Sqrt(dt))
	d := 1 / u
	prob := (math.Exp(p.Rate*dt) - d) / (u - d)
	if !(prob >= 0 && prob <= 1) {
		return 0, errors.Wrapf(option.ErrDomain,
			"risk-neutral probability %v outside [0, 1] (u=%v d=%v dt=%v)", prob, u, d, dt)
	}
	disc := math.Exp(-p.Rate * dt)

	// prices[j] underlying after j up moves at the current level
	prices := make([]float64, steps+1)
	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		prices[j] = p.Spot * math.Pow(u, float64(j)) * math.Pow(d, float64(steps-j))
		values[j] = p.Type.Payoff(prices[j], p.Strike)
	}

	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			continuation := disc * (prob*values[j+1] + (1-prob)*values[j])
			// one level back, j up moves: S*u^j*d^(i-j)
			prices[j] *= u
			if american {
				values[j] = math.Max(continuation, p.Type.Payoff(prices[j], p.Strike))
			} else {
				values[j] = continuation
			}
		}
	}
	return values[0], nil
}
