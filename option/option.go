package option

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument wrong option type, non-positive steps or paths
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDomain non-positive S/K/T/sigma or a degenerate probability
	ErrDomain = errors.New("domain error")
	// ErrConvergence root finding without a bracket or out of iterations
	ErrConvergence = errors.New("convergence error")
)

// Type direction of the option, call or put. The zero value is invalid.
type Type uint8

const (
	Call Type = iota + 1
	Put
)

// ParseType accepts "c", "call", "p" and "put", case insensitive.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "call":
		return Call, nil
	case "p", "put":
		return Put, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "option type must be call or put, got %q", s)
}

func (t Type) Validate() error {
	switch t {
	case Call, Put:
		return nil
	}
	return errors.Wrapf(ErrInvalidArgument, "option type must be call or put, got %d", uint8(t))
}

func (t Type) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return "unknown"
}

// Payoff intrinsic value of the option at the given underlying price.
func (t Type) Payoff(spot, strike float64) float64 {
	if t == Put {
		return math.Max(strike-spot, 0)
	}
	return math.Max(spot-strike, 0)
}

// Params inputs shared by every pricing engine.
type Params struct {
	Spot   float64 `json:"subject_price"` // underlying price S
	Strike float64 `json:"strike_price"`  // strike K
	Expiry float64 `json:"rest_time"`     // time to maturity T in years
	Rate   float64 `json:"price_rate"`    // continuously compounded risk-free rate r
	Vol    float64 `json:"volatility"`    // annualized volatility sigma
	Type   Type    `json:"direction"`
}

// Validate checks the option type first, then S, K, T and sigma.
func (p Params) Validate() error {
	if err := p.Type.Validate(); err != nil {
		return err
	}
	if err := p.ValidateMarket(); err != nil {
		return err
	}
	if !(p.Vol > 0) {
		return errors.Wrapf(ErrDomain, "sigma must be positive, got %v", p.Vol)
	}
	return nil
}

// ValidateMarket checks S, K and T only. Used where sigma is the unknown.
func (p Params) ValidateMarket() error {
	if !(p.Spot > 0) {
		return errors.Wrapf(ErrDomain, "S must be positive, got %v", p.Spot)
	}
	if !(p.Strike > 0) {
		return errors.Wrapf(ErrDomain, "K must be positive, got %v", p.Strike)
	}
	if !(p.Expiry > 0) {
		return errors.Wrapf(ErrDomain, "T must be positive, got %v", p.Expiry)
	}
	return nil
}

// WithVol returns a copy of p priced at sigma.
func (p Params) WithVol(sigma float64) Params {
	p.Vol = sigma
	return p
}

// WithType returns a copy of p with the other direction or any given type.
func (p Params) WithType(t Type) Params {
	p.Type = t
	return p
}
