package volsurface

import (
	"math"
	"sort"

	"github.com/charlerive/pricing/option"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Surface implied volatility by strike and time to maturity.
type Surface interface {
	Vol(strike, expiry float64) (float64, error)
}

type Point struct {
	Expiry float64 `json:"maturity"`
	Strike float64 `json:"strike"`
	IV     float64 `json:"iv"` // decimal, 0.22 for 22%
}

// Grid implied volatilities on a full expiry x strike grid.
// Linear in strike along each expiry, then linear in expiry; flat outside the grid.
type Grid struct {
	expiries []float64
	strikes  []float64
	iv       [][]float64 // [expiry][strike]
	rows     []interp.PiecewiseLinear
}

// NewGrid every expiry x strike combination must be present exactly once.
func NewGrid(points []Point) (*Grid, error) {
	if len(points) == 0 {
		return nil, errors.Wrap(option.ErrInvalidArgument, "vol grid needs at least one point")
	}
	expiries, strikes := make([]float64, 0), make([]float64, 0)
	for _, pt := range points {
		if !(pt.Expiry > 0) || !(pt.Strike > 0) || math.IsInf(pt.Expiry, 0) || math.IsInf(pt.Strike, 0) {
			return nil, errors.Wrapf(option.ErrInvalidArgument, "invalid grid node %+v", pt)
		}
		if !(pt.IV > 0) || math.IsInf(pt.IV, 0) {
			return nil, errors.Wrapf(option.ErrDomain, "iv must be positive, got %+v", pt)
		}
		expiries = append(expiries, pt.Expiry)
		strikes = append(strikes, pt.Strike)
	}
	g := &Grid{
		expiries: unique(expiries),
		strikes:  unique(strikes),
	}
	if len(g.expiries)*len(g.strikes) != len(points) {
		return nil, errors.Wrapf(option.ErrInvalidArgument,
			"vol grid is not rectangular: %d expiries x %d strikes but %d points",
			len(g.expiries), len(g.strikes), len(points))
	}

	g.iv = make([][]float64, len(g.expiries))
	for i := range g.iv {
		g.iv[i] = make([]float64, len(g.strikes))
		for j := range g.iv[i] {
			g.iv[i][j] = math.NaN()
		}
	}
	for _, pt := range points {
		i := sort.SearchFloat64s(g.expiries, pt.Expiry)
		j := sort.SearchFloat64s(g.strikes, pt.Strike)
		if !math.IsNaN(g.iv[i][j]) {
			return nil, errors.Wrapf(option.ErrInvalidArgument, "duplicate grid node expiry=%v strike=%v", pt.Expiry, pt.Strike)
		}
		g.iv[i][j] = pt.IV
	}

	if err := g.fit(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) fit() error {
	if len(g.strikes) < 2 {
		return nil
	}
	g.rows = make([]interp.PiecewiseLinear, len(g.expiries))
	for i := range g.rows {
		if err := g.rows[i].Fit(g.strikes, g.iv[i]); err != nil {
			return errors.Wrapf(option.ErrInvalidArgument, "fit strikes at expiry %v: %s", g.expiries[i], err)
		}
	}
	return nil
}

func (g *Grid) Vol(strike, expiry float64) (float64, error) {
	if !(strike > 0) || !(expiry > 0) {
		return 0, errors.Wrapf(option.ErrDomain, "strike and expiry must be positive, got K=%v T=%v", strike, expiry)
	}

	column := make([]float64, len(g.expiries))
	for i := range column {
		if g.rows == nil {
			column[i] = g.iv[i][0]
		} else {
			column[i] = g.rows[i].Predict(strike)
		}
	}
	if len(column) == 1 {
		return column[0], nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(g.expiries, column); err != nil {
		return 0, errors.Wrapf(option.ErrInvalidArgument, "fit expiries: %s", err)
	}
	return pl.Predict(expiry), nil
}

// Shock returns a new grid with every iv shifted by bump, 0.02 for +200bps.
func (g *Grid) Shock(bump float64) (*Grid, error) {
	points := g.Points()
	for i := range points {
		points[i].IV += bump
	}
	ivs := make([]float64, len(points))
	for i, pt := range points {
		ivs[i] = pt.IV
	}
	if m := floats.Min(ivs); !(m > 0) {
		return nil, errors.Wrapf(option.ErrDomain, "shock %v leaves a non-positive iv %v", bump, m)
	}
	return NewGrid(points)
}

// Points grid nodes ordered by expiry then strike.
func (g *Grid) Points() []Point {
	points := make([]Point, 0, len(g.expiries)*len(g.strikes))
	for i, expiry := range g.expiries {
		for j, strike := range g.strikes {
			points = append(points, Point{Expiry: expiry, Strike: strike, IV: g.iv[i][j]})
		}
	}
	return points
}

func unique(xs []float64) []float64 {
	sort.Float64s(xs)
	out := xs[:0]
	for _, x := range xs {
		if len(out) == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
