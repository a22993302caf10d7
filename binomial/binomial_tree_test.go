package binomial

import (
	"math"
	"testing"

	"github.com/charlerive/pricing/blackscholes"
	"github.com/charlerive/pricing/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var atm = option.Params{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Vol: 0.2, Type: option.Call}

func TestPrice_ReferenceCase(t *testing.T) {
	call, err := Price(atm, 300, false)
	require.NoError(t, err)
	assert.InDelta(t, 10.443920629424104, call, 1e-6)
	assert.InDelta(t, 10.44, call, 0.01)

	put, err := Price(atm.WithType(option.Put), 300, false)
	require.NoError(t, err)
	assert.InDelta(t, 5.566863079495813, put, 1e-6)
}

func TestPrice_OneStep(t *testing.T) {
	// single period: e^(-rT) * p * (S*u - K)
	u := math.Exp(0.2)
	d := 1 / u
	p := (math.Exp(0.05) - d) / (u - d)
	want := math.Exp(-0.05) * p * (100*u - 100)

	got, err := Price(atm, 1, false)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 12.162284964623943, got, 1e-9)
}

func TestPrice_ConvergesToBlackScholes(t *testing.T) {
	for _, typ := range []option.Type{option.Call, option.Put} {
		p := atm.WithType(typ)
		bs, err := blackscholes.Price(p)
		require.NoError(t, err)

		tree, err := Price(p, 500, false)
		require.NoError(t, err)
		assert.InDelta(t, 0, (tree-bs)/bs, 0.01, typ.String())

		coarse, err := Price(p, 10, false)
		require.NoError(t, err)
		assert.Less(t, math.Abs(tree-bs), math.Abs(coarse-bs), typ.String())
	}
}

func TestPrice_AmericanNotBelowEuropean(t *testing.T) {
	for _, p := range []option.Params{
		atm,
		atm.WithType(option.Put),
		{Spot: 100, Strike: 120, Expiry: 1, Rate: 0.05, Vol: 0.2, Type: option.Put},
		{Spot: 80, Strike: 100, Expiry: 2, Rate: 0.08, Vol: 0.35, Type: option.Put},
		{Spot: 120, Strike: 100, Expiry: 0.5, Rate: 0.01, Vol: 0.15, Type: option.Call},
	} {
		european, err := Price(p, 200, false)
		require.NoError(t, err)
		american, err := Price(p, 200, true)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, american, european, "%+v", p)
	}
}

func TestPrice_American(t *testing.T) {
	put, err := Price(atm.WithType(option.Put), 300, true)
	require.NoError(t, err)
	assert.InDelta(t, 6.087722614368117, put, 1e-6)

	deep, err := Price(option.Params{Spot: 100, Strike: 120, Expiry: 1, Rate: 0.05, Vol: 0.2, Type: option.Put}, 300, true)
	require.NoError(t, err)
	assert.InDelta(t, 20.133348680644822, deep, 1e-6)

	// no dividends: early exercise of a call is never optimal
	call, err := Price(atm, 300, true)
	require.NoError(t, err)
	european, err := Price(atm, 300, false)
	require.NoError(t, err)
	assert.InDelta(t, european, call, 1e-12)
}

func TestPrice_InvalidInputs(t *testing.T) {
	_, err := Price(atm, 0, false)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)
	_, err = Price(atm, -3, true)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)
	_, err = Price(atm.WithType(0), 100, false)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)
	_, err = Price(atm.WithVol(0), 100, false)
	assert.ErrorIs(t, err, option.ErrDomain)
	_, err = Price(option.Params{Spot: 100, Strike: 100, Expiry: -1, Vol: 0.2, Type: option.Call}, 100, false)
	assert.ErrorIs(t, err, option.ErrDomain)
}

func TestPrice_DegenerateProbability(t *testing.T) {
	// growth e^(r*dt) above the up factor pushes p over 1
	p := option.Params{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.5, Vol: 0.001, Type: option.Call}
	_, err := Price(p, 1, false)
	assert.ErrorIs(t, err, option.ErrDomain)

	// and a deeply negative rate below the down factor pushes it under 0
	p.Rate = -0.5
	_, err = Price(p.WithType(option.Put), 1, false)
	assert.ErrorIs(t, err, option.ErrDomain)
}

func BenchmarkPrice(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Price(atm, 300, true)
	}
}
