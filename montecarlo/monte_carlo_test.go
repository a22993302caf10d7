package montecarlo

import (
	"math"
	"runtime"
	"testing"

	"github.com/charlerive/pricing/blackscholes"
	"github.com/charlerive/pricing/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

var atm = option.Params{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Vol: 0.2, Type: option.Call}

func TestEuropean_ReferenceCase(t *testing.T) {
	bs, err := blackscholes.Price(atm)
	require.NoError(t, err)

	est, err := EuropeanEstimate(atm, 500000, WithSeed(42))
	require.NoError(t, err)
	assert.Equal(t, 500000, est.Paths)
	assert.GreaterOrEqual(t, est.Price, 10.40)
	assert.LessOrEqual(t, est.Price, 10.55)
	assert.Less(t, math.Abs(est.Price-bs), 4*est.StdErr)

	est, err = EuropeanEstimate(atm, 50000, WithSeed(42))
	require.NoError(t, err)
	assert.Less(t, est.StdErr, 0.1)
	assert.Less(t, math.Abs(est.Price-bs), 5*est.StdErr)
}

func TestEuropean_Deterministic(t *testing.T) {
	a, err := European(atm, 50000, WithSeed(2024))
	require.NoError(t, err)
	b, err := European(atm, 50000, WithSeed(2024))
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(a), math.Float64bits(b))

	c, err := European(atm, 50000, WithSeed(2025))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	x, err := European(atm, 10001, WithSource(rand.NewSource(9)))
	require.NoError(t, err)
	y, err := European(atm, 10001, WithSource(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(x), math.Float64bits(y))
}

func TestEuropean_IndependentOfParallelism(t *testing.T) {
	parallel, err := European(atm, 100000, WithSeed(11))
	require.NoError(t, err)

	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)
	serial, err := European(atm, 100000, WithSeed(11))
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(parallel), math.Float64bits(serial))
}

func TestEuropean_Unbiased(t *testing.T) {
	for _, typ := range []option.Type{option.Call, option.Put} {
		p := atm.WithType(typ)
		bs, err := blackscholes.Price(p)
		require.NoError(t, err)

		const runs = 20
		prices := make([]float64, runs)
		variance := 0.0
		for i := range prices {
			est, err := EuropeanEstimate(p, 20000, WithSeed(uint64(100+i)))
			require.NoError(t, err)
			prices[i] = est.Price
			variance += est.StdErr * est.StdErr
		}
		se := math.Sqrt(variance) / runs
		assert.Less(t, math.Abs(stat.Mean(prices, nil)-bs), 4*se, typ.String())
	}
}

func TestEuropean_AntitheticReducesVariance(t *testing.T) {
	const n = 20000
	est, err := EuropeanEstimate(atm, n, WithSource(rand.NewSource(5)))
	require.NoError(t, err)

	// plain estimator over n independent draws
	rng := rand.New(rand.NewSource(5))
	drift := (atm.Rate - atm.Vol*atm.Vol/2) * atm.Expiry
	payoffs := make([]float64, n)
	for i := range payoffs {
		st := atm.Spot * math.Exp(drift+atm.Vol*math.Sqrt(atm.Expiry)*rng.NormFloat64())
		payoffs[i] = atm.Type.Payoff(st, atm.Strike)
	}
	_, std := stat.MeanStdDev(payoffs, nil)
	plain := math.Exp(-atm.Rate*atm.Expiry) * std / math.Sqrt(n)

	assert.Less(t, est.StdErr, plain)
}

func TestEuropean_OddPaths(t *testing.T) {
	est, err := EuropeanEstimate(atm, 3, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 4, est.Paths)

	est, err = EuropeanEstimate(atm, 1, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 2, est.Paths)
	assert.Equal(t, 0.0, est.StdErr)
	assert.GreaterOrEqual(t, est.Price, 0.0)
}

func TestEuropean_InvalidInputs(t *testing.T) {
	_, err := European(atm, 0)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)
	_, err = European(atm, -10)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)
	_, err = European(atm.WithType(0), 100)
	assert.ErrorIs(t, err, option.ErrInvalidArgument)
	_, err = European(atm.WithVol(0), 100)
	assert.ErrorIs(t, err, option.ErrDomain)
	_, err = European(option.Params{Spot: 0, Strike: 100, Expiry: 1, Vol: 0.2, Type: option.Put}, 100)
	assert.ErrorIs(t, err, option.ErrDomain)
	_, err = European(option.Params{Spot: 100, Strike: 100, Expiry: 0, Vol: 0.2, Type: option.Put}, 100)
	assert.ErrorIs(t, err, option.ErrDomain)
}

func TestEuropean_Unseeded(t *testing.T) {
	price, err := European(atm, 20000)
	require.NoError(t, err)
	assert.InDelta(t, 10.45, price, 0.5)
}

func BenchmarkEuropean(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = European(atm, DefaultPaths, WithSeed(uint64(i)))
	}
}
