// ./internal/apr/Calculator_test.go
package apr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-12)
}

func TestLPDailyAPR(t *testing.T) {
	status := types.LiquidityPoolStatus{
		Pool: types.LiquidityPool{
			Dex: types.Minswap, Asset: types.IUSD, OtherAssetName: "ADA", LPTokenID: "pol1.tok1",
		},
		AssetBalance:      100,
		SupplySet:         true,
		LPTokenCircSupply: 1000,
		LPTokenStaked:     500,
	}

	// Staked share of the pool holds 50 iUSD worth 2 ADA each, earning
	// 10 INDY a day at 4 ADA each: (10*4)/(2*50*2)*365.
	apr, err := LPDailyAPR(status, 2, 10, 4)
	require.NoError(t, err)
	assert.InDelta(t, 73, apr, 1e-9)
}

func TestLPDailyAPRRequiresSupplies(t *testing.T) {
	status := types.LiquidityPoolStatus{
		Pool:         types.LiquidityPool{LPTokenID: "pol1.tok1"},
		AssetBalance: 100,
	}

	_, err := LPDailyAPR(status, 2, 10, 4)
	assert.Error(t, err)
}

func TestLPDailyAPRRejectsDegenerateInputs(t *testing.T) {
	status := types.LiquidityPoolStatus{
		Pool:              types.LiquidityPool{LPTokenID: "pol1.tok1"},
		AssetBalance:      0,
		SupplySet:         true,
		LPTokenCircSupply: 1000,
		LPTokenStaked:     500,
	}

	_, err := LPDailyAPR(status, 2, 10, 4)
	assert.Error(t, err)
}

func TestSPDailyAPRFormula(t *testing.T) {
	day := epoch.Date(2023, 3, 25)
	supplies := map[types.Asset]float64{types.IUSD: 200}
	prices := map[types.Asset]float64{types.IUSD: 2}
	rewards := []types.AssetReward{{Asset: types.IUSD, Indy: 10, Day: day}}

	apr, err := spDailyAPR(types.IUSD, supplies, prices, rewards, 4)
	require.NoError(t, err)
	assert.InDelta(t, 36.5, apr, 1e-9)
}

func TestSPDailyAPRAmbiguousReward(t *testing.T) {
	day := epoch.Date(2023, 3, 25)
	supplies := map[types.Asset]float64{types.IUSD: 200}
	prices := map[types.Asset]float64{types.IUSD: 2}

	_, err := spDailyAPR(types.IUSD, supplies, prices, nil, 4)
	assert.ErrorIs(t, err, ErrAmbiguousReward)

	rewards := []types.AssetReward{
		{Asset: types.IUSD, Indy: 10, Day: day},
		{Asset: types.IUSD, Indy: 20, Day: day},
	}
	_, err = spDailyAPR(types.IUSD, supplies, prices, rewards, 4)
	assert.ErrorIs(t, err, ErrAmbiguousReward)
}

func TestSinglePoolReward(t *testing.T) {
	day := epoch.Date(2023, 3, 25)
	pool := types.LiquidityPool{Dex: types.Minswap, Asset: types.IUSD, OtherAssetName: "ADA", LPTokenID: "a"}
	other := types.LiquidityPool{Dex: types.WingRiders, Asset: types.IUSD, OtherAssetName: "ADA", LPTokenID: "b"}

	rewards := []types.LiquidityPoolReward{
		{Pool: pool, Indy: 5, Day: day},
		{Pool: other, Indy: 7, Day: day},
	}

	reward, err := singlePoolReward(rewards, pool, day)
	require.NoError(t, err)
	assert.InDelta(t, 5, reward.Indy, 1e-12)

	_, err = singlePoolReward(rewards[:1], other, day)
	assert.ErrorIs(t, err, ErrAmbiguousReward)
}
