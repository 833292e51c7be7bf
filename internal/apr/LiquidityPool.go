/*

This file calculates LP token staking APRs per individual dex pool.

Different pools of the same iAsset can have different APRs, depending on
how many of each pool's LP tokens are staked to the protocol relative to
the token's circulating supply.

*/

package apr

import (
	"fmt"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/distribution"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// LPEpochAPRs returns the mean daily APR of every pool over an epoch. With
// onlyDay set, only that snapshot day is included.
func (c *Calculator) LPEpochAPRs(epochNumber int, epochIndy float64, onlyDay *time.Time) (map[types.LiquidityPool]float64, error) {
	indyPrices, err := c.indyPrices.INDYADADailyClosingPrices()
	if err != nil {
		return nil, err
	}

	dailyAPRs := make(map[types.LiquidityPool][]float64)
	for _, day := range epoch.SnapshotDates(epochNumber) {
		if onlyDay != nil && !epoch.FromTime(*onlyDay).Equal(day) {
			continue
		}

		assetPrices, err := c.market.AssetADAPrices(day)
		if err != nil {
			return nil, err
		}
		statuses, err := c.market.LPStatus(day, true)
		if err != nil {
			return nil, err
		}
		groupRewards, err := c.engine.LPGroupRewards(day, epochIndy)
		if err != nil {
			return nil, err
		}
		poolRewards := distribution.DistributeToPools(groupRewards, statuses, day)

		indyPrice, ok := indyPrices[day]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingIndyPrice, day.Format("2006-01-02"))
		}

		for _, status := range statuses {
			reward, err := singlePoolReward(poolRewards, status.Pool, day)
			if err != nil {
				return nil, err
			}
			apr, err := LPDailyAPR(status, assetPrices[status.Pool.Asset], reward.Indy, indyPrice)
			if err != nil {
				return nil, err
			}
			dailyAPRs[status.Pool] = append(dailyAPRs[status.Pool], apr)
		}
	}

	aprs := make(map[types.LiquidityPool]float64, len(dailyAPRs))
	for pool, values := range dailyAPRs {
		aprs[pool] = mean(values)
	}

	aprLogger.Debug().Int("epoch", epochNumber).Int("pools", len(aprs)).Msg("Calculated LP APRs")

	return aprs, nil
}

// LPDailyAPR calculates a pool's INDY-based APR for one day.
//
//	a is the pool's iAsset amount whose LP tokens are staked to the protocol.
//	b is the iAsset's closing price in ADA.
//	c is the day's INDY award for the pool.
//	d is INDY's closing price in ADA.
//
// The factor 2 accounts for the pool's ADA side, staked LP tokens represent
// both sides of the pair.
func LPDailyAPR(status types.LiquidityPoolStatus, assetADAPrice, rewardIndy, indyADAPrice float64) (float64, error) {
	if !status.SupplySet {
		return 0, fmt.Errorf("pool %s: LP token supply information not set", status.Pool.LPTokenID)
	}

	a := status.AssetBalance * (float64(status.LPTokenStaked) / float64(status.LPTokenCircSupply))
	b := assetADAPrice
	c := rewardIndy
	d := indyADAPrice

	apr := (c * d) / (2 * a * b) * 365
	if err := validAPR(apr, status.Pool.LPTokenID); err != nil {
		return 0, err
	}
	return apr, nil
}

func singlePoolReward(poolRewards []types.LiquidityPoolReward, pool types.LiquidityPool, day time.Time) (types.LiquidityPoolReward, error) {
	var match types.LiquidityPoolReward
	var count int
	for _, reward := range poolRewards {
		if reward.Pool == pool {
			match = reward
			count++
		}
	}
	if count != 1 {
		return types.LiquidityPoolReward{}, fmt.Errorf("%w for day %s + %s + %s, got %d",
			ErrAmbiguousReward, day.Format("2006-01-02"), pool.Dex.Name(), pool.Asset.Name(), count)
	}
	return match, nil
}
