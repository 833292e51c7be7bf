/*

This file calculates stability pool staking APRs per asset.

*/

package apr

import (
	"fmt"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// SPEpochAPRs returns the mean daily APR of every stability pool over an
// epoch.
func (c *Calculator) SPEpochAPRs(epochNumber int, epochIndy float64) (map[types.StabilityPool]float64, error) {
	indyPrices, err := c.indyPrices.INDYADADailyClosingPrices()
	if err != nil {
		return nil, err
	}

	dailyAPRs := make(map[types.StabilityPool][]float64)
	for _, day := range epoch.SnapshotDates(epochNumber) {
		daily, err := c.SPDailyAPRs(day, epochIndy, indyPrices)
		if err != nil {
			return nil, err
		}
		for sp, apr := range daily {
			dailyAPRs[sp] = append(dailyAPRs[sp], apr)
		}
	}

	aprs := make(map[types.StabilityPool]float64, len(dailyAPRs))
	for sp, values := range dailyAPRs {
		aprs[sp] = mean(values)
	}
	return aprs, nil
}

// SPDailyAPRs returns each stability pool's APR for one day. indyPrices may
// be nil, in which case they're fetched.
func (c *Calculator) SPDailyAPRs(day time.Time, epochIndy float64, indyPrices map[time.Time]float64) (map[types.StabilityPool]float64, error) {
	if indyPrices == nil {
		var err error
		indyPrices, err = c.indyPrices.INDYADADailyClosingPrices()
		if err != nil {
			return nil, err
		}
	}

	assetPrices, err := c.market.AssetADAPrices(day)
	if err != nil {
		return nil, err
	}
	spSupplies, err := c.market.StabilityPoolSupplies(day)
	if err != nil {
		return nil, err
	}

	// Assume each pool has at least one staker, except on an asset's
	// launch day when nobody is eligible yet.
	hasStakers := make(map[types.Asset]bool)
	for _, asset := range config.ActiveAssets(day) {
		if !config.IsLaunchDay(asset, day) {
			hasStakers[asset] = true
		}
	}

	poolRewards, err := c.engine.SPPoolRewards(day, epochIndy, hasStakers)
	if err != nil {
		return nil, err
	}

	indyPrice, ok := indyPrices[epoch.FromTime(day)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingIndyPrice, day.Format("2006-01-02"))
	}

	aprs := make(map[types.StabilityPool]float64, len(hasStakers))
	for asset := range hasStakers {
		apr, err := spDailyAPR(asset, spSupplies, assetPrices, poolRewards, indyPrice)
		if err != nil {
			return nil, err
		}
		aprs[types.StabilityPool{Asset: asset}] = apr
	}
	return aprs, nil
}

// spDailyAPR calculates one pool's INDY-based APR for a day.
//
//	a is the iAsset amount staked in the stability pool.
//	b is the iAsset's closing price in ADA.
//	c is the day's INDY award for the pool.
//	d is INDY's closing price in ADA.
func spDailyAPR(
	asset types.Asset,
	spSupplies map[types.Asset]float64,
	assetPrices map[types.Asset]float64,
	poolRewards []types.AssetReward,
	indyADAPrice float64,
) (float64, error) {
	a, ok := spSupplies[asset]
	if !ok {
		return 0, fmt.Errorf("no stability pool supply for %s", asset.Name())
	}
	b, ok := assetPrices[asset]
	if !ok {
		return 0, fmt.Errorf("no ADA price for %s", asset.Name())
	}

	var c float64
	var count int
	for _, reward := range poolRewards {
		if reward.Asset == asset {
			c = reward.Indy
			count++
		}
	}
	if count != 1 {
		return 0, fmt.Errorf("%w for asset %s, got %d", ErrAmbiguousReward, asset.Name(), count)
	}

	apr := (c * indyADAPrice) / (a * b) * 365
	if err := validAPR(apr, asset.Name()); err != nil {
		return 0, err
	}
	return apr, nil
}
