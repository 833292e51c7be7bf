/*

This file distributes the stability pool INDY budget. The epoch budget is
split into five daily snapshots, each day's amount is divided between the
per-asset pools by the weight engine, and each pool's cut is split
pro-rata over its accounts by staked balance.

Eligibility: an account must have been opened at least 24 hours before the
day's snapshot. iSOL accounts were exempt before the asset's whitelisting
day, their opening times predate the program.

*/

package distribution

import (
	"fmt"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/analyzer"
	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// SPEpochRewards returns every account's stability pool reward for an
// epoch, one entry per account, asset and day, and verifies the
// lovelace-rounded total matches the allocated budget. The reference is the
// allocated sum, not the nominal emission: some voted weight tables leave a
// sliver of the emission unallocated.
func (e *Engine) SPEpochRewards(epochNumber int, epochIndy float64) ([]types.IndividualReward, error) {
	var rewards []types.IndividualReward
	var allocated float64
	for _, day := range epoch.SnapshotDates(epochNumber) {
		daily, dayIndy, err := e.spDayRewards(day, epochIndy)
		if err != nil {
			return nil, fmt.Errorf("SP rewards for %s: %w", day.Format("2006-01-02"), err)
		}
		rewards = append(rewards, daily...)
		allocated += dayIndy
	}
	if err := checkEpochSum(rewards, allocated, "SP"); err != nil {
		return nil, err
	}
	return rewards, nil
}

// SPDayRewards returns every account's stability pool reward for one day.
func (e *Engine) SPDayRewards(day time.Time, epochIndy float64) ([]types.IndividualReward, error) {
	rewards, _, err := e.spDayRewards(day, epochIndy)
	return rewards, err
}

// spDayRewards also reports the day's allocated INDY, the sum of the pool
// budgets that actually had stakers to pay.
func (e *Engine) spDayRewards(day time.Time, epochIndy float64) ([]types.IndividualReward, float64, error) {
	allAccounts, err := e.market.StabilityPoolAccounts(day)
	if err != nil {
		return nil, 0, err
	}

	var eligible []types.StabilityPoolAccountRecord
	for _, account := range allAccounts {
		old, err := isAtLeast24hOld(account, day)
		if err != nil {
			return nil, 0, err
		}
		if old {
			eligible = append(eligible, account)
		}
	}
	eligible = mergeDuplicateAccounts(eligible)

	hasStakers := make(map[types.Asset]bool)
	for _, account := range eligible {
		asset, err := types.AssetFromString(account.Asset)
		if err != nil {
			return nil, 0, err
		}
		hasStakers[asset] = true
	}

	poolRewards, err := e.SPPoolRewards(day, epochIndy, hasStakers)
	if err != nil {
		return nil, 0, err
	}

	if err := checkEachAssetHasStakers(poolRewards, eligible); err != nil {
		return nil, 0, err
	}
	if err := checkEachAccountRewarded(poolRewards, allAccounts); err != nil {
		return nil, 0, err
	}

	var rewards []types.IndividualReward
	var allocated float64
	for _, poolReward := range poolRewards {
		accounts := make(map[string]float64)
		for _, account := range eligible {
			if account.Asset == poolReward.Asset.Name() {
				accounts[account.Owner] = float64(account.AssetStaked)
			}
		}
		if len(accounts) == 0 {
			continue
		}
		description := "SP reward for " + poolReward.Asset.Name()
		poolShare, err := ProRata(poolReward.Indy, accounts, day, description)
		if err != nil {
			return nil, 0, err
		}
		rewards = append(rewards, poolShare...)
		allocated += poolReward.Indy
	}

	if len(rewards) != len(eligible) {
		return nil, 0, fmt.Errorf("eligible accounts: %d, but reward items: %d", len(eligible), len(rewards))
	}

	distLogger.Debug().
		Str("day", day.Format("2006-01-02")).
		Int("accounts", len(rewards)).
		Msg("Distributed stability pool rewards")

	return rewards, allocated, nil
}

// SPPoolRewards returns the day's INDY budget of each asset's stability
// pool, split by the weight engine.
func (e *Engine) SPPoolRewards(day time.Time, epochIndy float64, hasStakers map[types.Asset]bool) ([]types.AssetReward, error) {
	saturations, err := e.market.StabilityPoolSaturations(day)
	if err != nil {
		return nil, err
	}
	marketCaps, err := e.market.AssetADAMarketCaps(day)
	if err != nil {
		return nil, err
	}

	weights, err := analyzer.StabilityPoolWeights(
		saturations, marketCaps, day, config.NewAssets(day), hasStakers,
		func() (map[types.Asset]float64, error) {
			return e.volatility.AllVolatilities(day)
		})
	if err != nil {
		return nil, err
	}

	dailyIndy := epochIndy / 5
	rewards := make([]types.AssetReward, 0, len(weights))
	for asset, weight := range weights {
		rewards = append(rewards, types.AssetReward{
			Asset: asset,
			Indy:  weight * dailyIndy,
			Day:   day,
		})
	}
	return rewards, nil
}

// isAtLeast24hOld reports whether the account was opened at least 24 hours
// before the day's snapshot, opening exactly 24 hours before included.
func isAtLeast24hOld(account types.StabilityPoolAccountRecord, day time.Time) (bool, error) {
	asset, err := types.AssetFromString(account.Asset)
	if err != nil {
		return false, err
	}

	// iSOL accounts predate the asset's whitelisting, the age rule only
	// applies from the whitelist day on.
	if asset == types.ISOL && day.Before(config.AssetLaunchDates[types.ISOL]) {
		return true, nil
	}

	opened := time.Unix(account.OpenedAt, 0).UTC()
	return !opened.Add(24 * time.Hour).After(epoch.SnapshotTime(day)), nil
}

// mergeDuplicateAccounts merges entries with the same owner and asset,
// summing stakes. A PKH can technically open multiple on-chain accounts for
// the same pool. The opening time is dropped, it would be ambiguous.
func mergeDuplicateAccounts(accounts []types.StabilityPoolAccountRecord) []types.StabilityPoolAccountRecord {
	type key struct {
		owner string
		asset string
	}

	index := make(map[key]int)
	var merged []types.StabilityPoolAccountRecord
	for _, account := range accounts {
		k := key{owner: account.Owner, asset: account.Asset}
		if i, ok := index[k]; ok {
			merged[i].AssetStaked += account.AssetStaked
			continue
		}
		index[k] = len(merged)
		merged = append(merged, types.StabilityPoolAccountRecord{
			Owner:       account.Owner,
			Asset:       account.Asset,
			AssetStaked: account.AssetStaked,
		})
	}
	return merged
}

// checkEachAssetHasStakers rejects a distribution where a pool earns INDY
// without anyone staked to claim it.
func checkEachAssetHasStakers(poolRewards []types.AssetReward, eligible []types.StabilityPoolAccountRecord) error {
	for _, reward := range poolRewards {
		if reward.Indy == 0 {
			continue
		}
		hasStaker := false
		for _, account := range eligible {
			if account.Asset == reward.Asset.Name() {
				hasStaker = true
				break
			}
		}
		if !hasStaker {
			return fmt.Errorf("%s SP has %f INDY rewards, but doesn't have stakers",
				reward.Asset.Name(), reward.Indy)
		}
	}
	return nil
}

// checkEachAccountRewarded rejects a distribution where a staked asset got
// no reward allocation at all.
func checkEachAccountRewarded(poolRewards []types.AssetReward, allAccounts []types.StabilityPoolAccountRecord) error {
	rewarded := make(map[types.Asset]bool, len(poolRewards))
	for _, reward := range poolRewards {
		rewarded[reward.Asset] = true
	}
	for _, account := range allAccounts {
		asset, err := types.AssetFromString(account.Asset)
		if err != nil {
			return err
		}
		if !rewarded[asset] {
			return fmt.Errorf("%s is SP staked, but can't get rewards", asset.Name())
		}
	}
	return nil
}
