/*

This file distributes the liquidity pool INDY budget. Each day the "k"
formula splits the daily amount between iAsset groups, the group amounts
split between the dexes' pools pro-rata by iAsset balance, and each pool's
cut splits over its accounts pro-rata by staked LP tokens.

The program ended when LP rewards moved to the dexes themselves, see
config.LPProgramLastDay. Callers gate on that, the functions here compute
for whatever day they're given.

*/

package distribution

import (
	"fmt"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/analyzer"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// LPEpochRewards returns every account's LP reward for an epoch and
// verifies the lovelace-rounded total matches the nominal budget.
func (e *Engine) LPEpochRewards(epochNumber int, epochIndy float64) ([]types.IndividualReward, error) {
	var rewards []types.IndividualReward
	for _, day := range epoch.SnapshotDates(epochNumber) {
		daily, err := e.LPDayRewards(day, epochIndy)
		if err != nil {
			return nil, fmt.Errorf("LP rewards for %s: %w", day.Format("2006-01-02"), err)
		}
		rewards = append(rewards, daily...)
	}
	if err := checkEpochSum(rewards, epochIndy, "LP"); err != nil {
		return nil, err
	}
	return rewards, nil
}

// LPDayRewards returns every account's LP reward for one day.
func (e *Engine) LPDayRewards(day time.Time, epochIndy float64) ([]types.IndividualReward, error) {
	groupRewards, err := e.LPGroupRewards(day, epochIndy)
	if err != nil {
		return nil, err
	}
	return e.distributeToAccounts(day, groupRewards)
}

// LPGroupRewards returns the day's INDY budget of each iAsset's pool group
// per the "k" formula.
func (e *Engine) LPGroupRewards(day time.Time, epochIndy float64) ([]types.AssetReward, error) {
	prices, err := e.market.AssetADAPrices(day)
	if err != nil {
		return nil, err
	}
	supplies, err := e.market.AssetSupplies(day)
	if err != nil {
		return nil, err
	}
	statuses, err := e.market.LPStatus(day, false)
	if err != nil {
		return nil, err
	}

	saturations, err := analyzer.LPSaturations(statuses, supplies)
	if err != nil {
		return nil, err
	}
	budgets, err := analyzer.LPGroupBudgets(epochIndy, saturations, prices, supplies)
	if err != nil {
		return nil, err
	}

	rewards := make([]types.AssetReward, 0, len(budgets))
	for asset, indy := range budgets {
		rewards = append(rewards, types.AssetReward{Asset: asset, Indy: indy, Day: day})
	}
	return rewards, nil
}

// LPPoolRewards returns the day's INDY budget of each individual dex pool.
func (e *Engine) LPPoolRewards(day time.Time, epochIndy float64) ([]types.LiquidityPoolReward, error) {
	groupRewards, err := e.LPGroupRewards(day, epochIndy)
	if err != nil {
		return nil, err
	}
	statuses, err := e.market.LPStatus(day, false)
	if err != nil {
		return nil, err
	}
	return DistributeToPools(groupRewards, statuses, day), nil
}

// DistributeToPools splits each asset group's budget between that asset's
// pools, pro-rata by the pools' iAsset balances.
func DistributeToPools(groupRewards []types.AssetReward, statuses []types.LiquidityPoolStatus, day time.Time) []types.LiquidityPoolReward {
	var poolRewards []types.LiquidityPoolReward
	for _, groupReward := range groupRewards {
		var totalBalance float64
		for _, status := range statuses {
			if status.Pool.Asset == groupReward.Asset {
				totalBalance += status.AssetBalance
			}
		}
		for _, status := range statuses {
			if status.Pool.Asset != groupReward.Asset {
				continue
			}
			poolRewards = append(poolRewards, types.LiquidityPoolReward{
				Pool: status.Pool,
				Indy: groupReward.Indy * (status.AssetBalance / totalBalance),
				Day:  day,
			})
		}
	}
	return poolRewards
}

func (e *Engine) distributeToAccounts(day time.Time, groupRewards []types.AssetReward) ([]types.IndividualReward, error) {
	statuses, err := e.market.LPStatus(day, false)
	if err != nil {
		return nil, err
	}
	poolRewards := DistributeToPools(groupRewards, statuses, day)

	stakers, err := e.market.AccountStakedLPTokens(day)
	if err != nil {
		return nil, err
	}

	var rewards []types.IndividualReward
	for _, poolReward := range poolRewards {
		poolStakers, ok := stakers[poolReward.Pool]
		if !ok {
			return nil, fmt.Errorf("no LP token stakers found for pool %s", poolReward.Pool.LPTokenID)
		}

		accounts := make(map[string]float64, len(poolStakers))
		for owner, staked := range poolStakers {
			accounts[owner] = float64(staked)
		}

		description := fmt.Sprintf("Reward for providing %s liquidity on %s",
			poolReward.Pool.Asset.Name(), poolReward.Pool.Dex.Name())
		poolShare, err := ProRata(poolReward.Indy, accounts, day, description)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, poolShare...)
	}

	distLogger.Debug().
		Str("day", day.Format("2006-01-02")).
		Int("pools", len(poolRewards)).
		Int("rewards", len(rewards)).
		Msg("Distributed liquidity pool rewards")

	return rewards, nil
}
