/*

This file calculates "k", the daily INDY amount each iAsset's liquidity
pool group earns. Half the weight favors under-saturated asset groups
(little dex liquidity relative to minted supply), half favors large ones
by ADA market cap.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/indigo-labs/indy-rewards/internal/types"
)

var ErrKeyInputMismatch = errors.New("formula input key mismatch")

// LPGroupBudgets returns the daily INDY budget of each asset's pool group.
// epochIndy is the whole epoch's LP budget, saturations the share of each
// asset's supply held by its dex pools, prices the oracle ADA prices and
// supplies the total minted amounts. All three maps must cover the same
// assets.
func LPGroupBudgets(
	epochIndy float64,
	saturations map[types.Asset]float64,
	prices map[types.Asset]float64,
	supplies map[types.Asset]float64,
) (map[types.Asset]float64, error) {
	if err := sameKeys(saturations, prices); err != nil {
		return nil, fmt.Errorf("%w: saturation vs price: %v", ErrKeyInputMismatch, err)
	}
	if err := sameKeys(saturations, supplies); err != nil {
		return nil, fmt.Errorf("%w: saturation vs supply: %v", ErrKeyInputMismatch, err)
	}

	var saturationInvSum, marketCapSum float64
	for asset, saturation := range saturations {
		if saturation <= 0 {
			return nil, fmt.Errorf("saturation for %s is not positive: %f", asset.Name(), saturation)
		}
		saturationInvSum += 1 / saturation
		marketCapSum += prices[asset] * supplies[asset]
	}
	if saturationInvSum <= 0 || marketCapSum <= 0 {
		return nil, fmt.Errorf("degenerate normalization sums: 1/sat %f, mcap %f",
			saturationInvSum, marketCapSum)
	}

	dailyIndy := epochIndy / 5

	budgets := make(map[types.Asset]float64, len(saturations))
	for asset, saturation := range saturations {
		saturationShare := (1 / saturation) / saturationInvSum
		marketCapShare := prices[asset] * supplies[asset] / marketCapSum

		k := dailyIndy * (saturationShare + marketCapShare) / 2
		if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
			return nil, fmt.Errorf("budget for %s is invalid: %f", asset.Name(), k)
		}
		budgets[asset] = k
	}
	return budgets, nil
}

// LPSaturations returns the share of each asset's minted supply held by its
// whitelisted dex pools.
func LPSaturations(statuses []types.LiquidityPoolStatus, totalSupplies map[types.Asset]float64) (map[types.Asset]float64, error) {
	balances := make(map[types.Asset]float64)
	for _, status := range statuses {
		if status.Pool.OtherAssetName != "ADA" {
			return nil, fmt.Errorf("pool %s: counter asset must be ADA, got %q",
				status.Pool.LPTokenID, status.Pool.OtherAssetName)
		}
		balances[status.Pool.Asset] += status.AssetBalance
	}

	if err := sameKeys(balances, totalSupplies); err != nil {
		return nil, fmt.Errorf("%w: dex balance vs supply: %v", ErrKeyInputMismatch, err)
	}

	saturations := make(map[types.Asset]float64, len(balances))
	for asset, balance := range balances {
		saturations[asset] = balance / totalSupplies[asset]
	}
	return saturations, nil
}
