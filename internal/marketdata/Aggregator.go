/*

This file turns raw analytics API records into the per-day maps the reward
formulas consume: oracle prices, minted supplies, market caps and stability
pool balances. Key sets of related maps are cross-checked here so a partial
API response can't silently skew a distribution.

*/

package marketdata

import (
	"errors"
	"fmt"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/logger"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

var marketLogger = logger.GetForComponent("marketdata")

var (
	ErrKeyMismatch  = errors.New("related data sets have different keys")
	ErrDateMismatch = errors.New("entry date doesn't match requested date")
)

// Analytics is the slice of the analytics API the aggregator consumes.
// Satisfied by datafetcher.AnalyticsClient.
type Analytics interface {
	AssetPrices(atUnixTime int64) ([]types.AssetPriceRecord, error)
	CDPs(atUnixTime int64) ([]types.CDPRecord, error)
	LiquidityPools() ([]types.LiquidityPoolRecord, error)
	LockedAssets(afterUnixTime int64) ([]types.LockedAssetRecord, error)
	CirculatingSupplies(afterUnixTime int64) ([]types.CirculatingSupplyRecord, error)
	LiquidityPositions(atUnixTime int64) ([]types.LiquidityPositionRecord, error)
	StabilityPoolAccounts(snapshotUnixTime int64) ([]types.StabilityPoolAccountRecord, error)
	StakingAccounts(snapshotUnixTime int64) ([]types.StakingAccountRecord, error)
}

// Aggregator presents analytics snapshots as typed per-day views.
type Aggregator struct {
	api Analytics
}

func NewAggregator(api Analytics) *Aggregator {
	return &Aggregator{api: api}
}

// AssetADAPrices returns each asset's oracle price at the day's snapshot,
// denominated in whole ADA.
func (a *Aggregator) AssetADAPrices(day time.Time) (map[types.Asset]float64, error) {
	records, err := a.api.AssetPrices(snapshotUnix(day))
	if err != nil {
		return nil, err
	}

	prices := make(map[types.Asset]float64, len(records))
	for _, r := range records {
		asset, err := types.AssetFromString(r.Asset)
		if err != nil {
			return nil, fmt.Errorf("oracle price record: %w", err)
		}
		if r.Price <= 0 {
			return nil, fmt.Errorf("oracle price for %s is not positive: %d", asset.Name(), r.Price)
		}
		price, err := utils.ScaledToFloat(r.Price, 6)
		if err != nil {
			return nil, fmt.Errorf("oracle price for %s: %w", asset.Name(), err)
		}
		prices[asset] = price
	}
	return prices, nil
}

// AssetSupplies returns each asset's total minted supply at the day's
// snapshot, in whole units, summed over all open CDPs.
func (a *Aggregator) AssetSupplies(day time.Time) (map[types.Asset]float64, error) {
	records, err := a.api.CDPs(snapshotUnix(day))
	if err != nil {
		return nil, err
	}

	sums := make(map[types.Asset]int64)
	for _, r := range records {
		asset, err := types.AssetFromString(r.Asset)
		if err != nil {
			return nil, fmt.Errorf("CDP record: %w", err)
		}
		sums[asset] += r.MintedAmount
	}

	supplies := make(map[types.Asset]float64, len(sums))
	for asset, lovelaces := range sums {
		supply, err := utils.ScaledToFloat(lovelaces, 6)
		if err != nil {
			return nil, fmt.Errorf("minted supply for %s: %w", asset.Name(), err)
		}
		supplies[asset] = supply
	}
	return supplies, nil
}

// AssetADAMarketCaps returns each asset's market cap in ADA at the day's
// snapshot. The supply and price key sets must agree.
func (a *Aggregator) AssetADAMarketCaps(day time.Time) (map[types.Asset]float64, error) {
	supplies, err := a.AssetSupplies(day)
	if err != nil {
		return nil, err
	}
	prices, err := a.AssetADAPrices(day)
	if err != nil {
		return nil, err
	}
	if err := sameAssetKeys(supplies, prices); err != nil {
		return nil, fmt.Errorf("asset supply vs price: %w", err)
	}

	caps := make(map[types.Asset]float64, len(supplies))
	for asset, supply := range supplies {
		caps[asset] = supply * prices[asset]
	}
	return caps, nil
}

// StabilityPoolAccounts returns the raw per-account stability pool balances
// at the day's snapshot.
func (a *Aggregator) StabilityPoolAccounts(day time.Time) ([]types.StabilityPoolAccountRecord, error) {
	return a.api.StabilityPoolAccounts(snapshotUnix(day))
}

// StabilityPoolSupplies returns each asset's total stability pool balance in
// whole units at the day's snapshot.
func (a *Aggregator) StabilityPoolSupplies(day time.Time) (map[types.Asset]float64, error) {
	accounts, err := a.StabilityPoolAccounts(day)
	if err != nil {
		return nil, err
	}

	sums := make(map[types.Asset]int64)
	for _, acc := range accounts {
		asset, err := types.AssetFromString(acc.Asset)
		if err != nil {
			return nil, fmt.Errorf("stability pool account: %w", err)
		}
		sums[asset] += acc.AssetStaked
	}

	supplies := make(map[types.Asset]float64, len(sums))
	for asset, lovelaces := range sums {
		supply, err := utils.ScaledToFloat(lovelaces, 6)
		if err != nil {
			return nil, fmt.Errorf("stability pool supply for %s: %w", asset.Name(), err)
		}
		supplies[asset] = supply
	}
	return supplies, nil
}

// StabilityPoolSaturations returns the fraction of each asset's minted
// supply sitting in its stability pool.
func (a *Aggregator) StabilityPoolSaturations(day time.Time) (map[types.Asset]float64, error) {
	spSupplies, err := a.StabilityPoolSupplies(day)
	if err != nil {
		return nil, err
	}
	totals, err := a.AssetSupplies(day)
	if err != nil {
		return nil, err
	}
	if err := sameAssetKeys(spSupplies, totals); err != nil {
		return nil, fmt.Errorf("stability pool vs total supply: %w", err)
	}

	ratios := make(map[types.Asset]float64, len(spSupplies))
	for asset, staked := range spSupplies {
		ratios[asset] = staked / totals[asset]
	}
	return ratios, nil
}

// StakingAccounts returns the raw governance staking balances at the day's
// snapshot. Only epoch end days have data upstream.
func (a *Aggregator) StakingAccounts(day time.Time) ([]types.StakingAccountRecord, error) {
	return a.api.StakingAccounts(snapshotUnix(day))
}

func snapshotUnix(day time.Time) int64 {
	return epoch.SnapshotTime(day).Unix()
}

// sameAssetKeys errors when two asset maps don't cover the same assets,
// naming the first asset present on only one side.
func sameAssetKeys(a, b map[types.Asset]float64) error {
	for asset := range a {
		if _, ok := b[asset]; !ok {
			return fmt.Errorf("%w: %s missing from second set", ErrKeyMismatch, asset.Name())
		}
	}
	for asset := range b {
		if _, ok := a[asset]; !ok {
			return fmt.Errorf("%w: %s missing from first set", ErrKeyMismatch, asset.Name())
		}
	}
	return nil
}
