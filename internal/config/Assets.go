/*

This file contains the asset whitelist schedule. Launch dates drive both
which assets are active on a given day and which still count as "new" for
the stability pool weight formula.

*/

package config

import (
	"time"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// NewAssetEpochs is how many epochs an asset counts as new after launch.
const NewAssetEpochs = 6

// AssetLaunchDates maps each asset to its first reward-eligible day.
var AssetLaunchDates = map[types.Asset]time.Time{
	types.IUSD: epoch.Date(2022, 11, 21), // Epoch 377's first day.
	types.IBTC: epoch.Date(2022, 11, 21),
	types.IETH: epoch.Date(2023, 1, 6), // Epoch 386's second day.
	types.ISOL: epoch.Date(2024, 11, 27),
}

// ActiveAssets returns the assets launched on or before the given day.
func ActiveAssets(day time.Time) []types.Asset {
	var active []types.Asset
	for _, asset := range types.AllAssets {
		if !AssetLaunchDates[asset].After(day) {
			active = append(active, asset)
		}
	}
	return active
}

// NewAssets returns active assets that are less than NewAssetEpochs old.
func NewAssets(day time.Time) map[types.Asset]bool {
	next := make(map[types.Asset]bool)
	for _, asset := range ActiveAssets(day) {
		if epoch.DateToEpoch(day) < epoch.DateToEpoch(AssetLaunchDates[asset])+NewAssetEpochs {
			next[asset] = true
		}
	}
	return next
}

// IsLaunchDay reports whether the day is the asset's very first day. Nobody
// is reward eligible on a pool's launch day.
func IsLaunchDay(asset types.Asset, day time.Time) bool {
	return AssetLaunchDates[asset].Equal(epoch.FromTime(day))
}
