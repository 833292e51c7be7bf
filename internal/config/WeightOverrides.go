/*

This file contains the stability pool weight overrides voted in by
governance. From 2023 November 6th onward the SP split is a fixed table
instead of the saturation/market-cap formula. Entries are checked most
recent first, so append new votes to the top.

*/

package config

import (
	"time"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// WeightOverride fixes the SP weight of every asset from a given day until
// a newer override takes effect.
type WeightOverride struct {
	// From is the first snapshot day the override applies to.
	From time.Time
	// Weights sums to 1 across all listed assets.
	Weights map[types.Asset]float64
}

// SPWeightOverrides is ordered newest first.
var SPWeightOverrides = []WeightOverride{
	{
		From: epoch.Date(2024, 12, 5),
		Weights: map[types.Asset]float64{
			types.IBTC: 3606.19 / 21189.77,
			types.IETH: 1176.91 / 21189.77,
			types.IUSD: 15406.67 / 21189.77,
			types.ISOL: 1000.00 / 21189.77,
		},
	},
	{
		From: epoch.Date(2024, 11, 26),
		Weights: map[types.Asset]float64{
			types.IBTC: 2469.29 / 19664.35,
			types.IETH: 1504.89 / 19664.35,
			types.IUSD: 14690.17 / 19664.35,
			types.ISOL: 1000.00 / 19664.35,
		},
	},
	{
		From: epoch.Date(2024, 7, 14),
		Weights: map[types.Asset]float64{
			types.IBTC: 2469.29 / 18664.35,
			types.IETH: 1504.89 / 18664.35,
			types.IUSD: 14690.17 / 18664.35,
		},
	},
	{
		From: epoch.Date(2023, 11, 6),
		Weights: map[types.Asset]float64{
			types.IBTC: 3668.0 / 22431,
			types.IETH: 3188.0 / 22431,
			types.IUSD: 15574.0 / 22431,
		},
	},
}

// SPWeightOverrideFor returns the weight table in force on the given day,
// or nil when the legacy formula applies.
func SPWeightOverrideFor(day time.Time) map[types.Asset]float64 {
	for _, override := range SPWeightOverrides {
		if !day.Before(override.From) {
			return override.Weights
		}
	}
	return nil
}
