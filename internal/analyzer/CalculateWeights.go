/*

This file calculates the stability pool weight split, which decides what
share of the epoch's SP budget each asset's pool earns.

From 2023 November 6th onward the split is a fixed table voted in by
governance (see config.SPWeightOverrides). Before that a formula averages
up to three terms per asset:

  - inverse saturation, normalized across assets
  - ADA market cap share
  - inverse volatility, normalized across assets

The volatility term was dropped under normal circumstances by governance
vote #19, but still kicks in while a newly launched asset only has price
history to go by, or when the other terms degenerate.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

var (
	ErrZeroWeight        = errors.New("zero weight for asset with stakers")
	ErrWeightSum         = errors.New("weights don't sum to 1")
	ErrInvalidSaturation = errors.New("saturation outside [0, 1]")
	ErrInvalidMarketCap  = errors.New("market cap is zero or less")
	ErrVolatilityTerm    = errors.New("volatility term is not positive")
	ErrUndeterminedWeight = errors.New("can't determine stability pool weight")
)

const weightSumTolerance = 1e-8

// VolatilityFunc lazily provides per-asset volatilities. It is only called
// when the formula actually needs the volatility term, fetching a year of
// price history per asset is too expensive to do unconditionally.
type VolatilityFunc func() (map[types.Asset]float64, error)

// StabilityPoolWeights returns each asset's share of the SP budget for a
// day. Assets without stakers get weight zero and are excluded from the
// normalization sums. The result sums to 1 over all assets.
func StabilityPoolWeights(
	saturations map[types.Asset]float64,
	marketCaps map[types.Asset]float64,
	day time.Time,
	newAssets map[types.Asset]bool,
	hasStakers map[types.Asset]bool,
	volatilities VolatilityFunc,
) (map[types.Asset]float64, error) {
	if override := config.SPWeightOverrideFor(day); override != nil {
		weights := make(map[types.Asset]float64, len(override))
		for asset, weight := range override {
			weights[asset] = weight
		}
		return weights, nil
	}
	return legacyWeights(saturations, marketCaps, day, newAssets, hasStakers, volatilities)
}

func legacyWeights(
	saturations map[types.Asset]float64,
	marketCaps map[types.Asset]float64,
	day time.Time,
	newAssets map[types.Asset]bool,
	hasStakers map[types.Asset]bool,
	volatilities VolatilityFunc,
) (map[types.Asset]float64, error) {
	satInverseSum, err := saturationInverseSum(saturations, hasStakers, newAssets)
	if err != nil {
		return nil, err
	}
	mcapSum, err := marketCapSum(marketCaps, newAssets)
	if err != nil {
		return nil, err
	}

	useVolatility := day.Before(config.FirstNoVolatilityDay) ||
		len(newAssets) > 0 ||
		satInverseSum <= 0 || mcapSum <= 0

	var vols map[types.Asset]float64
	var volInverseSum float64
	if useVolatility {
		vols, err = volatilities()
		if err != nil {
			return nil, fmt.Errorf("volatility fetch for weights: %w", err)
		}
		volInverseSum, err = volatilityInverseSum(vols, hasStakers)
		if err != nil {
			return nil, err
		}
	}
	if err := validateWeightInputKeys(saturations, marketCaps, vols); err != nil {
		return nil, err
	}

	weights := make(map[types.Asset]float64, len(saturations))
	var total float64

	for asset := range saturations {
		if !hasStakers[asset] {
			weights[asset] = 0
			continue
		}

		weight, err := assetWeight(asset, saturations, marketCaps, vols,
			newAssets, hasStakers, satInverseSum, mcapSum, volInverseSum, useVolatility)
		if err != nil {
			return nil, err
		}
		if weight == 0 {
			return nil, fmt.Errorf("%w: %s", ErrZeroWeight, asset.Name())
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return nil, fmt.Errorf("weight for %s is not finite: %f", asset.Name(), weight)
		}

		weights[asset] = weight
		total += weight
	}

	if math.Abs(total-1) > weightSumTolerance {
		return nil, fmt.Errorf("%w: sum is %.12f", ErrWeightSum, total)
	}

	return weights, nil
}

func assetWeight(
	asset types.Asset,
	saturations, marketCaps, vols map[types.Asset]float64,
	newAssets, hasStakers map[types.Asset]bool,
	satInverseSum, mcapSum, volInverseSum float64,
	useVolatility bool,
) (float64, error) {
	var saturationTerm, marketCapTerm float64
	if !newAssets[asset] && hasStakers[asset] {
		saturationTerm = (1 / saturations[asset]) / satInverseSum
		marketCapTerm = marketCaps[asset] / mcapSum
	}

	var volatilityTerm float64
	if useVolatility && volInverseSum > 0 && hasStakers[asset] {
		volatilityTerm = (1 / vols[asset]) / volInverseSum
	}

	switch {
	case satInverseSum > 0 && mcapSum > 0:
		if useVolatility {
			if volatilityTerm <= 0 {
				return 0, fmt.Errorf("%w: %f for %s", ErrVolatilityTerm, volatilityTerm, asset.Name())
			}
			return (volatilityTerm + saturationTerm + marketCapTerm) / 3, nil
		}
		return (saturationTerm + marketCapTerm) / 2, nil

	case newAssets[asset]:
		if volatilityTerm <= 0 {
			return 0, fmt.Errorf("%w: would rely on volatility alone for %s", ErrVolatilityTerm, asset.Name())
		}
		return volatilityTerm, nil

	default:
		return 0, fmt.Errorf("%w: %s", ErrUndeterminedWeight, asset.Name())
	}
}

func saturationInverseSum(saturations map[types.Asset]float64, hasStakers, newAssets map[types.Asset]bool) (float64, error) {
	var sum float64
	for asset, sat := range saturations {
		if sat < 0 || sat > 1 {
			return 0, fmt.Errorf("%w: %f for %s", ErrInvalidSaturation, sat, asset.Name())
		}
		if !newAssets[asset] && hasStakers[asset] {
			sum += 1 / sat
		}
	}
	return sum, nil
}

func marketCapSum(marketCaps map[types.Asset]float64, newAssets map[types.Asset]bool) (float64, error) {
	var sum float64
	for asset, mcap := range marketCaps {
		if mcap <= 0 {
			return 0, fmt.Errorf("%w: %f for %s", ErrInvalidMarketCap, mcap, asset.Name())
		}
		if !newAssets[asset] {
			sum += mcap
		}
	}
	return sum, nil
}

func volatilityInverseSum(vols map[types.Asset]float64, hasStakers map[types.Asset]bool) (float64, error) {
	var sum float64
	for asset, vol := range vols {
		if vol < 0 {
			return 0, fmt.Errorf("negative volatility for %s: %f", asset.Name(), vol)
		}
		if vol == 0 {
			return 0, fmt.Errorf("zero volatility for %s", asset.Name())
		}
		if hasStakers[asset] {
			sum += 1 / vol
		}
	}
	return sum, nil
}

// validateWeightInputKeys requires the saturation, market cap and (when
// fetched) volatility maps to cover the same assets.
func validateWeightInputKeys(saturations, marketCaps, vols map[types.Asset]float64) error {
	if err := sameKeys(saturations, marketCaps); err != nil {
		return fmt.Errorf("saturation vs market cap: %w", err)
	}
	if vols != nil {
		if err := sameKeys(saturations, vols); err != nil {
			return fmt.Errorf("saturation vs volatility: %w", err)
		}
	}
	return nil
}

func sameKeys(a, b map[types.Asset]float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("key sets differ in size: %d vs %d", len(a), len(b))
	}
	for asset := range a {
		if _, ok := b[asset]; !ok {
			return fmt.Errorf("key sets differ: %s on one side only", asset.Name())
		}
	}
	return nil
}
