/*

This file contains the centralized unit-scale conversions between integer
"lovelace" amounts (1e6 per whole token) and whole-unit floats. All scaling
in the pipeline goes through here so rounding behavior can't drift between
modules.

*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

const lovelacePerUnit = 1_000_000

var (
	ErrAmountNegative = errors.New("amount is negative")
	ErrNotFinite      = errors.New("value is not finite")
	ErrInvalidScale   = errors.New("scale is invalid")
)

// IndyToLovelaces converts a whole-unit INDY amount to integer lovelaces,
// rounding half to even so payout sums don't accumulate directional bias.
func IndyToLovelaces(indy float64) int64 {
	return int64(math.RoundToEven(indy * lovelacePerUnit))
}

// LovelacesToIndy converts integer lovelaces to a whole-unit float.
func LovelacesToIndy(lovelaces int64) float64 {
	return float64(lovelaces) / lovelacePerUnit
}

// ScaledToFloat converts an integer amount with the given decimal scale to a
// whole-unit float64, using decimal arithmetic for the division.
func ScaledToFloat(amount int64, decimals int) (float64, error) {
	if decimals < 0 || decimals > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidScale, decimals)
	}

	dec := sdkmath.LegacyNewDec(amount)
	factor := sdkmath.LegacyNewDec(10).Power(uint64(decimals))

	result, err := dec.Quo(factor).Float64()
	if err != nil {
		return 0, fmt.Errorf("scaled conversion failed: %w", err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}
	return result, nil
}

// FloatToScaled converts a non-negative whole-unit float to an integer amount
// at the given decimal scale, truncating sub-scale precision. The string
// round-trip avoids binary float artifacts in the decimal digits.
func FloatToScaled(amount float64, decimals int) (int64, error) {
	if decimals < 0 || decimals > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidScale, decimals)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount < 0 {
		return 0, ErrAmountNegative
	}
	if amount == 0 {
		return 0, nil
	}

	dec, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.*f", decimals, amount))
	if err != nil {
		return 0, fmt.Errorf("conversion failed: %w", err)
	}
	factor := sdkmath.LegacyNewDec(10).Power(uint64(decimals))
	return dec.Mul(factor).TruncateInt64(), nil
}
