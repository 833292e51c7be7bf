// ./internal/utils/conversion_test.go
package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndyToLovelaces(t *testing.T) {
	assert.Equal(t, int64(1_000_000), IndyToLovelaces(1.0))
	assert.Equal(t, int64(1_234_568), IndyToLovelaces(1.2345678))
	assert.Equal(t, int64(0), IndyToLovelaces(0))
}

func TestIndyToLovelacesRoundsHalfToEven(t *testing.T) {
	// Exact .5 lovelace fractions go to the nearest even integer.
	assert.Equal(t, int64(2), IndyToLovelaces(2.5/1e6))
	assert.Equal(t, int64(4), IndyToLovelaces(3.5/1e6))
	assert.Equal(t, int64(0), IndyToLovelaces(0.5/1e6))
}

func TestLovelacesToIndy(t *testing.T) {
	assert.Equal(t, 1.5, LovelacesToIndy(1_500_000))
	assert.Equal(t, -0.25, LovelacesToIndy(-250_000))
}

func TestLovelacesRoundTrip(t *testing.T) {
	for _, lovelaces := range []int64{0, 1, 999_999, 1_000_001, 4795_000_000} {
		assert.Equal(t, lovelaces, IndyToLovelaces(LovelacesToIndy(lovelaces)))
	}
}

func TestScaledToFloat(t *testing.T) {
	got, err := ScaledToFloat(1_500_000, 6)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	got, err = ScaledToFloat(42, 0)
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)

	got, err = ScaledToFloat(-2_000_000, 6)
	require.NoError(t, err)
	assert.Equal(t, -2.0, got)
}

func TestScaledToFloatInvalidScale(t *testing.T) {
	_, err := ScaledToFloat(1, -1)
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = ScaledToFloat(1, 19)
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestFloatToScaled(t *testing.T) {
	got, err := FloatToScaled(1.5, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), got)

	got, err = FloatToScaled(0, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	// Sub-scale precision truncates.
	got, err = FloatToScaled(0.1234567, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(123_457), got) // %.6f rounds before truncation
}

func TestFloatToScaledRejectsInvalid(t *testing.T) {
	_, err := FloatToScaled(-1, 6)
	assert.ErrorIs(t, err, ErrAmountNegative)

	_, err = FloatToScaled(math.NaN(), 6)
	assert.ErrorIs(t, err, ErrNotFinite)

	_, err = FloatToScaled(math.Inf(1), 6)
	assert.ErrorIs(t, err, ErrNotFinite)

	_, err = FloatToScaled(1, 19)
	assert.ErrorIs(t, err, ErrInvalidScale)
}
