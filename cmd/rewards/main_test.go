// ./cmd/rewards/main_test.go
package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
)

func TestParseDateArg(t *testing.T) {
	day, err := parseDateArg("2023-03-25")
	require.NoError(t, err)
	assert.Equal(t, epoch.Date(2023, 3, 25), day)
}

func TestParseDateArgRejectsGarbage(t *testing.T) {
	for _, arg := range []string{"", "451", "2023-13-01", "25-03-2023", "yesterday"} {
		_, err := parseDateArg(arg)
		assert.Error(t, err, "arg %q", arg)
	}
}

func TestParseDateArgRejectsFutureSnapshot(t *testing.T) {
	future := time.Now().UTC().AddDate(0, 0, 2)

	_, err := parseDateArg(future.Format("2006-01-02"))
	require.Error(t, err)
	assert.ErrorIs(t, err, epoch.ErrFutureSnapshot)
}
