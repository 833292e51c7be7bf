// ./internal/epoch/epoch_test.go
package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateToEpoch(t *testing.T) {
	cases := []struct {
		day   time.Time
		epoch int
	}{
		{Date(2022, 3, 30), 329},
		{Date(2022, 4, 1), 330},
		{Date(2022, 4, 6), 331},
		{Date(2023, 3, 15), 399},
		{Date(2023, 3, 16), 399},
		{Date(2023, 3, 17), 400},
		{Date(2023, 3, 18), 400},
		{Date(2023, 3, 21), 400},
		{Date(2023, 3, 22), 401},
		{Date(2024, 2, 12), 466},
		{Date(2024, 2, 14), 466},
		{Date(2024, 2, 15), 467},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.epoch, DateToEpoch(tc.day), "day %s", tc.day.Format("2006-01-02"))
	}
}

func TestEndDate(t *testing.T) {
	assert.Equal(t, Date(2022, 4, 10), EndDate(331))
	assert.Equal(t, Date(2023, 3, 26), EndDate(401))
	assert.Equal(t, Date(2024, 2, 14), EndDate(466))
	assert.Equal(t, Date(2024, 2, 19), EndDate(467))
}

func TestEndDateIsLastDayOfItsEpoch(t *testing.T) {
	for _, epoch := range []int{329, 400, 466} {
		end := EndDate(epoch)
		assert.Equal(t, epoch, DateToEpoch(end))
		assert.Equal(t, epoch+1, DateToEpoch(end.AddDate(0, 0, 1)))
	}
}

func TestSnapshotDates(t *testing.T) {
	dates := SnapshotDates(401)
	require.Len(t, dates, 5)
	assert.Equal(t, Date(2023, 3, 22), dates[0])
	assert.Equal(t, Date(2023, 3, 23), dates[1])
	assert.Equal(t, Date(2023, 3, 26), dates[4])
	for _, day := range dates {
		assert.Equal(t, 401, DateToEpoch(day))
	}
}

func TestSnapshotTime(t *testing.T) {
	snap := SnapshotTime(Date(2023, 3, 22))
	assert.Equal(t, time.Date(2023, 3, 22, 21, 45, 0, 0, time.UTC), snap)
}

func TestUnlockTime(t *testing.T) {
	assert.Equal(t, time.Date(2023, 3, 26, 23, 0, 0, 0, time.UTC), UnlockTime(401))
}

func TestExpirationTime(t *testing.T) {
	cases := []struct {
		day        time.Time
		expiration time.Time
	}{
		{Date(2023, 3, 23), time.Date(2023, 6, 24, 21, 45, 0, 0, time.UTC)},
		{Date(2023, 5, 5), time.Date(2023, 8, 3, 21, 45, 0, 0, time.UTC)},
		{Date(2023, 5, 6), time.Date(2023, 8, 8, 21, 45, 0, 0, time.UTC)},
		{Date(2023, 5, 10), time.Date(2023, 8, 8, 21, 45, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expiration, ExpirationTime(tc.day), "day %s", tc.day.Format("2006-01-02"))
	}
}

func TestExpirationSharedAcrossEpochDays(t *testing.T) {
	dates := SnapshotDates(415)
	for _, day := range dates[1:] {
		assert.Equal(t, ExpirationTime(dates[0]), ExpirationTime(day))
	}
}

func TestImportPeriod(t *testing.T) {
	assert.Equal(t, 402, ImportPeriod(401))
}

func TestFromTime(t *testing.T) {
	ts := time.Date(2023, 3, 22, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, Date(2023, 3, 22), FromTime(ts))

	offset := time.FixedZone("plus2", 2*3600)
	assert.Equal(t, Date(2023, 3, 23), FromTime(time.Date(2023, 3, 23, 1, 0, 0, 0, offset)))
}

func TestIsFutureSnapshot(t *testing.T) {
	day := Date(2023, 3, 22)
	assert.True(t, IsFutureSnapshot(day, time.Date(2023, 3, 22, 21, 44, 59, 0, time.UTC)))
	assert.False(t, IsFutureSnapshot(day, time.Date(2023, 3, 22, 21, 45, 0, 0, time.UTC)))
}

func TestEnsureSnapshotTaken(t *testing.T) {
	now := time.Date(2023, 3, 22, 22, 0, 0, 0, time.UTC)
	assert.NoError(t, EnsureSnapshotTaken(now, Date(2023, 3, 21), Date(2023, 3, 22)))

	err := EnsureSnapshotTaken(now, Date(2023, 3, 23))
	assert.ErrorIs(t, err, ErrFutureSnapshot)
}
