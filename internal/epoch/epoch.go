/*

This file contains the epoch calendar arithmetic. Epochs are five day
periods counted from a fixed reference date, and every snapshot, unlock
and expiration timestamp in the pipeline derives from it.

*/

package epoch

import (
	"errors"
	"fmt"
	"time"
)

const (
	// EpochLengthDays is the number of daily snapshots in one epoch.
	EpochLengthDays = 5

	// expirationDays is how long a distributed reward stays claimable.
	expirationDays = 90
)

// Snapshots are taken at 21:45 UTC, rewards unlock 75 minutes later.
const (
	snapshotHour   = 21
	snapshotMinute = 45
	unlockDelay    = 75 * time.Minute
)

var ErrFutureSnapshot = errors.New("snapshot time is in the future")

// referenceDate anchors epoch 0. Chosen so that on-chain epoch numbers and
// calendar dates line up with the protocol's published schedule.
var referenceDate = time.Date(2017, 9, 23, 0, 0, 0, 0, time.UTC)

// Date builds a UTC midnight timestamp for the given calendar day. All day
// values flowing through the pipeline are normalized through here.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FromTime truncates a timestamp to its UTC calendar day.
func FromTime(t time.Time) time.Time {
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

// DateToEpoch returns the epoch a calendar day belongs to. The last day of
// an epoch maps to that epoch, the following day starts the next one.
func DateToEpoch(day time.Time) int {
	days := int(FromTime(day).Sub(referenceDate).Hours() / 24)
	return floorDiv(days-1, EpochLengthDays)
}

// EndDate returns the last calendar day of an epoch.
func EndDate(epoch int) time.Time {
	return referenceDate.AddDate(0, 0, (epoch+1)*EpochLengthDays)
}

// SnapshotDates returns the five calendar days of an epoch in order.
func SnapshotDates(epoch int) []time.Time {
	end := EndDate(epoch)
	dates := make([]time.Time, 0, EpochLengthDays)
	for offset := EpochLengthDays - 1; offset >= 0; offset-- {
		dates = append(dates, end.AddDate(0, 0, -offset))
	}
	return dates
}

// SnapshotTime returns the moment the daily snapshot is taken for a day.
func SnapshotTime(day time.Time) time.Time {
	d := FromTime(day)
	return time.Date(d.Year(), d.Month(), d.Day(), snapshotHour, snapshotMinute, 0, 0, time.UTC)
}

// UnlockTime returns when an epoch's rewards become claimable.
func UnlockTime(epoch int) time.Time {
	return SnapshotTime(EndDate(epoch)).Add(unlockDelay)
}

// ExpirationTime returns when a reward earned on the given day stops being
// claimable. Expiration is anchored to the day's epoch end, so every day of
// an epoch shares the same expiration.
func ExpirationTime(day time.Time) time.Time {
	end := EndDate(DateToEpoch(day))
	return SnapshotTime(end.AddDate(0, 0, expirationDays))
}

// ImportPeriod returns the period label under which an epoch's rewards are
// imported into the claims system.
func ImportPeriod(epoch int) int {
	return epoch + 1
}

// IsFutureSnapshot reports whether the day's snapshot has not been taken yet.
func IsFutureSnapshot(day time.Time, now time.Time) bool {
	return SnapshotTime(day).After(now.UTC())
}

// EnsureSnapshotTaken returns an error if any of the days' snapshots are
// still in the future. Reward runs refuse days without final data.
func EnsureSnapshotTaken(now time.Time, days ...time.Time) error {
	for _, day := range days {
		if IsFutureSnapshot(day, now) {
			return fmt.Errorf("%w: %s", ErrFutureSnapshot, day.Format("2006-01-02"))
		}
	}
	return nil
}

// floorDiv divides rounding toward negative infinity, matching how epochs
// are defined for days before the reference date.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
