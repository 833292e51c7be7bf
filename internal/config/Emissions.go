/*

This file contains the INDY emission schedules. The per-epoch amounts come
from governance votes, so they change at fixed epoch boundaries and the
tables below must be kept in sync with passed proposals.

*/

package config

import (
	"time"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
)

// Default per-epoch INDY budgets. The SP and governance amounts are only
// starting points, the schedule functions below give the amount in force
// for any particular epoch.
const (
	LPEpochINDY  float64 = 4795
	GovEpochINDY float64 = 2398
)

// LP token staking rewards moved to the dexes themselves starting 2023
// July 5th (epoch 422). No LP rewards are distributed past this day.
var LPProgramLastDay = epoch.Date(2023, 7, 4)

// LPProgramLastEpoch is the last epoch with LP rewards.
const LPProgramLastEpoch = 421

// SPEpochEmission returns the stability pool INDY budget for an epoch.
func SPEpochEmission(e int) float64 {
	switch {
	case e >= 526:
		return 21189.77
	case e >= 524:
		return 19664.35
	case e >= 497:
		return 18664.35
	case e >= 447:
		return 22431
	default:
		return 28768
	}
}

// GovEpochEmission returns the governance staking INDY budget for an epoch.
func GovEpochEmission(e int) float64 {
	switch {
	case e >= 529:
		return 5046.33
	case e >= 488:
		return 6046.11
	default:
		return GovEpochINDY
	}
}

// GovStrictDuplicatesFrom is the first snapshot day on which a duplicate
// governance owner row in the API response is treated as a data error.
// Before this day duplicates are silently merged.
var GovStrictDuplicatesFrom = epoch.Date(2023, 5, 20)

// FirstNoVolatilityDay is the first day the stability pool weight formula
// drops its volatility factor under normal circumstances, per governance
// vote #19.
var FirstNoVolatilityDay = epoch.Date(2023, 5, 26)

// IsLPProgramActive reports whether LP rewards are still distributed on day.
func IsLPProgramActive(day time.Time) bool {
	return !day.After(LPProgramLastDay)
}
