/*

This file combines the three reward categories into whole-epoch and
single-day runs.

*/

package distribution

import (
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// EpochAllRewards returns the SP, governance and (while the program ran) LP
// rewards of every account for an epoch.
func (e *Engine) EpochAllRewards(epochNumber int, spIndy, lpIndy, govIndy float64) ([]types.IndividualReward, error) {
	govRewards, err := e.GovEpochRewards(epochNumber, govIndy)
	if err != nil {
		return nil, err
	}
	spRewards, err := e.SPEpochRewards(epochNumber, spIndy)
	if err != nil {
		return nil, err
	}

	rewards := append(spRewards, govRewards...)

	if epochNumber <= config.LPProgramLastEpoch {
		lpRewards, err := e.LPEpochRewards(epochNumber, lpIndy)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, lpRewards...)
	}

	return rewards, nil
}

// DayAllRewards returns all rewards snapshotted on a single day. The
// governance category only appears on epoch end days.
func (e *Engine) DayAllRewards(day time.Time, spIndy, lpIndy, govIndy float64) ([]types.IndividualReward, error) {
	var rewards []types.IndividualReward

	epochNumber := epoch.DateToEpoch(day)
	if epoch.EndDate(epochNumber).Equal(epoch.FromTime(day)) {
		govRewards, err := e.GovEpochRewards(epochNumber, govIndy)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, govRewards...)
	}

	spRewards, err := e.SPDayRewards(day, spIndy)
	if err != nil {
		return nil, err
	}
	rewards = append(rewards, spRewards...)

	if config.IsLPProgramActive(day) {
		lpRewards, err := e.LPDayRewards(day, lpIndy)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, lpRewards...)
	}

	return rewards, nil
}
