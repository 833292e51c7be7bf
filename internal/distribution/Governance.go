/*

This file distributes the governance staking INDY budget. Governance is
snapshotted once per epoch, at the epoch end, and the whole epoch budget
splits pro-rata over reward-eligible staked INDY.

*/

package distribution

import (
	"fmt"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

// GovEpochRewards returns every account's governance staking reward for an
// epoch and verifies the lovelace-rounded total matches the epoch budget.
func (e *Engine) GovEpochRewards(epochNumber int, epochIndy float64) ([]types.IndividualReward, error) {
	snapDate := epoch.EndDate(epochNumber)

	accounts, err := e.market.StakingAccounts(snapDate)
	if err != nil {
		return nil, err
	}

	var totalStaked float64
	staked := make(map[string]float64)
	seen := make(map[string]bool)
	strict := !snapDate.Before(config.GovStrictDuplicatesFrom)

	for _, account := range accounts {
		if seen[account.Owner] && strict {
			return nil, fmt.Errorf("duplicate owner row %s in staking API response", account.Owner)
		}
		seen[account.Owner] = true
		indy := utils.LovelacesToIndy(account.StakedIndy)
		staked[account.Owner] += indy
		totalStaked += indy
	}

	if totalStaked <= 0 {
		return nil, fmt.Errorf("%w: governance at epoch %d", ErrNothingStaked, epochNumber)
	}

	expiration := epoch.ExpirationTime(snapDate)
	rewards := make([]types.IndividualReward, 0, len(staked))
	for owner, indy := range staked {
		rewards = append(rewards, types.IndividualReward{
			PKH:         owner,
			Indy:        indy * epochIndy / totalStaked,
			Day:         snapDate,
			Description: "INDY staking reward",
			Expiration:  expiration,
		})
	}

	if err := checkEpochSum(rewards, epochIndy, "governance"); err != nil {
		return nil, err
	}

	distLogger.Debug().
		Int("epoch", epochNumber).
		Int("accounts", len(rewards)).
		Float64("totalStakedIndy", totalStaked).
		Msg("Distributed governance staking rewards")

	return rewards, nil
}
