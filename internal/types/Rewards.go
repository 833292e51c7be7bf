/*

Reward types at the three levels of the distribution pipeline: per asset
group, per liquidity pool, and per individual account.

*/

package types

import (
	"time"

	"github.com/indigo-labs/indy-rewards/internal/utils"
)

// AssetReward is the INDY budget allocated to one asset's pool group for one day.
type AssetReward struct {
	Asset Asset     `json:"asset"`
	Indy  float64   `json:"indy"`
	Day   time.Time `json:"day"`
}

// Lovelaces returns the INDY amount in integer lovelace units (1e6 per INDY).
func (r AssetReward) Lovelaces() int64 {
	return utils.IndyToLovelaces(r.Indy)
}

// LiquidityPoolReward is the INDY budget allocated to one specific dex pool
// for one day.
type LiquidityPoolReward struct {
	Pool LiquidityPool `json:"pool"`
	Indy float64       `json:"indy"`
	Day  time.Time     `json:"day"`
}

func (r LiquidityPoolReward) Lovelaces() int64 {
	return utils.IndyToLovelaces(r.Indy)
}

// IndividualReward is a terminal reward entry for one account. These are what
// get exported for on-chain claiming.
type IndividualReward struct {
	// PKH is the account's PaymentKeyHash as a hex string.
	PKH  string    `json:"pkh"`
	Indy float64   `json:"indy"`
	Day  time.Time `json:"day"`

	// Description is a human-readable purpose, e.g. "SP reward for iUSD".
	Description string `json:"description"`

	// Expiration is the time after which the reward is no longer claimable.
	Expiration time.Time `json:"expiration"`
}

func (r IndividualReward) Lovelaces() int64 {
	return utils.IndyToLovelaces(r.Indy)
}

// SumLovelaces totals a reward list in lovelace units. Summing after integer
// conversion is what payout reconciliation checks use, so rounding error can't
// hide in the float sum.
func SumLovelaces(rewards []IndividualReward) int64 {
	var total int64
	for _, r := range rewards {
		total += r.Lovelaces()
	}
	return total
}
