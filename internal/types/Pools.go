/*

Pool types: dex liquidity pools with their daily balance snapshots, and
protocol stability pools.

*/

package types

import (
	"fmt"
	"time"
)

// LiquidityPool identifies one whitelisted dex pool. The counter asset is
// always the chain's base currency (ADA); construction validates that.
// Value type, safe as a map key.
type LiquidityPool struct {
	Dex            Dex    `json:"dex"`
	Asset          Asset  `json:"asset"`
	OtherAssetName string `json:"other_asset_name"` // Always "ADA".
	LPTokenID      string `json:"lp_token_id"`      // "policy_id.asset_name", both hex.
}

// LiquidityPoolStatus is one pool's state at a daily snapshot. The supply
// fields are optional; zero SupplySet means they weren't requested.
type LiquidityPoolStatus struct {
	Pool LiquidityPool `json:"pool"`

	// AssetBalance is the pool's total iAsset balance in whole units
	// (not lovelaces), regardless of how many LP tokens are staked.
	AssetBalance float64 `json:"asset_balance"`

	SupplySet         bool  `json:"supply_set"`
	LPTokenCircSupply int64 `json:"lp_token_circ_supply"`
	LPTokenStaked     int64 `json:"lp_token_staked"`

	Timestamp time.Time `json:"timestamp"`
}

// Validate checks internal consistency of the supply fields.
func (s LiquidityPoolStatus) Validate() error {
	if s.SupplySet && s.LPTokenStaked > s.LPTokenCircSupply {
		return fmt.Errorf("pool %s: more staked LP tokens (%d) than circulating supply (%d)",
			s.Pool.LPTokenID, s.LPTokenStaked, s.LPTokenCircSupply)
	}
	return nil
}

// StabilityPool identifies the protocol's stability pool for one asset.
type StabilityPool struct {
	Asset Asset `json:"asset"`
}
