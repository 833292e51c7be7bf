/*

Raw record shapes returned by the external data sources, before any
aggregation. Field names mirror the upstream JSON.

*/

package types

// AssetPriceRecord is one on-chain oracle price announcement from the
// analytics API's /asset-prices endpoint.
type AssetPriceRecord struct {
	Hash        string `json:"hash"`
	Slot        int64  `json:"slot"`
	OutputHash  string `json:"output_hash"`
	OutputIndex int    `json:"output_index"`
	Asset       string `json:"asset"`
	// Price is one iAsset unit's on-chain price in ADA lovelaces.
	Price      int64  `json:"price"`
	Expiration int64  `json:"expiration"`
	Address    string `json:"address"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// CDPRecord is one open collateralized debt position at the snapshot time.
type CDPRecord struct {
	OutputHash  string `json:"output_hash"`
	OutputIndex int    `json:"output_index"`
	Owner       string `json:"owner"`
	Asset       string `json:"asset"`
	// CollateralAmount is ADA collateral in lovelaces.
	CollateralAmount int64 `json:"collateralAmount"`
	// MintedAmount is the iAsset debt in iAsset lovelaces.
	MintedAmount int64 `json:"mintedAmount"`
}

// LiquidityPoolRecord describes a whitelisted dex pool (static metadata).
type LiquidityPoolRecord struct {
	Token        string `json:"token"` // LP token as "policy_id.asset_name".
	AssetA       string `json:"assetA"`
	AssetB       string `json:"assetB"`
	Exchange     string `json:"exchange"`
	AssetALogo   string `json:"assetALogo"`
	AssetBLogo   string `json:"assetBLogo"`
	ExchangeLogo string `json:"exchangeLogo"`
}

// LockedAssetRecord is one /liquidity-pools/locked-asset entry: either a dex
// pool's iAsset balance snapshot, or (when LPToken is empty and For ends in
// " Token Locked") an out-of-circulation LP token balance of a special address.
type LockedAssetRecord struct {
	ID      int64  `json:"id"`
	For     string `json:"for"`
	Address string `json:"address"`
	Asset   string `json:"asset"`
	LPToken string `json:"lp_token"`
	Amount  int64  `json:"amount"`
	// Timestamp is the snapshot unix time in seconds.
	Timestamp int64  `json:"timestamp"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CirculatingSupplyRecord is one LP token total-supply snapshot.
type CirculatingSupplyRecord struct {
	ID        int64  `json:"id"`
	For       string `json:"for"`
	Asset     string `json:"asset"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// LiquidityPositionRecord is one account's staked LP token holdings. Value is
// a JSON-encoded object mapping "lovelace" and LP token ids to amounts.
type LiquidityPositionRecord struct {
	OutputHash  string `json:"output_hash"`
	OutputIndex int    `json:"output_index"`
	Owner       string `json:"owner"`
	Value       string `json:"value"`
}

// StabilityPoolAccountRecord is one stability pool account's balance at the
// snapshot time.
type StabilityPoolAccountRecord struct {
	Asset string `json:"asset"`
	// AssetStaked is the account balance in iAsset lovelaces.
	AssetStaked int64 `json:"iasset_staked"`
	// OpenedAt is the unix time the account was opened.
	OpenedAt int64  `json:"opened_at"`
	Owner    string `json:"owner"`
}

// StakingAccountRecord is one governance staking account's reward-eligible
// INDY balance at an epoch-end snapshot.
type StakingAccountRecord struct {
	Owner string `json:"owner"`
	// StakedIndy is in INDY lovelaces.
	StakedIndy int64 `json:"staked_indy"`
}
