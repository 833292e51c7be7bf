/*

Identity types for the protocol's synthetic assets (iAssets) and the dexes
their liquidity pools live on.

*/

package types

import (
	"fmt"
	"strings"
)

// Asset is a synthetic asset tracked by the protocol, e.g. iUSD or iBTC.
// Comparison is by symbol; construction is case-insensitive via AssetFromString.
type Asset string

const (
	IUSD Asset = "iUSD"
	IBTC Asset = "iBTC"
	IETH Asset = "iETH"
	ISOL Asset = "iSOL"
)

// AllAssets lists every asset the protocol has ever whitelisted, in launch order.
var AllAssets = []Asset{IUSD, IBTC, IETH, ISOL}

// AssetFromString resolves a case-insensitive symbol like "iusd" or "IUsD".
func AssetFromString(symbol string) (Asset, error) {
	for _, a := range AllAssets {
		if strings.EqualFold(string(a), symbol) {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid iAsset symbol: %q", symbol)
}

// Name returns the canonical symbol, e.g. "iUSD".
func (a Asset) Name() string {
	return string(a)
}

// Dex is a decentralized exchange hosting whitelisted iAsset liquidity pools.
type Dex string

const (
	Minswap    Dex = "Minswap"
	MuesliSwap Dex = "MuesliSwap"
	WingRiders Dex = "WingRiders"
)

var AllDexes = []Dex{Minswap, MuesliSwap, WingRiders}

// DexFromString resolves a case-insensitive dex name.
func DexFromString(name string) (Dex, error) {
	for _, d := range AllDexes {
		if strings.EqualFold(string(d), name) {
			return d, nil
		}
	}
	return "", fmt.Errorf("no dex matching %q", name)
}

func (d Dex) Name() string {
	return string(d)
}
