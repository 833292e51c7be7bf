/*

This file contains the external market data identifiers.

The Polygon ticker mapping needs to live somewhere, as we can't assume all
future asset base tickers (stocks, commodities) will fit the X:{symbol}USD
pattern.

*/

package config

import "github.com/indigo-labs/indy-rewards/internal/types"

// AssetUSDTickers maps assets to their Polygon.io USD pair tickers. iUSD
// has no entry, its USD price is taken as a constant 1.
var AssetUSDTickers = map[types.Asset]string{
	types.IBTC: "X:BTCUSD",
	types.IETH: "X:ETHUSD",
	types.ISOL: "X:SOLUSD",
}

// ADAUSDTicker is the Polygon ticker used to convert USD prices to ADA.
const ADAUSDTicker = "X:ADAUSD"

// Coingecko asset IDs for the undocumented price chart API.
const (
	CoingeckoADAID  = 975
	CoingeckoINDYID = 28303
)
