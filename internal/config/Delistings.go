/*

This file contains the dex delisting and data-quirk constants. The
analytics API gives no indication of the MuesliSwap delist, and it is
missing some WingRiders LP token supplies, so both have to be patched over
here.

*/

package config

import (
	"strings"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

// MuesliSwap pools were delisted from LP rewards after 2023 May 30th.
var MuesliSwapLastDay = epoch.Date(2023, 5, 30)

// MuesliSwapLPv2PolicyID is the policy ID of MuesliSwap v2 LP tokens.
// Staked tokens under this policy are skipped after the delist day.
const MuesliSwapLPv2PolicyID = "af3d70acf4bd5b3abb319a7d75c89fb3e56eafcdd46b2e9b57a2557f"

// IsDexDelisted reports whether a dex's pools are excluded on the day.
func IsDexDelisted(dex types.Dex, day time.Time) bool {
	return dex == types.MuesliSwap && day.After(MuesliSwapLastDay)
}

// IsStakedTokenDelisted reports whether a staked LP token identifier
// belongs to a delisted pool on the day.
func IsStakedTokenDelisted(lpTokenID string, day time.Time) bool {
	return strings.HasPrefix(lpTokenID, MuesliSwapLPv2PolicyID+".") && day.After(MuesliSwapLastDay)
}

// Not all WingRiders LP token supplies are present in the API data. Where
// one is missing, this hard-coded supply is assumed for tokens under the
// WingRiders constant product policy.
const (
	WingRidersSupplyMagic             int64 = 9223372036854775000
	WingRidersConstantProductPolicyID       = "026a18d04a0c642759bb3d83b12e3344894e5c1c7b2aeb1a2113a570"
)
