/*

This file assembles the daily liquidity pool picture: which whitelisted
pools held how much iAsset, the LP token supplies behind them, and who had
LP tokens staked. The locked-asset endpoint mixes real pool balances with
special bookkeeping entries and has no upper time bound, so everything is
filtered down to the requested day first.

The analytics API gives no indication of the MuesliSwap delist, so pools
and staked tokens of that dex are dropped here past the delist day.

*/

package marketdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

// Entries more than this far past the snapshot belong to later days.
const entryWindow = 20 * time.Hour

const lockedTokenSuffix = " Token Locked"

// LPStatus returns the state of every whitelisted pool at the day's
// snapshot. With withSupplies set, the LP token circulating and staked
// supplies are resolved too, which costs two extra API round trips.
func (a *Aggregator) LPStatus(day time.Time, withSupplies bool) ([]types.LiquidityPoolStatus, error) {
	pools, err := a.api.LiquidityPools()
	if err != nil {
		return nil, err
	}

	balances, err := a.lockedAssetEntries(day)
	if err != nil {
		return nil, err
	}

	var circSupplies, stakedSupplies map[string]int64
	if withSupplies {
		circSupplies, err = a.LPTokenCirculatingSupplies(day)
		if err != nil {
			return nil, err
		}
		stakedSupplies, err = a.StakedLPTokenSupplies(day)
		if err != nil {
			return nil, err
		}
		if err := validateStakedTokenIDs(pools, balances, stakedSupplies); err != nil {
			return nil, err
		}
	}

	var statuses []types.LiquidityPoolStatus
	for _, balance := range balances {
		if balance.LPToken == "" || strings.HasSuffix(balance.For, lockedTokenSuffix) {
			// Not a pool balance, an out-of-circulation LP token entry.
			continue
		}
		for _, pool := range pools {
			if balance.LPToken != pool.Token {
				continue
			}

			status, err := buildPoolStatus(pool, balance, day)
			if err != nil {
				return nil, err
			}

			if withSupplies {
				circ, ok := circSupplies[pool.Token]
				if !ok {
					return nil, fmt.Errorf("no circulating supply for LP token %s", pool.Token)
				}
				staked, ok := stakedSupplies[pool.Token]
				if !ok {
					return nil, fmt.Errorf("no staked supply for LP token %s", pool.Token)
				}
				status.SupplySet = true
				status.LPTokenCircSupply = circ
				status.LPTokenStaked = staked
				if err := status.Validate(); err != nil {
					return nil, err
				}
			}

			statuses = append(statuses, status)
		}
	}

	filtered := statuses[:0]
	for _, status := range statuses {
		if config.IsDexDelisted(status.Pool.Dex, day) {
			continue
		}
		filtered = append(filtered, status)
	}

	marketLogger.Debug().
		Str("day", day.Format("2006-01-02")).
		Int("pools", len(filtered)).
		Msg("Assembled liquidity pool statuses")

	return filtered, nil
}

// StakedLPTokenSupplies returns the total amount of each LP token staked to
// the protocol on the day, keyed by "policy_id.asset_name".
func (a *Aggregator) StakedLPTokenSupplies(day time.Time) (map[string]int64, error) {
	perAccount, err := a.accountStakedTokens(day)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, tokens := range perAccount {
		for tokenID, amount := range tokens {
			totals[tokenID] += amount
		}
	}
	return totals, nil
}

// AccountStakedLPTokens returns each pool's stakers and their staked LP
// token amounts on the day. Staked tokens of delisted pools are skipped.
func (a *Aggregator) AccountStakedLPTokens(day time.Time) (map[types.LiquidityPool]map[string]int64, error) {
	perAccount, err := a.accountStakedTokens(day)
	if err != nil {
		return nil, err
	}
	statuses, err := a.LPStatus(day, false)
	if err != nil {
		return nil, err
	}

	byToken := make(map[string]types.LiquidityPool, len(statuses))
	for _, status := range statuses {
		byToken[status.Pool.LPTokenID] = status.Pool
	}

	stakers := make(map[types.LiquidityPool]map[string]int64)
	for account, tokens := range perAccount {
		for tokenID, amount := range tokens {
			if config.IsStakedTokenDelisted(tokenID, day) {
				continue
			}
			pool, ok := byToken[tokenID]
			if !ok {
				return nil, fmt.Errorf("no liquidity pool found for staked LP token %s", tokenID)
			}
			if stakers[pool] == nil {
				stakers[pool] = make(map[string]int64)
			}
			stakers[pool][account] = amount
		}
	}
	return stakers, nil
}

// LPTokenCirculatingSupplies returns each LP token's circulating supply on
// the day: the minted total minus known out-of-circulation balances.
func (a *Aggregator) LPTokenCirculatingSupplies(day time.Time) (map[string]int64, error) {
	totals, err := a.circulatingSupplyEntries(day)
	if err != nil {
		return nil, err
	}

	balances, err := a.lockedAssetEntries(day)
	if err != nil {
		return nil, err
	}

	supplies := make(map[string]int64, len(totals))
	for tokenID, amount := range totals {
		supplies[tokenID] = amount
	}

	for _, entry := range balances {
		if entry.LPToken != "" && !strings.HasSuffix(entry.For, lockedTokenSuffix) {
			continue
		}
		// Out-of-circulation balance, subtract from the total supply.
		if _, ok := supplies[entry.Asset]; !ok {
			if strings.HasPrefix(entry.Asset, config.WingRidersConstantProductPolicyID+".") {
				supplies[entry.Asset] = config.WingRidersSupplyMagic
			} else {
				return nil, fmt.Errorf("want to exclude LP token %s, but no supply entry matches", entry.Asset)
			}
		}
		supplies[entry.Asset] -= entry.Amount
	}

	return supplies, nil
}

func buildPoolStatus(pool types.LiquidityPoolRecord, balance types.LockedAssetRecord, day time.Time) (types.LiquidityPoolStatus, error) {
	if pool.AssetA == "ADA" {
		return types.LiquidityPoolStatus{}, fmt.Errorf("pool %s: asset A must not be ADA", pool.Token)
	}
	if pool.AssetB != "ADA" {
		return types.LiquidityPoolStatus{}, fmt.Errorf("pool %s: asset B must be ADA, got %q", pool.Token, pool.AssetB)
	}

	asset, err := types.AssetFromString(pool.AssetA)
	if err != nil {
		return types.LiquidityPoolStatus{}, fmt.Errorf("pool %s: %w", pool.Token, err)
	}
	dex, err := types.DexFromString(pool.Exchange)
	if err != nil {
		return types.LiquidityPoolStatus{}, fmt.Errorf("pool %s: %w", pool.Token, err)
	}

	ts := time.Unix(balance.Timestamp, 0).UTC()
	if !epoch.FromTime(ts).Equal(epoch.FromTime(day)) {
		return types.LiquidityPoolStatus{}, fmt.Errorf("%w: pool %s entry at %s",
			ErrDateMismatch, pool.Token, ts.Format(time.RFC3339))
	}

	assetBalance, err := utils.ScaledToFloat(balance.Amount, 6)
	if err != nil {
		return types.LiquidityPoolStatus{}, fmt.Errorf("pool %s balance: %w", pool.Token, err)
	}

	return types.LiquidityPoolStatus{
		Pool: types.LiquidityPool{
			Dex:            dex,
			Asset:          asset,
			OtherAssetName: pool.AssetB,
			LPTokenID:      pool.Token,
		},
		AssetBalance: assetBalance,
		Timestamp:    ts,
	}, nil
}

// accountStakedTokens parses the staked LP token balances of every account
// at the day's snapshot from the embedded value JSON.
func (a *Aggregator) accountStakedTokens(day time.Time) (map[string]map[string]int64, error) {
	records, err := a.api.LiquidityPositions(snapshotUnix(day))
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]map[string]int64)
	for _, record := range records {
		var value map[string]any
		if err := json.Unmarshal([]byte(record.Value), &value); err != nil {
			return nil, fmt.Errorf("parse position value for %s: %w", record.Owner, err)
		}
		for tokenID, raw := range value {
			if tokenID == "lovelace" {
				continue
			}
			amountStr, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("position value for %s: token %s amount is not a string", record.Owner, tokenID)
			}
			amount, err := strconv.ParseInt(amountStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse staked amount of %s for %s: %w", tokenID, record.Owner, err)
			}
			if accounts[record.Owner] == nil {
				accounts[record.Owner] = make(map[string]int64)
			}
			accounts[record.Owner][tokenID] = amount
		}
	}
	return accounts, nil
}

func (a *Aggregator) lockedAssetEntries(day time.Time) ([]types.LockedAssetRecord, error) {
	records, err := a.api.LockedAssets(snapshotUnix(day))
	if err != nil {
		return nil, err
	}

	var dayOnly []types.LockedAssetRecord
	for _, r := range records {
		keep, err := entryIsForDay(r.Timestamp, day)
		if err != nil {
			return nil, fmt.Errorf("locked asset entry %d: %w", r.ID, err)
		}
		if keep {
			dayOnly = append(dayOnly, r)
		}
	}
	return dayOnly, nil
}

func (a *Aggregator) circulatingSupplyEntries(day time.Time) (map[string]int64, error) {
	records, err := a.api.CirculatingSupplies(snapshotUnix(day))
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, r := range records {
		keep, err := entryIsForDay(r.Timestamp, day)
		if err != nil {
			return nil, fmt.Errorf("circulating supply entry %d: %w", r.ID, err)
		}
		if !keep {
			continue
		}
		if _, exists := totals[r.Asset]; exists {
			return nil, fmt.Errorf("double circulating supply entry for LP token %s on %s",
				r.Asset, day.Format("2006-01-02"))
		}
		totals[r.Asset] = r.Amount
	}
	return totals, nil
}

// entryIsForDay filters the after-only endpoints: entries starting at the
// snapshot but within the window must be from the requested day, later ones
// are dropped.
func entryIsForDay(unixTime int64, day time.Time) (bool, error) {
	snap := epoch.SnapshotTime(day)
	if unixTime >= snap.Add(entryWindow).Unix() {
		return false, nil
	}
	entryDay := epoch.FromTime(time.Unix(unixTime, 0))
	if !entryDay.Equal(epoch.FromTime(day)) {
		return false, fmt.Errorf("%w: entry at %s, requested %s", ErrDateMismatch,
			entryDay.Format("2006-01-02"), day.Format("2006-01-02"))
	}
	return true, nil
}

// validateStakedTokenIDs cross-checks the known pool LP token set against
// the staked token set. A mismatch can happen legitimately if nobody stakes
// for a whitelisted pool, but an analytics API bug is the likelier cause.
func validateStakedTokenIDs(pools []types.LiquidityPoolRecord, balances []types.LockedAssetRecord, staked map[string]int64) error {
	known := make(map[string]bool)
	for _, balance := range balances {
		if balance.LPToken == "" || strings.HasSuffix(balance.For, lockedTokenSuffix) {
			continue
		}
		for _, pool := range pools {
			if balance.LPToken == pool.Token {
				known[balance.LPToken] = true
			}
		}
	}

	if len(known) != len(staked) {
		return fmt.Errorf("%w: %d known pool LP tokens vs %d staked LP tokens",
			ErrKeyMismatch, len(known), len(staked))
	}
	for tokenID := range staked {
		if !known[tokenID] {
			return fmt.Errorf("%w: staked LP token %s is not a known pool token", ErrKeyMismatch, tokenID)
		}
	}
	return nil
}
