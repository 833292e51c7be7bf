/*

This file is the client for the protocol analytics API.

Every reward run is rebuilt from this API's historical snapshots, so each
endpoint is fetched once with a hard timeout and strictly decoded. A failed
or malformed response aborts the run instead of being retried or papered
over, wrong reward numbers are worse than no numbers.

*/

package datafetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/logger"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

var analyticsLogger = logger.GetForComponent("analytics_client")

var (
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrEmptyResponse    = errors.New("empty API response")
)

// AnalyticsClient talks to the protocol analytics API.
type AnalyticsClient struct {
	baseURL string
	client  *http.Client
}

// NewAnalyticsClient builds a client from the loaded configuration.
func NewAnalyticsClient(cfg config.Config) *AnalyticsClient {
	return &AnalyticsClient{
		baseURL: cfg.AnalyticsAPI,
		client:  &http.Client{Timeout: config.HTTPTimeout},
	}
}

// AssetPrices returns the on-chain oracle price announcements latest at the
// given unix time.
func (c *AnalyticsClient) AssetPrices(atUnixTime int64) ([]types.AssetPriceRecord, error) {
	var records []types.AssetPriceRecord
	if err := c.postJSON("/asset-prices", atUnixTime, &records); err != nil {
		return nil, fmt.Errorf("asset prices fetch failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no oracle prices at %d", ErrEmptyResponse, atUnixTime)
	}
	return records, nil
}

// CDPs returns the state of all open CDPs at the given unix time.
func (c *AnalyticsClient) CDPs(atUnixTime int64) ([]types.CDPRecord, error) {
	var records []types.CDPRecord
	if err := c.postJSON("/cdps", atUnixTime, &records); err != nil {
		return nil, fmt.Errorf("CDP fetch failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no open CDPs at %d", ErrEmptyResponse, atUnixTime)
	}
	return records, nil
}

// LiquidityPools returns the static metadata of all pools ever whitelisted
// for LP rewards.
func (c *AnalyticsClient) LiquidityPools() ([]types.LiquidityPoolRecord, error) {
	var records []types.LiquidityPoolRecord
	if err := c.getJSON("/liquidity-pools", nil, &records); err != nil {
		return nil, fmt.Errorf("liquidity pool list fetch failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no whitelisted liquidity pools", ErrEmptyResponse)
	}
	return records, nil
}

// LockedAssets returns dex pool balance snapshots with a timestamp greater
// than or equal to afterUnixTime. The endpoint has no upper time bound, the
// caller filters to the wanted day.
func (c *AnalyticsClient) LockedAssets(afterUnixTime int64) ([]types.LockedAssetRecord, error) {
	params := url.Values{"after": {strconv.FormatInt(afterUnixTime, 10)}}
	var records []types.LockedAssetRecord
	if err := c.getJSON("/liquidity-pools/locked-asset", params, &records); err != nil {
		return nil, fmt.Errorf("locked asset fetch failed: %w", err)
	}
	return records, nil
}

// CirculatingSupplies returns LP token total supply snapshots with a
// timestamp greater than or equal to afterUnixTime.
func (c *AnalyticsClient) CirculatingSupplies(afterUnixTime int64) ([]types.CirculatingSupplyRecord, error) {
	params := url.Values{"after": {strconv.FormatInt(afterUnixTime, 10)}}
	var records []types.CirculatingSupplyRecord
	if err := c.getJSON("/liquidity-pools/circulating-supply", params, &records); err != nil {
		return nil, fmt.Errorf("circulating supply fetch failed: %w", err)
	}
	return records, nil
}

// LiquidityPositions returns individual accounts' staked LP token balances
// at the given unix time.
func (c *AnalyticsClient) LiquidityPositions(atUnixTime int64) ([]types.LiquidityPositionRecord, error) {
	var records []types.LiquidityPositionRecord
	if err := c.postJSON("/liquidity-positions", atUnixTime, &records); err != nil {
		return nil, fmt.Errorf("liquidity position fetch failed: %w", err)
	}
	return records, nil
}

// StabilityPoolAccounts returns every stability pool account's balance at a
// snapshot time. Only 21:45 UTC snapshot times exist upstream.
func (c *AnalyticsClient) StabilityPoolAccounts(snapshotUnixTime int64) ([]types.StabilityPoolAccountRecord, error) {
	params := url.Values{"timestamp": {strconv.FormatInt(snapshotUnixTime, 10)}}
	var records []types.StabilityPoolAccountRecord
	if err := c.getJSON("/rewards/stability-pool", params, &records); err != nil {
		return nil, fmt.Errorf("stability pool account fetch failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no stability pool accounts at %d", ErrEmptyResponse, snapshotUnixTime)
	}
	return records, nil
}

// StakingAccounts returns every governance account's reward-eligible INDY at
// an epoch end snapshot time.
func (c *AnalyticsClient) StakingAccounts(snapshotUnixTime int64) ([]types.StakingAccountRecord, error) {
	params := url.Values{"timestamp": {strconv.FormatInt(snapshotUnixTime, 10)}}
	var records []types.StakingAccountRecord
	if err := c.getJSON("/rewards/staking", params, &records); err != nil {
		return nil, fmt.Errorf("staking account fetch failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no staking accounts at %d", ErrEmptyResponse, snapshotUnixTime)
	}
	return records, nil
}

func (c *AnalyticsClient) getJSON(path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	analyticsLogger.Debug().Str("url", reqURL).Msg("Fetching analytics data")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return decodeResponse(resp, path, out)
}

func (c *AnalyticsClient) postJSON(path string, atUnixTime int64, out any) error {
	payload, err := json.Marshal(map[string]int64{"timestamp": atUnixTime})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	analyticsLogger.Debug().
		Str("path", path).
		Int64("timestamp", atUnixTime).
		Msg("Fetching analytics data")

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return decodeResponse(resp, path, out)
}

func decodeResponse(resp *http.Response, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		analyticsLogger.Error().
			Str("path", path).
			Int("statusCode", resp.StatusCode).
			Msg("Analytics API returned non-200 status")
		return fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyResponse, path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		analyticsLogger.Error().
			Err(err).
			Str("path", path).
			Msg("Failed to parse analytics API response")
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}
