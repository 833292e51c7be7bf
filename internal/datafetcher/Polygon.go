/*

This file is used to fetch daily closing prices from the Polygon.io
aggregates API for the volatility calculation.

For assets that trade 24/7 the term "closing price" is ambiguous. The daily
closing price for e.g. 2023-03-27 is the closing price of the UTC daily
candle, which equals the opening price at 2023-03-28 00:00 UTC.

*/

package datafetcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/logger"
)

var polygonLogger = logger.GetForComponent("polygon_client")

var (
	ErrUnfinishedDay   = errors.New("day has not finished yet")
	ErrMissingPriceDay = errors.New("price missing for day in requested range")
	ErrInvalidPrice    = errors.New("invalid price data received")
)

type polygonAggsResponse struct {
	Status       string `json:"status"`
	QueryCount   int    `json:"queryCount"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		// T is the candle's start unix time in milliseconds.
		T int64 `json:"t"`
		// C is the candle's closing price.
		C float64 `json:"c"`
	} `json:"results"`
}

// PolygonClient fetches daily candles from api.polygon.io.
type PolygonClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

// NewPolygonClient builds a client from the loaded configuration. The API
// key must already be present, see Config.RequirePolygonKey.
func NewPolygonClient(cfg config.Config) *PolygonClient {
	return &PolygonClient{
		baseURL: cfg.PolygonAPI,
		apiKey:  cfg.PolygonAPIKey,
		client:  &http.Client{Timeout: config.HTTPTimeout},
		now:     time.Now,
	}
}

// DailyClosingPrices returns one closing price per UTC day for the range
// firstDay..lastDay, both inclusive. Every day in the range must be present
// in the API reply, a gap fails the whole call.
func (c *PolygonClient) DailyClosingPrices(ticker string, firstDay, lastDay time.Time) (map[time.Time]float64, error) {
	firstDay = epoch.FromTime(firstDay)
	lastDay = epoch.FromTime(lastDay)

	if firstDay.After(lastDay) {
		return nil, fmt.Errorf("first day (%s) can't be after last day (%s)",
			firstDay.Format("2006-01-02"), lastDay.Format("2006-01-02"))
	}
	if c.isUnfinishedDay(lastDay) {
		return nil, fmt.Errorf("%w: %s", ErrUnfinishedDay, lastDay.Format("2006-01-02"))
	}

	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?%s",
		c.baseURL, ticker,
		firstDay.Format("2006-01-02"), lastDay.Format("2006-01-02"),
		url.Values{"apiKey": {c.apiKey}}.Encode())

	polygonLogger.Debug().
		Str("ticker", ticker).
		Str("firstDay", firstDay.Format("2006-01-02")).
		Str("lastDay", lastDay.Format("2006-01-02")).
		Msg("Fetching daily closing prices")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("polygon request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for ticker %s", ErrUnexpectedStatus, resp.StatusCode, ticker)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read polygon response for %s: %w", ticker, err)
	}

	var aggs polygonAggsResponse
	if err := json.Unmarshal(body, &aggs); err != nil {
		return nil, fmt.Errorf("parse polygon response for %s: %w", ticker, err)
	}

	prices, err := processAggsResponse(aggs, ticker)
	if err != nil {
		return nil, err
	}

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		if _, ok := prices[day]; !ok {
			return nil, fmt.Errorf("%w: %s (%s, range %s to %s)",
				ErrMissingPriceDay, day.Format("2006-01-02"), ticker,
				firstDay.Format("2006-01-02"), lastDay.Format("2006-01-02"))
		}
	}

	return prices, nil
}

func processAggsResponse(aggs polygonAggsResponse, ticker string) (map[time.Time]float64, error) {
	if aggs.Status != "OK" {
		return nil, fmt.Errorf("polygon status for %s is not OK: %q", ticker, aggs.Status)
	}
	if aggs.QueryCount != aggs.ResultsCount {
		return nil, fmt.Errorf("polygon queryCount (%d) differs from resultsCount (%d) for %s",
			aggs.QueryCount, aggs.ResultsCount, ticker)
	}
	if aggs.ResultsCount == 0 || len(aggs.Results) == 0 {
		return nil, fmt.Errorf("no prices found in polygon response for %s", ticker)
	}

	prices := make(map[time.Time]float64, len(aggs.Results))
	for _, candle := range aggs.Results {
		start := time.UnixMilli(candle.T).UTC()
		if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
			return nil, fmt.Errorf("unexpected daily candle timestamp for %s: %s",
				ticker, start.Format(time.RFC3339))
		}
		if math.IsNaN(candle.C) || math.IsInf(candle.C, 0) || candle.C <= 0 {
			return nil, fmt.Errorf("%w: close %f for %s on %s",
				ErrInvalidPrice, candle.C, ticker, start.Format("2006-01-02"))
		}
		prices[epoch.FromTime(start)] = candle.C
	}
	return prices, nil
}

// isUnfinishedDay reports whether the UTC day has not completed yet, in
// which case it has no closing price.
func (c *PolygonClient) isUnfinishedDay(day time.Time) bool {
	today := epoch.FromTime(c.now())
	return !day.Before(today)
}
