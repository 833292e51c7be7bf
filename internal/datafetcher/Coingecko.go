/*

This file fetches INDY and ADA daily prices from Coingecko's price chart
endpoint. It's an undocumented API, but it returns years' worth of daily
prices in a single request, which the official API doesn't.

*/

package datafetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/logger"
)

var coingeckoLogger = logger.GetForComponent("coingecko_client")

type coingeckoChartResponse struct {
	// Stats holds [unix_millis, usd_price] pairs, one per day.
	Stats        [][]float64 `json:"stats"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// CoingeckoClient fetches daily price charts from Coingecko.
type CoingeckoClient struct {
	baseURL string
	client  *http.Client
}

func NewCoingeckoClient(cfg config.Config) *CoingeckoClient {
	return &CoingeckoClient{
		baseURL: cfg.CoingeckoAPI,
		client:  &http.Client{Timeout: config.HTTPTimeout},
	}
}

// INDYADADailyClosingPrices returns all INDY daily closing prices
// denominated in ADA. The closing price for e.g. 2023-03-25 is the price at
// 2023-03-26 00:00 UTC.
func (c *CoingeckoClient) INDYADADailyClosingPrices() (map[time.Time]float64, error) {
	adaUSD, err := c.dailyUSDPrices(config.CoingeckoADAID)
	if err != nil {
		return nil, fmt.Errorf("ADA price fetch failed: %w", err)
	}
	indyUSD, err := c.dailyUSDPrices(config.CoingeckoINDYID)
	if err != nil {
		return nil, fmt.Errorf("INDY price fetch failed: %w", err)
	}

	indyADA := make(map[time.Time]float64, len(indyUSD))
	for day, indyPrice := range indyUSD {
		adaPrice, ok := adaUSD[day]
		if !ok {
			return nil, fmt.Errorf("found INDY USD price for %s, but no ADA USD price",
				day.Format("2006-01-02"))
		}
		indyADA[day] = indyPrice / adaPrice
	}
	return indyADA, nil
}

// dailyUSDPrices returns all daily closing USD prices for a Coingecko asset
// ID. Coingecko reports opening prices for the next day, which is the same
// number as the previous day's close, so dates get shifted back by one.
func (c *CoingeckoClient) dailyUSDPrices(assetID int) (map[time.Time]float64, error) {
	chart, err := c.fetchChart(assetID)
	if err != nil {
		return nil, err
	}

	prices := make(map[time.Time]float64, len(chart.Stats))
	for _, point := range chart.Stats {
		if len(point) != 2 {
			return nil, fmt.Errorf("malformed chart point for asset %d: %v", assetID, point)
		}
		ts := time.UnixMilli(int64(point[0])).UTC()
		price := point[1]
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return nil, fmt.Errorf("%w: %f for asset %d at %s",
				ErrInvalidPrice, price, assetID, ts.Format(time.RFC3339))
		}

		day := epoch.FromTime(ts)
		prevDay := day.AddDate(0, 0, -1)

		if ts.Equal(day) {
			prices[prevDay] = price
			continue
		}

		// The only point with a non-midnight time is the current price.
		// Right after 00:00 UTC the midnight point may not be included
		// yet, so it doubles as the previous day's close. It's also kept
		// as the current day's price, which commands running for the
		// current day after the 21:45 snapshot need.
		if _, ok := prices[prevDay]; !ok {
			prices[prevDay] = price
		}
		prices[day] = price
	}

	return prices, nil
}

func (c *CoingeckoClient) fetchChart(assetID int) (*coingeckoChartResponse, error) {
	reqURL := fmt.Sprintf("%s/price_charts/%d/usd/max.json", c.baseURL, assetID)

	coingeckoLogger.Debug().Int("assetID", assetID).Msg("Fetching price chart")

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	// The endpoint serves browsers, requests without browser-looking
	// headers get rejected.
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"+
			" (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request for asset %d: %w", assetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for asset %d", ErrUnexpectedStatus, resp.StatusCode, assetID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chart response for asset %d: %w", assetID, err)
	}

	var chart coingeckoChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("parse chart response for asset %d: %w", assetID, err)
	}
	if chart.Stats == nil || chart.TotalVolumes == nil {
		return nil, fmt.Errorf("%w: chart for asset %d misses required fields", ErrEmptyResponse, assetID)
	}
	return &chart, nil
}
