/*

This file calculates the annual price volatility factor of an asset, the
sigma value of the whitepaper's stability pool weight formula.

Volatility for a day is the population standard deviation of daily
percentage changes of the asset's ADA price over the 365 days ending the
day before. The last input is the closing price of the previous UTC day,
because the calculation sometimes runs right after the 21:45 snapshot,
before the day's own close exists.

*/

package analyzer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/logger"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

var volatilityLogger = logger.GetForComponent("volatility")

var (
	ErrUnknownTicker    = errors.New("no USD ticker known for asset")
	ErrInvalidVolatility = errors.New("volatility is not a positive finite number")
)

// volatilityWindowDays is how many daily closing prices feed one
// volatility number.
const volatilityWindowDays = 365

// PriceSource provides daily closing prices for a ticker over an inclusive
// UTC day range. Satisfied by datafetcher.PolygonClient.
type PriceSource interface {
	DailyClosingPrices(ticker string, firstDay, lastDay time.Time) (map[time.Time]float64, error)
}

// VolatilityCalculator derives asset volatility from external market data.
type VolatilityCalculator struct {
	prices PriceSource
}

func NewVolatilityCalculator(prices PriceSource) *VolatilityCalculator {
	return &VolatilityCalculator{prices: prices}
}

// AssetVolatility returns the volatility factor for an asset on a day.
func (c *VolatilityCalculator) AssetVolatility(asset types.Asset, day time.Time) (float64, error) {
	lastDay := epoch.FromTime(day).AddDate(0, 0, -1)
	firstDay := lastDay.AddDate(0, 0, -(volatilityWindowDays - 1))

	var assetUSD map[time.Time]float64
	if asset == types.IUSD {
		// iUSD is treated as exactly 1 USD here. It isn't pegged to USD
		// but to the median of USDC, USDT and TUSD, so this is a known
		// simplification.
		assetUSD = constantPrices(firstDay, lastDay, 1.0)
	} else {
		ticker, ok := config.AssetUSDTickers[asset]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownTicker, asset.Name())
		}
		var err error
		assetUSD, err = c.prices.DailyClosingPrices(ticker, firstDay, lastDay)
		if err != nil {
			return 0, fmt.Errorf("%s price history: %w", asset.Name(), err)
		}
	}

	adaUSD, err := c.prices.DailyClosingPrices(config.ADAUSDTicker, firstDay, lastDay)
	if err != nil {
		return 0, fmt.Errorf("ADA price history: %w", err)
	}

	assetADA := make([]float64, 0, volatilityWindowDays)
	for d := firstDay; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		assetPrice, ok := assetUSD[d]
		if !ok {
			return 0, fmt.Errorf("missing %s USD price for %s", asset.Name(), d.Format("2006-01-02"))
		}
		adaPrice, ok := adaUSD[d]
		if !ok {
			return 0, fmt.Errorf("missing ADA USD price for %s", d.Format("2006-01-02"))
		}
		assetADA = append(assetADA, assetPrice/adaPrice)
	}

	sigma, err := populationStdDev(dailyPctChanges(assetADA))
	if err != nil {
		return 0, fmt.Errorf("volatility of %s: %w", asset.Name(), err)
	}
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return 0, fmt.Errorf("%w: %f for %s", ErrInvalidVolatility, sigma, asset.Name())
	}

	volatilityLogger.Debug().
		Str("asset", asset.Name()).
		Str("day", day.Format("2006-01-02")).
		Float64("sigma", sigma).
		Msg("Calculated volatility")

	return sigma, nil
}

// AllVolatilities returns the volatility of every active asset on a day.
func (c *VolatilityCalculator) AllVolatilities(day time.Time) (map[types.Asset]float64, error) {
	volatilities := make(map[types.Asset]float64)
	for _, asset := range config.ActiveAssets(day) {
		sigma, err := c.AssetVolatility(asset, day)
		if err != nil {
			return nil, err
		}
		volatilities[asset] = sigma
	}
	return volatilities, nil
}

// dailyPctChanges returns the relative differences between consecutive
// prices, e.g. (100, 120, 60) gives (0.2, -0.5).
func dailyPctChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes = append(changes, (prices[i]-prices[i-1])/prices[i-1])
	}
	return changes
}

// populationStdDev is the population (not sample) standard deviation.
func populationStdDev(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no data points")
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sqDiffSum float64
	for _, v := range values {
		diff := v - mean
		sqDiffSum += diff * diff
	}
	return math.Sqrt(sqDiffSum / float64(len(values))), nil
}

func constantPrices(firstDay, lastDay time.Time, price float64) map[time.Time]float64 {
	prices := make(map[time.Time]float64)
	for d := firstDay; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		prices[d] = price
	}
	return prices
}
