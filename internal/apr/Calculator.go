/*

This file holds the APR calculator and its shared plumbing. APRs are
informational only, they reuse the same budget allocation the distribution
engine pays out, priced with Coingecko's INDY/ADA daily closes.

*/

package apr

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/distribution"
	"github.com/indigo-labs/indy-rewards/internal/logger"
	"github.com/indigo-labs/indy-rewards/internal/marketdata"
)

var aprLogger = logger.GetForComponent("apr")

var (
	ErrMissingIndyPrice = errors.New("no INDY price for day")
	ErrAmbiguousReward  = errors.New("expected exactly one reward entry")
)

// IndyPriceSource provides INDY daily closing prices denominated in ADA.
// Satisfied by datafetcher.CoingeckoClient.
type IndyPriceSource interface {
	INDYADADailyClosingPrices() (map[time.Time]float64, error)
}

// Calculator derives INDY-based staking APRs.
type Calculator struct {
	market     *marketdata.Aggregator
	engine     *distribution.Engine
	indyPrices IndyPriceSource
}

func NewCalculator(market *marketdata.Aggregator, engine *distribution.Engine, indyPrices IndyPriceSource) *Calculator {
	return &Calculator{market: market, engine: engine, indyPrices: indyPrices}
}

func validAPR(apr float64, subject string) error {
	if math.IsNaN(apr) || math.IsInf(apr, 0) {
		return fmt.Errorf("APR for %s is not finite: %f", subject, apr)
	}
	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
