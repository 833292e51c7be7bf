/*

This file holds the distribution engine and the pro-rata splitter every
reward category funnels through. The engine ties together the market data
aggregator and the volatility source, the category logic lives in the
per-category files next to this one.

*/

package distribution

import (
	"errors"
	"fmt"
	"time"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/logger"
	"github.com/indigo-labs/indy-rewards/internal/marketdata"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

var distLogger = logger.GetForComponent("distribution")

var (
	ErrNothingStaked = errors.New("no stake to distribute over")
	ErrSumMismatch   = errors.New("distributed sum differs from nominal budget")
)

// sumTolerance is how far (in whole INDY) an epoch's lovelace-rounded sum
// may drift from the nominal budget before the run is rejected.
const sumTolerance = 0.01

// VolatilitySource provides per-asset volatilities for a day. Satisfied by
// analyzer.VolatilityCalculator.
type VolatilitySource interface {
	AllVolatilities(day time.Time) (map[types.Asset]float64, error)
}

// Engine computes reward distributions from market data snapshots.
type Engine struct {
	market     *marketdata.Aggregator
	volatility VolatilitySource
}

func NewEngine(market *marketdata.Aggregator, volatility VolatilitySource) *Engine {
	return &Engine{market: market, volatility: volatility}
}

// ProRata splits an INDY amount over accounts proportionally to their
// weights. Weights can be in any common unit: staked INDY, staked iAsset,
// staked LP tokens.
func ProRata(indyToDistribute float64, accounts map[string]float64, day time.Time, description string) ([]types.IndividualReward, error) {
	var total float64
	for _, weight := range accounts {
		total += weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrNothingStaked, description, day.Format("2006-01-02"))
	}

	expiration := epoch.ExpirationTime(day)
	rewards := make([]types.IndividualReward, 0, len(accounts))
	for owner, weight := range accounts {
		rewards = append(rewards, types.IndividualReward{
			PKH:         owner,
			Indy:        weight / total * indyToDistribute,
			Day:         day,
			Description: description,
			Expiration:  expiration,
		})
	}
	return rewards, nil
}

// checkEpochSum verifies that the lovelace-rounded reward sum matches the
// nominal epoch budget.
func checkEpochSum(rewards []types.IndividualReward, nominalIndy float64, category string) error {
	sum := utils.LovelacesToIndy(types.SumLovelaces(rewards))
	diff := sum - nominalIndy
	if diff < 0 {
		diff = -diff
	}
	if diff > sumTolerance {
		return fmt.Errorf("%w: %s lovelace sum %.6f vs nominal %.6f",
			ErrSumMismatch, category, sum, nominalIndy)
	}
	return nil
}
