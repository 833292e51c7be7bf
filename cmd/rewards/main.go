// ./cmd/rewards/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/indigo-labs/indy-rewards/internal/analyzer"
	"github.com/indigo-labs/indy-rewards/internal/apr"
	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/datafetcher"
	"github.com/indigo-labs/indy-rewards/internal/distribution"
	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/logger"
	"github.com/indigo-labs/indy-rewards/internal/marketdata"
	"github.com/indigo-labs/indy-rewards/internal/state"
)

// appConfig is loaded once by the root command before any subcommand runs.
var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:           "rewards",
	Short:         "Calculate INDY reward distributions and APRs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appConfig = cfg

		logger.Initialize(cfg.LogLevel)

		if cfg.DatabaseURL != "" {
			if err := state.InitDB(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to initialize audit database: %w", err)
			}
			if err := state.EnsureSchema(); err != nil {
				return fmt.Errorf("failed to ensure audit schema: %w", err)
			}
		}

		return nil
	},
}

func main() {
	err := rootCmd.Execute()
	state.CloseDB()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newEngine wires the market data aggregator and the distribution engine
// against the live API clients.
func newEngine(cfg config.Config) (*marketdata.Aggregator, *distribution.Engine) {
	market := marketdata.NewAggregator(datafetcher.NewAnalyticsClient(cfg))
	volatility := analyzer.NewVolatilityCalculator(datafetcher.NewPolygonClient(cfg))
	return market, distribution.NewEngine(market, volatility)
}

func newAPRCalculator(cfg config.Config) *apr.Calculator {
	market, engine := newEngine(cfg)
	return apr.NewCalculator(market, engine, datafetcher.NewCoingeckoClient(cfg))
}

// epochOrDate is a parsed positional argument: either a whole epoch or a
// single UTC day.
type epochOrDate struct {
	epoch int
	day   *time.Time
}

func (t epochOrDate) effectiveEpoch() int {
	if t.day != nil {
		return epoch.DateToEpoch(*t.day)
	}
	return t.epoch
}

func snapshotString(day time.Time) string {
	return epoch.SnapshotTime(day).Format("2006 January 02, 15:04 UTC")
}

// parseEpochOrDate accepts an epoch number or a YYYY-MM-DD date and rejects
// targets whose snapshots have not happened yet.
func parseEpochOrDate(arg string) (epochOrDate, error) {
	now := time.Now().UTC()

	if epochNumber, err := strconv.Atoi(arg); err == nil {
		endDay := epoch.EndDate(epochNumber)
		if epoch.IsFutureSnapshot(endDay, now) {
			return epochOrDate{}, fmt.Errorf(
				"epoch's last snapshot must not be in the future, epoch %d's last "+
					"snapshot is around %s, plus up to 45 minutes until results appear on the API",
				epochNumber, snapshotString(endDay))
		}
		return epochOrDate{epoch: epochNumber}, nil
	}

	day, err := time.ParseInLocation("2006-01-02", arg, time.UTC)
	if err != nil {
		return epochOrDate{}, fmt.Errorf("must be a valid integer or date in the YYYY-MM-DD format")
	}
	if epoch.IsFutureSnapshot(day, now) {
		return epochOrDate{}, fmt.Errorf(
			"snapshot for the day isn't done yet, it's around %s, "+
				"plus up to 45 minutes until results appear on the API",
			snapshotString(day))
	}
	return epochOrDate{day: &day}, nil
}

func parseDateArg(arg string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", arg, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", arg)
	}
	if err := epoch.EnsureSnapshotTaken(time.Now(), day); err != nil {
		return time.Time{}, fmt.Errorf("%w, it's around %s", err, snapshotString(day))
	}
	return day, nil
}

// resolveIndy returns the flag value when set, falling back to the emission
// schedule for the target's epoch.
func resolveIndy(flagValue float64, target epochOrDate, schedule func(int) float64) float64 {
	if flagValue > 0 {
		return flagValue
	}
	return schedule(target.effectiveEpoch())
}

// ensurePolygonKey requires POLYGON_API_KEY only when the target still needs
// the legacy volatility data: days before the no-volatility cutover, or days
// with recently launched assets.
func ensurePolygonKey(cfg config.Config, target epochOrDate, force bool) error {
	if !force {
		day := target.day
		if day == nil {
			first := epoch.SnapshotDates(target.epoch)[0]
			day = &first
		}
		if !day.Before(config.FirstNoVolatilityDay) && len(config.NewAssets(*day)) == 0 {
			return nil
		}
	}
	return cfg.RequirePolygonKey()
}

func errorOnLPMovedToDex(target epochOrDate) error {
	moved := target.epoch > config.LPProgramLastEpoch
	if target.day != nil {
		moved = target.day.After(config.LPProgramLastDay)
	}
	if moved {
		return fmt.Errorf("LP reward distribution moved to dexes starting 2023 July 5th")
	}
	return nil
}
