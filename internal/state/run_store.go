// ./internal/state/run_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

// RunInfo describes one reward calculation run for the audit trail.
type RunInfo struct {
	// Command is the CLI subcommand that produced the run, e.g. "sp".
	Command string
	// Epoch is set for whole-epoch runs, nil for single-day runs.
	Epoch *int
	// Day is set for single-day runs, nil for whole-epoch runs.
	Day *time.Time

	SPEpochIndy  float64
	LPEpochIndy  float64
	GovEpochIndy float64
}

// SaveRewardRun persists a run and its reward entries. Returns the run ID.
func SaveRewardRun(info RunInfo, rewards []types.IndividualReward) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	var epoch sql.NullInt64
	if info.Epoch != nil {
		epoch = sql.NullInt64{Int64: int64(*info.Epoch), Valid: true}
	}
	var day sql.NullTime
	if info.Day != nil {
		day = sql.NullTime{Time: *info.Day, Valid: true}
	}

	// Budgets are stored in lovelaces, same unit as the reward entries.
	budgets := make([]int64, 3)
	for i, indy := range []float64{info.SPEpochIndy, info.LPEpochIndy, info.GovEpochIndy} {
		budgets[i], err = utils.FloatToScaled(indy, 6)
		if err != nil {
			return 0, fmt.Errorf("invalid epoch budget %f: %w", indy, err)
		}
	}

	var runID int64
	err = tx.QueryRow(`
		INSERT INTO reward_runs (
			command, epoch, day,
			sp_epoch_lovelaces, lp_epoch_lovelaces, gov_epoch_lovelaces,
			reward_count, total_lovelaces
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING run_id;
	`,
		info.Command, epoch, day,
		budgets[0], budgets[1], budgets[2],
		len(rewards), types.SumLovelaces(rewards),
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to save reward run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO reward_entries (run_id, address, purpose, day, amount_lovelaces, expiration)
		VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, reward := range rewards {
		if _, err := stmt.Exec(runID, reward.PKH, reward.Description, reward.Day,
			reward.Lovelaces(), reward.Expiration); err != nil {
			return 0, fmt.Errorf("failed to save reward entry for %s: %w", reward.PKH, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit transaction: %w", err)
	}

	log.Info().
		Int64("run_id", runID).
		Str("command", info.Command).
		Int("rewards", len(rewards)).
		Msg("Reward run saved to database")

	return runID, nil
}
