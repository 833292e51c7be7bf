// ./internal/state/db.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool. Nil when auditing is disabled.
var DB *sql.DB

// InitDB initializes the database connection pool from a postgres
// connection string.
func InitDB(databaseURL string) error {
	var err error
	DB, err = sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(5)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL audit database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
		DB = nil
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS reward_runs (
			run_id SERIAL PRIMARY KEY,
			command VARCHAR(64) NOT NULL,
			epoch INTEGER,
			day DATE,
			sp_epoch_lovelaces BIGINT NOT NULL DEFAULT 0,
			lp_epoch_lovelaces BIGINT NOT NULL DEFAULT 0,
			gov_epoch_lovelaces BIGINT NOT NULL DEFAULT 0,
			reward_count INTEGER NOT NULL,
			total_lovelaces BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS reward_entries (
			entry_id BIGSERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES reward_runs(run_id) ON DELETE CASCADE,
			address VARCHAR(64) NOT NULL,
			purpose TEXT NOT NULL,
			day DATE NOT NULL,
			amount_lovelaces BIGINT NOT NULL,
			expiration TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reward_entries_run ON reward_entries(run_id);
		CREATE INDEX IF NOT EXISTS idx_reward_entries_address ON reward_entries(address);
	`
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
