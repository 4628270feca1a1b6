package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/valuebet/internal/pkg/config"
	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

var _ SignalStorage = (*PostgresSignalStorage)(nil)

// PostgresSignalStorage stores flagged value signals, one row per priced side.
type PostgresSignalStorage struct {
	db *sql.DB
}

func NewPostgresSignalStorage(cfg *config.PostgresConfig) (*PostgresSignalStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresSignalStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL signal storage initialized")
	return s, nil
}

func (s *PostgresSignalStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS value_signals (
		id SERIAL PRIMARY KEY,
		match_name VARCHAR(500) NOT NULL,
		match_url VARCHAR(1000) NOT NULL,
		kickoff TIMESTAMP NOT NULL,
		market VARCHAR(100) NOT NULL,
		kind VARCHAR(20) NOT NULL,
		line DECIMAL(6, 2) NOT NULL DEFAULT 0,
		side VARCHAR(20) NOT NULL,
		market_odds DECIMAL(10, 4) NOT NULL,
		fair_odds DECIMAL(10, 4) NOT NULL,
		deviation DECIMAL(10, 3) NOT NULL,
		detected_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(match_url, market, side, detected_at)
	);

	CREATE INDEX IF NOT EXISTS idx_value_signals_kickoff ON value_signals(kickoff);
	CREATE INDEX IF NOT EXISTS idx_value_signals_deviation ON value_signals(deviation DESC);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// StoreSignals writes all sides of the given signals in one transaction.
func (s *PostgresSignalStorage) StoreSignals(ctx context.Context, signals []models.ValueSignal) error {
	if len(signals) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO value_signals
			(match_name, match_url, kickoff, market, kind, line, side, market_odds, fair_odds, deviation, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (match_url, market, side, detected_at) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sig := range signals {
		for _, side := range sig.Sides {
			if _, err := stmt.ExecContext(ctx,
				sig.MatchName, sig.MatchURL, sig.Kickoff.UTC(), sig.Market, string(sig.Kind), sig.Line,
				side.Side, side.MarketOdds, side.FairOdds, side.Deviation, sig.DetectedAt.UTC(),
			); err != nil {
				return fmt.Errorf("insert signal %s/%s: %w", sig.Market, side.Side, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresSignalStorage) Close() error {
	return s.db.Close()
}
