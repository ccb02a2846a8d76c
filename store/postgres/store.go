package postgres

import (
	"context"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	walletstore "github.com/xraph/wallet/store"
	"github.com/xraph/wallet/token"
)

// compile-time interface check
var _ walletstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
//
// Replace operations delete the wallet's rows and insert the new ledger
// inside one transaction, so a failed insert leaves the previous ledger.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("wallet/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("wallet/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Purchase ledger ====================

func (s *Store) ListPurchased(ctx context.Context, walletID string) ([]*token.Batch, error) {
	var models []batchModel
	err := s.pg.NewSelect(&models).
		Where("wallet_id = $1", walletID).
		OrderExpr("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wallet/postgres: list purchased: %w", err)
	}

	result := make([]*token.Batch, len(models))
	for i := range models {
		b, err := fromBatchModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("wallet/postgres: list purchased: %w", err)
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) ReplacePurchased(ctx context.Context, walletID string, batches []*token.Batch) error {
	tx, err := s.pg.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("wallet/postgres: replace purchased: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.NewDelete((*batchModel)(nil)).
		Where("wallet_id = $1", walletID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wallet/postgres: replace purchased: %w", err)
	}

	if len(batches) > 0 {
		models := make([]batchModel, len(batches))
		for i, b := range batches {
			models[i] = *toBatchModel(walletID, i, b)
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("wallet/postgres: replace purchased: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wallet/postgres: replace purchased: commit: %w", err)
	}
	return nil
}

// ==================== Consumption ledger ====================

func (s *Store) ListConsumed(ctx context.Context, walletID string) ([]*token.Consumption, error) {
	var models []consumptionModel
	err := s.pg.NewSelect(&models).
		Where("wallet_id = $1", walletID).
		OrderExpr("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wallet/postgres: list consumed: %w", err)
	}

	result := make([]*token.Consumption, len(models))
	for i := range models {
		c, err := fromConsumptionModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("wallet/postgres: list consumed: %w", err)
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) ReplaceConsumed(ctx context.Context, walletID string, records []*token.Consumption) error {
	tx, err := s.pg.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("wallet/postgres: replace consumed: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.NewDelete((*consumptionModel)(nil)).
		Where("wallet_id = $1", walletID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("wallet/postgres: replace consumed: %w", err)
	}

	if len(records) > 0 {
		models := make([]consumptionModel, len(records))
		for i, c := range records {
			models[i] = *toConsumptionModel(walletID, i, c)
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("wallet/postgres: replace consumed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("wallet/postgres: replace consumed: commit: %w", err)
	}
	return nil
}
