package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	walletstore "github.com/xraph/wallet/store"
	"github.com/xraph/wallet/token"
)

// Collection name constants.
const (
	colBatches      = "wallet_batches"
	colConsumptions = "wallet_consumptions"
	colHeads        = "wallet_ledger_heads"
)

// Ledger names used in head keys.
const (
	ledgerPurchased = "purchased"
	ledgerConsumed  = "consumed"
)

// maxReadAttempts bounds how often a read retries when a concurrent replace
// moves the head underneath it.
const maxReadAttempts = 3

// compile-time interface check
var _ walletstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
//
// Each wallet ledger is stored as a generation of documents plus a head
// document naming the live generation. A replace inserts a new generation,
// moves the head to it, then deletes older generations. A replace that fails
// before the head moves leaves the previous ledger visible.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all wallet collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("wallet/mongo: migrate %s indexes: %w", col, err)
		}
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
	err := s.readGeneration(ctx, walletID, ledgerPurchased, func(gen string) error {
		models = nil
		return s.mdb.NewFind(&models).
			Filter(bson.M{"wallet_id": walletID, "generation": gen}).
			Sort(bson.D{{Key: "seq", Value: 1}}).
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("wallet/mongo: list purchased: %w", err)
	}

	result := make([]*token.Batch, len(models))
	for i := range models {
		b, err := fromBatchModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("wallet/mongo: list purchased: %w", err)
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) ReplacePurchased(ctx context.Context, walletID string, batches []*token.Batch) error {
	gen := newGeneration()
	for i, b := range batches {
		if _, err := s.mdb.NewInsert(toBatchModel(walletID, gen, i, b)).Exec(ctx); err != nil {
			s.dropGeneration(ctx, (*batchModel)(nil), walletID, gen)
			return fmt.Errorf("wallet/mongo: replace purchased: %w", err)
		}
	}

	if err := s.moveHead(ctx, walletID, ledgerPurchased, gen); err != nil {
		s.dropGeneration(ctx, (*batchModel)(nil), walletID, gen)
		return fmt.Errorf("wallet/mongo: replace purchased: %w", err)
	}
	s.dropStale(ctx, (*batchModel)(nil), walletID, gen)
	return nil
}

// ==================== Consumption ledger ====================

func (s *Store) ListConsumed(ctx context.Context, walletID string) ([]*token.Consumption, error) {
	var models []consumptionModel
	err := s.readGeneration(ctx, walletID, ledgerConsumed, func(gen string) error {
		models = nil
		return s.mdb.NewFind(&models).
			Filter(bson.M{"wallet_id": walletID, "generation": gen}).
			Sort(bson.D{{Key: "seq", Value: 1}}).
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("wallet/mongo: list consumed: %w", err)
	}

	result := make([]*token.Consumption, len(models))
	for i := range models {
		c, err := fromConsumptionModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("wallet/mongo: list consumed: %w", err)
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) ReplaceConsumed(ctx context.Context, walletID string, records []*token.Consumption) error {
	gen := newGeneration()
	for i, c := range records {
		if _, err := s.mdb.NewInsert(toConsumptionModel(walletID, gen, i, c)).Exec(ctx); err != nil {
			s.dropGeneration(ctx, (*consumptionModel)(nil), walletID, gen)
			return fmt.Errorf("wallet/mongo: replace consumed: %w", err)
		}
	}

	if err := s.moveHead(ctx, walletID, ledgerConsumed, gen); err != nil {
		s.dropGeneration(ctx, (*consumptionModel)(nil), walletID, gen)
		return fmt.Errorf("wallet/mongo: replace consumed: %w", err)
	}
	s.dropStale(ctx, (*consumptionModel)(nil), walletID, gen)
	return nil
}

// ==================== Generations ====================

func newGeneration() string {
	return bson.NewObjectID().Hex()
}

// headGeneration returns the live generation, or "" when the ledger has
// never been written.
func (s *Store) headGeneration(ctx context.Context, walletID, ledger string) (string, error) {
	var h headModel
	err := s.mdb.NewFind(&h).
		Filter(bson.M{"_id": headKey(walletID, ledger)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return "", nil
		}
		return "", err
	}
	return h.Generation, nil
}

// readGeneration runs find against the live generation and retries when the
// head moved while it ran.
func (s *Store) readGeneration(ctx context.Context, walletID, ledger string, find func(gen string) error) error {
	for attempt := 0; ; attempt++ {
		gen, err := s.headGeneration(ctx, walletID, ledger)
		if err != nil || gen == "" {
			return err
		}
		if err := find(gen); err != nil {
			return err
		}

		after, err := s.headGeneration(ctx, walletID, ledger)
		if err != nil {
			return err
		}
		if after == gen || attempt+1 >= maxReadAttempts {
			return nil
		}
	}
}

func (s *Store) moveHead(ctx context.Context, walletID, ledger, gen string) error {
	_, err := s.mdb.NewUpdate((*headModel)(nil)).
		Filter(bson.M{"_id": headKey(walletID, ledger)}).
		Set("generation", gen).
		Set("updated_at", time.Now().UTC()).
		Upsert().
		Exec(ctx)
	return err
}

// dropGeneration removes a generation that never became live.
func (s *Store) dropGeneration(ctx context.Context, model any, walletID, gen string) {
	_, _ = s.mdb.NewDelete(model).
		Filter(bson.M{"wallet_id": walletID, "generation": gen}).
		Many().
		Exec(ctx)
}

// dropStale removes every generation but the live one. Failures are left for
// the next replace since stale documents are never read.
func (s *Store) dropStale(ctx context.Context, model any, walletID, live string) {
	_, _ = s.mdb.NewDelete(model).
		Filter(bson.M{"wallet_id": walletID, "generation": bson.M{"$ne": live}}).
		Many().
		Exec(ctx)
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// ==================== Indexes ====================

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colBatches: {
			{
				Keys:    bson.D{{Key: "wallet_id", Value: 1}, {Key: "generation", Value: 1}, {Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colConsumptions: {
			{
				Keys:    bson.D{{Key: "wallet_id", Value: 1}, {Key: "generation", Value: 1}, {Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "wallet_id", Value: 1}, {Key: "bundle", Value: 1}, {Key: "expires_at", Value: 1}}},
		},
	}
}
