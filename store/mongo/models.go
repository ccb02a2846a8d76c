package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/id"
	"github.com/xraph/wallet/token"
	"github.com/xraph/wallet/types"
)

// ==================== Ledger heads ====================

// headModel points a wallet ledger at its live generation. Documents of any
// other generation are invisible to readers.
type headModel struct {
	grove.BaseModel `grove:"table:wallet_ledger_heads"`

	ID         string    `grove:"id,pk"      bson:"_id"`
	Generation string    `grove:"generation" bson:"generation"`
	UpdatedAt  time.Time `grove:"updated_at" bson:"updated_at"`
}

func headKey(walletID, ledger string) string {
	return walletID + ":" + ledger
}

func docID(generation, recordID string) string {
	return generation + ":" + recordID
}

// ==================== Batch models ====================

type batchModel struct {
	grove.BaseModel `grove:"table:wallet_batches"`

	DocID      string    `grove:"id,pk"      bson:"_id"`
	RecordID   string    `grove:"record_id"  bson:"record_id"`
	WalletID   string    `grove:"wallet_id"  bson:"wallet_id"`
	Generation string    `grove:"generation" bson:"generation"`
	Seq        int       `grove:"seq"        bson:"seq"`
	Bundle     string    `grove:"bundle"     bson:"bundle"`
	Count      int64     `grove:"count"      bson:"count"`
	ExpiresAt  time.Time `grove:"expires_at" bson:"expires_at"`
	CreatedAt  time.Time `grove:"created_at" bson:"created_at"`
}

func toBatchModel(walletID, generation string, seq int, b *token.Batch) *batchModel {
	return &batchModel{
		DocID:      docID(generation, b.ID.String()),
		RecordID:   b.ID.String(),
		WalletID:   walletID,
		Generation: generation,
		Seq:        seq,
		Bundle:     string(b.Bundle),
		Count:      b.Count,
		ExpiresAt:  types.Normalize(b.ExpiresAt),
		CreatedAt:  types.Normalize(b.CreatedAt),
	}
}

func fromBatchModel(m *batchModel) (*token.Batch, error) {
	batchID, err := id.ParseBatchID(m.RecordID)
	if err != nil {
		return nil, err
	}
	return &token.Batch{
		Entity:    types.Entity{CreatedAt: types.Normalize(m.CreatedAt)},
		ID:        batchID,
		WalletID:  m.WalletID,
		Count:     m.Count,
		ExpiresAt: types.Normalize(m.ExpiresAt),
		Bundle:    bundle.Key(m.Bundle),
	}, nil
}

// ==================== Consumption models ====================

type consumptionModel struct {
	grove.BaseModel `grove:"table:wallet_consumptions"`

	DocID      string    `grove:"id,pk"      bson:"_id"`
	RecordID   string    `grove:"record_id"  bson:"record_id"`
	WalletID   string    `grove:"wallet_id"  bson:"wallet_id"`
	Generation string    `grove:"generation" bson:"generation"`
	Seq        int       `grove:"seq"        bson:"seq"`
	Bundle     string    `grove:"bundle"     bson:"bundle"`
	Count      int64     `grove:"count"      bson:"count"`
	ExpiresAt  time.Time `grove:"expires_at" bson:"expires_at"`
	CreatedAt  time.Time `grove:"created_at" bson:"created_at"`
}

func toConsumptionModel(walletID, generation string, seq int, c *token.Consumption) *consumptionModel {
	return &consumptionModel{
		DocID:      docID(generation, c.ID.String()),
		RecordID:   c.ID.String(),
		WalletID:   walletID,
		Generation: generation,
		Seq:        seq,
		Bundle:     string(c.Bundle),
		Count:      c.Count,
		ExpiresAt:  types.Normalize(c.ExpiresAt),
		CreatedAt:  types.Normalize(c.CreatedAt),
	}
}

func fromConsumptionModel(m *consumptionModel) (*token.Consumption, error) {
	consumptionID, err := id.ParseConsumptionID(m.RecordID)
	if err != nil {
		return nil, err
	}
	return &token.Consumption{
		Entity:    types.Entity{CreatedAt: types.Normalize(m.CreatedAt)},
		ID:        consumptionID,
		WalletID:  m.WalletID,
		Count:     m.Count,
		ExpiresAt: types.Normalize(m.ExpiresAt),
		Bundle:    bundle.Key(m.Bundle),
	}, nil
}
