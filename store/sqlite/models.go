package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/id"
	"github.com/xraph/wallet/token"
	"github.com/xraph/wallet/types"
)

// ==================== Batch models ====================

type batchModel struct {
	grove.BaseModel `grove:"table:wallet_batches"`

	ID        string    `grove:"id,pk"`
	WalletID  string    `grove:"wallet_id"`
	Seq       int       `grove:"seq"`
	Bundle    string    `grove:"bundle"`
	Count     int64     `grove:"count"`
	ExpiresAt time.Time `grove:"expires_at"`
	CreatedAt time.Time `grove:"created_at"`
}

func toBatchModel(walletID string, seq int, b *token.Batch) *batchModel {
	return &batchModel{
		ID:        b.ID.String(),
		WalletID:  walletID,
		Seq:       seq,
		Bundle:    string(b.Bundle),
		Count:     b.Count,
		ExpiresAt: types.Normalize(b.ExpiresAt),
		CreatedAt: types.Normalize(b.CreatedAt),
	}
}

func fromBatchModel(m *batchModel) (*token.Batch, error) {
	batchID, err := id.ParseBatchID(m.ID)
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

	ID        string    `grove:"id,pk"`
	WalletID  string    `grove:"wallet_id"`
	Seq       int       `grove:"seq"`
	Bundle    string    `grove:"bundle"`
	Count     int64     `grove:"count"`
	ExpiresAt time.Time `grove:"expires_at"`
	CreatedAt time.Time `grove:"created_at"`
}

func toConsumptionModel(walletID string, seq int, c *token.Consumption) *consumptionModel {
	return &consumptionModel{
		ID:        c.ID.String(),
		WalletID:  walletID,
		Seq:       seq,
		Bundle:    string(c.Bundle),
		Count:     c.Count,
		ExpiresAt: types.Normalize(c.ExpiresAt),
		CreatedAt: types.Normalize(c.CreatedAt),
	}
}

func fromConsumptionModel(m *consumptionModel) (*token.Consumption, error) {
	consumptionID, err := id.ParseConsumptionID(m.ID)
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
