// Package storetest provides a conformance suite for store.Store
// implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/id"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/token"
	"github.com/xraph/wallet/types"
)

// Factory returns a fresh, migrated store for one subtest.
type Factory func(t *testing.T) store.Store

var base = time.Date(2024, time.May, 10, 9, 30, 15, 123_000_000, time.UTC)

// NewBatch builds a batch at storage precision.
func NewBatch(walletID, key string, count int64, expires time.Time) *token.Batch {
	return &token.Batch{
		Entity:    types.NewEntity(base),
		ID:        id.NewBatchID(),
		WalletID:  walletID,
		Count:     count,
		ExpiresAt: types.Normalize(expires),
		Bundle:    bundle.Key(key),
	}
}

// NewConsumption builds a consumption record at storage precision.
func NewConsumption(walletID, key string, count int64, expires time.Time) *token.Consumption {
	return &token.Consumption{
		Entity:    types.NewEntity(base),
		ID:        id.NewConsumptionID(),
		WalletID:  walletID,
		Count:     count,
		ExpiresAt: types.Normalize(expires),
		Bundle:    bundle.Key(key),
	}
}

// Run exercises the token.Store contract plus Ping and Migrate.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("EmptyWallet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		purchased, err := s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		assert.Empty(t, purchased)

		consumed, err := s.ListConsumed(ctx, "w1")
		require.NoError(t, err)
		assert.Empty(t, consumed)
	})

	t.Run("ReplaceAndListPurchased", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		want := []*token.Batch{
			NewBatch("w1", "month", 500, base.AddDate(0, 1, 0)),
			NewBatch("w1", "week", 100, base.AddDate(0, 0, 7)),
			NewBatch("w1", "week", 100, base.AddDate(0, 0, 7)),
		}
		require.NoError(t, s.ReplacePurchased(ctx, "w1", want))

		got, err := s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assertBatch(t, want[i], got[i])
		}
	})

	t.Run("ReplaceAndListConsumed", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		want := []*token.Consumption{
			NewConsumption("w1", "week", 30, base.AddDate(0, 0, 7)),
			NewConsumption("w1", "month", 1, base.AddDate(0, 1, 0)),
		}
		require.NoError(t, s.ReplaceConsumed(ctx, "w1", want))

		got, err := s.ListConsumed(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assertConsumption(t, want[i], got[i])
		}
	})

	t.Run("ReplaceOverwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first := NewBatch("w1", "day", 10, base.AddDate(0, 0, 1))
		second := NewBatch("w1", "year", 1000, base.AddDate(1, 0, 0))
		require.NoError(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{first}))
		require.NoError(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{first, second}))

		got, err := s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assertBatch(t, first, got[0])
		assertBatch(t, second, got[1])

		require.NoError(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{second}))
		got, err = s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assertBatch(t, second, got[0])
	})

	t.Run("ReplaceWithNilClears", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{NewBatch("w1", "day", 10, base)}))
		require.NoError(t, s.ReplaceConsumed(ctx, "w1", []*token.Consumption{NewConsumption("w1", "day", 1, base)}))

		require.NoError(t, s.ReplacePurchased(ctx, "w1", nil))
		require.NoError(t, s.ReplaceConsumed(ctx, "w1", nil))

		purchased, err := s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		assert.Empty(t, purchased)
		consumed, err := s.ListConsumed(ctx, "w1")
		require.NoError(t, err)
		assert.Empty(t, consumed)
	})

	t.Run("WalletsAreIsolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{NewBatch("w1", "week", 100, base)}))
		require.NoError(t, s.ReplacePurchased(ctx, "w2", []*token.Batch{NewBatch("w2", "day", 10, base)}))
		require.NoError(t, s.ReplacePurchased(ctx, "w1", nil))

		got, err := s.ListPurchased(ctx, "w2")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(10), got[0].Count)
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		b := NewBatch("w1", "week", 100, base)
		require.NoError(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{b}))
		b.Count = 1

		got, err := s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(100), got[0].Count)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
		assert.NoError(t, s.Migrate(context.Background()))
	})
}

// RunAtomicReplace checks that a replace rejected by the backend leaves the
// previous ledger in place. It applies to stores that enforce unique record
// IDs.
func RunAtomicReplace(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("FailedReplaceKeepsConsumed", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		kept := NewConsumption("w1", "day", 4, base.AddDate(0, 0, 1))
		require.NoError(t, s.ReplaceConsumed(ctx, "w1", []*token.Consumption{kept}))

		dup := NewConsumption("w1", "week", 2, base.AddDate(0, 0, 7))
		err := s.ReplaceConsumed(ctx, "w1", []*token.Consumption{dup, dup})
		require.Error(t, err)

		got, err := s.ListConsumed(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assertConsumption(t, kept, got[0])
	})

	t.Run("FailedReplaceKeepsPurchased", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		kept := []*token.Batch{
			NewBatch("w1", "week", 100, base.AddDate(0, 0, 7)),
			NewBatch("w1", "day", 10, base.AddDate(0, 0, 1)),
		}
		require.NoError(t, s.ReplacePurchased(ctx, "w1", kept))

		dup := NewBatch("w1", "month", 500, base.AddDate(0, 1, 0))
		err := s.ReplacePurchased(ctx, "w1", []*token.Batch{kept[0], dup, dup})
		require.Error(t, err)

		got, err := s.ListPurchased(ctx, "w1")
		require.NoError(t, err)
		require.Len(t, got, len(kept))
		for i := range kept {
			assertBatch(t, kept[i], got[i])
		}
	})
}

func assertBatch(t *testing.T, want, got *token.Batch) {
	t.Helper()
	assert.Equal(t, want.ID.String(), got.ID.String())
	assert.Equal(t, want.WalletID, got.WalletID)
	assert.Equal(t, want.Count, got.Count)
	assert.Equal(t, want.Bundle, got.Bundle)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt), "expires_at: want %s, got %s", want.ExpiresAt, got.ExpiresAt)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
}

func assertConsumption(t *testing.T, want, got *token.Consumption) {
	t.Helper()
	assert.Equal(t, want.ID.String(), got.ID.String())
	assert.Equal(t, want.WalletID, got.WalletID)
	assert.Equal(t, want.Count, got.Count)
	assert.Equal(t, want.Bundle, got.Bundle)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt), "expires_at: want %s, got %s", want.ExpiresAt, got.ExpiresAt)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %s, got %s", want.CreatedAt, got.CreatedAt)
}
