package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/store/storetest"
)

// newTestStore opens a migrated store on a fresh database file. A file is
// used rather than :memory: so every pooled connection sees the same data.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	sdb := sqlitedriver.New()
	require.NoError(t, sdb.Open(ctx, filepath.Join(t.TempDir(), "wallet.db")))
	db, err := grove.Open(sdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}

func TestAtomicReplace(t *testing.T) {
	storetest.RunAtomicReplace(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestWalletOverSQLite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w := wallet.New(s, wallet.WithWalletID("dave"))
	require.NoError(t, w.Start(ctx))
	_, err := w.AddToken(ctx, wallet.Week)
	require.NoError(t, err)
	_, err = w.AddToken(ctx, wallet.Day)
	require.NoError(t, err)

	ok, err := w.Consume(ctx, 15)
	require.NoError(t, err)
	require.True(t, ok)

	reopened := wallet.New(s, wallet.WithWalletID("dave"))
	bal, err := reopened.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(95), bal.Count)

	consumed, err := s.ListConsumed(ctx, "dave")
	require.NoError(t, err)
	require.Len(t, consumed, 2)
	assert.Equal(t, int64(10), consumed[0].Count)
	assert.Equal(t, int64(5), consumed[1].Count)
}
