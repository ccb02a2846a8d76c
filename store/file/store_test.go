package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/store/storetest"
	"github.com/xraph/wallet/token"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}

func TestLedgerFilesLayout(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplacePurchased(ctx, "alice", []*token.Batch{
		storetest.NewBatch("alice", "week", 100, exp),
	}))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "alice", purchasedFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bundle": "week"`)

	temps, err := filepath.Glob(filepath.Join(s.Dir(), "alice", "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, temps)

	require.NoError(t, s.ReplacePurchased(ctx, "alice", nil))
	_, err = os.Stat(filepath.Join(s.Dir(), "alice", purchasedFile))
	assert.True(t, os.IsNotExist(err))
}

func TestPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	exp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := New(dir)
	rec := storetest.NewConsumption("bob", "day", 4, exp)
	require.NoError(t, first.ReplaceConsumed(ctx, "bob", []*token.Consumption{rec}))

	second := New(dir)
	got, err := second.ListConsumed(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID.String(), got[0].ID.String())
	assert.Equal(t, int64(4), got[0].Count)
}

func TestCorruptLedger(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), "w1"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "w1", consumedFile), []byte("{oops"), 0o600))

	_, err := s.ListConsumed(context.Background(), "w1")
	require.Error(t, err)
}

func TestInvalidWalletID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, walletID := range []string{"", "..", "a/b", `a\b`} {
		_, err := s.ListPurchased(ctx, walletID)
		assert.ErrorIs(t, err, wallet.ErrInvalidInput, walletID)
	}
}

func TestClosedStore(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.ListPurchased(context.Background(), "w1")
	assert.ErrorIs(t, err, wallet.ErrStoreClosed)
	assert.ErrorIs(t, s.Ping(context.Background()), wallet.ErrStoreClosed)
}

func TestWalletOverFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	w := wallet.New(New(dir), wallet.WithWalletID("carol"))
	require.NoError(t, w.Start(ctx))
	_, err := w.AddToken(ctx, wallet.Week)
	require.NoError(t, err)
	ok, err := w.Consume(ctx, 40)
	require.NoError(t, err)
	require.True(t, ok)

	reopened := wallet.New(New(dir), wallet.WithWalletID("carol"))
	bal, err := reopened.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(60), bal.Count)
}
