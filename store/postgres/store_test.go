package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"

	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/store/storetest"
)

// newTestStore connects to WALLET_TEST_POSTGRES_DSN and clears the wallet
// tables. Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("WALLET_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WALLET_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pgdb := pgdriver.New()
	require.NoError(t, pgdb.Open(ctx, dsn))
	db, err := grove.Open(pgdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(ctx))
	_, err = s.pg.NewDelete((*batchModel)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)
	_, err = s.pg.NewDelete((*consumptionModel)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)
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
