package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/store/storetest"
)

func TestBatchModelRoundTrip(t *testing.T) {
	exp := time.Date(2024, 2, 1, 10, 0, 0, 123_456_789, time.FixedZone("X", 7200))
	b := storetest.NewBatch("w1", "week", 100, exp)

	m := toBatchModel("w1", "g1", 3, b)
	assert.Equal(t, 3, m.Seq)
	assert.Equal(t, "g1", m.Generation)
	assert.Equal(t, "g1:"+b.ID.String(), m.DocID)
	assert.Equal(t, time.UTC, m.ExpiresAt.Location())

	got, err := fromBatchModel(m)
	require.NoError(t, err)
	assert.Equal(t, b.ID.String(), got.ID.String())
	assert.Equal(t, b.Bundle, got.Bundle)
	assert.True(t, got.ExpiresAt.Equal(b.ExpiresAt))
}

func TestConsumptionModelRejectsWrongPrefix(t *testing.T) {
	b := storetest.NewBatch("w1", "week", 100, time.Now())
	m := &consumptionModel{RecordID: b.ID.String(), WalletID: "w1", Count: 1}

	_, err := fromConsumptionModel(m)
	assert.Error(t, err)
}

func TestMigrationIndexes(t *testing.T) {
	idx := migrationIndexes()
	require.Len(t, idx[colBatches], 1)
	require.Len(t, idx[colConsumptions], 2)

	keys, ok := idx[colBatches][0].Keys.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "wallet_id", keys[0].Key)
	assert.Equal(t, "generation", keys[1].Key)
	assert.Equal(t, "seq", keys[2].Key)
}

func TestGenerationsKeepRecordIDsApart(t *testing.T) {
	c := storetest.NewConsumption("w1", "day", 2, time.Now())

	a := toConsumptionModel("w1", newGeneration(), 0, c)
	b := toConsumptionModel("w1", newGeneration(), 0, c)
	assert.NotEqual(t, a.Generation, b.Generation)
	assert.NotEqual(t, a.DocID, b.DocID)
	assert.Equal(t, a.RecordID, b.RecordID)

	got, err := fromConsumptionModel(b)
	require.NoError(t, err)
	assert.Equal(t, c.ID.String(), got.ID.String())
}

func TestHeadKeySeparatesLedgers(t *testing.T) {
	assert.NotEqual(t, headKey("w1", ledgerPurchased), headKey("w1", ledgerConsumed))
	assert.Equal(t, "w1:consumed", headKey("w1", ledgerConsumed))
}

// newTestStore connects to WALLET_TEST_MONGO_URI and drops the wallet
// collections. Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("WALLET_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WALLET_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	mdb := mongodriver.New()
	require.NoError(t, mdb.Open(ctx, uri))
	db, err := grove.Open(mdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	for _, col := range []string{colBatches, colConsumptions, colHeads} {
		require.NoError(t, s.mdb.Collection(col).Drop(ctx))
	}
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
