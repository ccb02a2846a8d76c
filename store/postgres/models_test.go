package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet/store/storetest"
)

func TestBatchModelConversion(t *testing.T) {
	exp := time.Date(2024, 2, 1, 10, 0, 0, 987_654_321, time.FixedZone("CET", 3600))
	b := storetest.NewBatch("w1", "month", 500, exp)

	m := toBatchModel("w1", 7, b)
	assert.Equal(t, 7, m.Seq)
	assert.Equal(t, "month", m.Bundle)
	assert.Equal(t, time.UTC, m.ExpiresAt.Location())
	assert.Zero(t, m.ExpiresAt.Nanosecond()%int(time.Millisecond))

	got, err := fromBatchModel(m)
	require.NoError(t, err)
	assert.Equal(t, b.ID.String(), got.ID.String())
	assert.Equal(t, b.Cohort(), got.Cohort())
	assert.Equal(t, int64(500), got.Count)
}

func TestConsumptionModelConversion(t *testing.T) {
	c := storetest.NewConsumption("w2", "day", 3, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	got, err := fromConsumptionModel(toConsumptionModel("w2", 0, c))
	require.NoError(t, err)
	assert.Equal(t, c.ID.String(), got.ID.String())
	assert.Equal(t, "w2", got.WalletID)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
}

func TestModelRejectsForeignID(t *testing.T) {
	c := storetest.NewConsumption("w1", "day", 1, time.Now())
	m := toBatchModel("w1", 0, storetest.NewBatch("w1", "day", 1, time.Now()))
	m.ID = c.ID.String()

	_, err := fromBatchModel(m)
	assert.Error(t, err)
}
