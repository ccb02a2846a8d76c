package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/store/memory"
	"github.com/xraph/wallet/store/storetest"
	"github.com/xraph/wallet/token"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return memory.New() })
}

func TestClosedStore(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Close())
	ctx := context.Background()

	_, err := s.ListPurchased(ctx, "w1")
	assert.ErrorIs(t, err, wallet.ErrStoreClosed)
	_, err = s.ListConsumed(ctx, "w1")
	assert.ErrorIs(t, err, wallet.ErrStoreClosed)
	assert.ErrorIs(t, s.ReplacePurchased(ctx, "w1", []*token.Batch{}), wallet.ErrStoreClosed)
	assert.ErrorIs(t, s.ReplaceConsumed(ctx, "w1", nil), wallet.ErrStoreClosed)
	assert.ErrorIs(t, s.Ping(ctx), wallet.ErrStoreClosed)
}
