package plugin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet/token"
)

type namedPlugin struct{ name string }

func (p namedPlugin) Name() string { return p.name }

type consumeCounter struct {
	namedPlugin
	calls atomic.Int64
	total atomic.Int64
}

func (c *consumeCounter) OnTokensConsumed(_ context.Context, _ string, count int64, _ []*token.Consumption) error {
	c.calls.Add(1)
	c.total.Add(count)
	return nil
}

type slowReset struct{ namedPlugin }

func (slowReset) OnWalletReset(ctx context.Context, _ string) error {
	select {
	case <-time.After(time.Second):
	case <-ctx.Done():
	}
	return nil
}

type failingReject struct {
	namedPlugin
	calls atomic.Int64
}

func (f *failingReject) OnConsumeRejected(context.Context, string, int64, int64) error {
	f.calls.Add(1)
	return errors.New("boom")
}

func quietRegistry() *Registry {
	return NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := quietRegistry()
	require.NoError(t, r.Register(namedPlugin{name: "a"}))
	require.Error(t, r.Register(namedPlugin{name: "a"}))
	require.NoError(t, r.Register(namedPlugin{name: "b"}))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "b", r.Get("b").Name())
	assert.Nil(t, r.Get("missing"))
	assert.Len(t, r.List(), 2)
}

func TestImplementedInterfaces(t *testing.T) {
	c := &consumeCounter{namedPlugin: namedPlugin{name: "c"}}
	assert.Equal(t, []string{"OnTokensConsumed"}, implementedInterfaces(c))
	assert.Empty(t, implementedInterfaces(namedPlugin{name: "n"}))
}

func TestEmitDispatchesOnlyToImplementers(t *testing.T) {
	r := quietRegistry()
	c := &consumeCounter{namedPlugin: namedPlugin{name: "c"}}
	require.NoError(t, r.Register(c))
	require.NoError(t, r.Register(namedPlugin{name: "plain"}))

	ctx := context.Background()
	r.EmitTokensConsumed(ctx, "w1", 5, nil)
	r.EmitTokensConsumed(ctx, "w1", 7, nil)
	r.EmitConsumeRejected(ctx, "w1", 3, 1)

	assert.Equal(t, int64(2), c.calls.Load())
	assert.Equal(t, int64(12), c.total.Load())
}

func TestEmitSwallowsHookErrors(t *testing.T) {
	r := quietRegistry()
	f := &failingReject{namedPlugin: namedPlugin{name: "f"}}
	require.NoError(t, r.Register(f))

	r.EmitConsumeRejected(context.Background(), "w1", 3, 1)
	assert.Equal(t, int64(1), f.calls.Load())
}

func TestEmitTimesOut(t *testing.T) {
	r := quietRegistry().WithTimeout(20 * time.Millisecond)
	require.NoError(t, r.Register(slowReset{namedPlugin{name: "slow"}}))

	start := time.Now()
	r.EmitWalletReset(context.Background(), "w1")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCallWithTimeout(t *testing.T) {
	r := quietRegistry().WithTimeout(10 * time.Millisecond)

	err := r.callWithTimeout(context.Background(), "p", func() error { return nil })
	assert.NoError(t, err)

	err = r.callWithTimeout(context.Background(), "p", func() error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	assert.ErrorContains(t, err, "plugin timeout: p")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r = quietRegistry()
	err = r.callWithTimeout(ctx, "p", func() error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
