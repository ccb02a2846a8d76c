package observability_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/observability"
	"github.com/xraph/wallet/store/memory"
)

type fakeMetric struct {
	mu     sync.Mutex
	total  float64
	values []float64
}

func (f *fakeMetric) Inc() { f.Add(1) }

func (f *fakeMetric) Add(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.total += v
}

func (f *fakeMetric) Observe(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = append(f.values, v)
}

type fakeFactory struct {
	metrics map[string]*fakeMetric
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{metrics: make(map[string]*fakeMetric)}
}

func (f *fakeFactory) get(name string) *fakeMetric {
	m, ok := f.metrics[name]
	if !ok {
		m = &fakeMetric{}
		f.metrics[name] = m
	}
	return m
}

func (f *fakeFactory) Counter(name string) observability.Counter     { return f.get(name) }
func (f *fakeFactory) Histogram(name string) observability.Histogram { return f.get(name) }

func TestMetricsExtension(t *testing.T) {
	factory := newFakeFactory()
	metrics := observability.NewMetricsExtension(factory)

	w := wallet.New(memory.New(),
		wallet.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		wallet.WithClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		wallet.WithPlugin(metrics),
	)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	_, err := w.AddToken(ctx, bundle.Week)
	require.NoError(t, err)
	_, err = w.AddToken(ctx, bundle.Month)
	require.NoError(t, err)

	ok, err := w.Consume(ctx, 150)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = w.Consume(ctx, 1000)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, w.Reset(ctx))

	assert.Equal(t, 2.0, factory.get("wallet.bundle.added").total)
	assert.Equal(t, 600.0, factory.get("wallet.tokens.purchased").total)
	assert.Equal(t, 150.0, factory.get("wallet.tokens.consumed").total)
	assert.Equal(t, []float64{2}, factory.get("wallet.consume.allocations").values)
	assert.Equal(t, 1.0, factory.get("wallet.consume.rejected").total)
	assert.Equal(t, 1.0, factory.get("wallet.reset").total)
	assert.Equal(t, 0.0, factory.get("wallet.ledger.inconsistent").total)
}
