package extension

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/wallet"
	audithook "github.com/xraph/wallet/audit_hook"
	"github.com/xraph/wallet/observability"
	"github.com/xraph/wallet/store/memory"
)

type countingMetric struct {
	mu    sync.Mutex
	total float64
}

func (m *countingMetric) Inc()              { m.Add(1) }
func (m *countingMetric) Observe(v float64) { m.Add(v) }
func (m *countingMetric) Add(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total += v
}

func (m *countingMetric) value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

type metricFactory struct {
	mu      sync.Mutex
	metrics map[string]*countingMetric
}

func (f *metricFactory) get(name string) *countingMetric {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metrics == nil {
		f.metrics = make(map[string]*countingMetric)
	}
	m, ok := f.metrics[name]
	if !ok {
		m = &countingMetric{}
		f.metrics[name] = m
	}
	return m
}

func (f *metricFactory) Counter(name string) observability.Counter     { return f.get(name) }
func (f *metricFactory) Histogram(name string) observability.Histogram { return f.get(name) }

func TestObservabilityOptionsRegisterPlugins(t *testing.T) {
	ctx := context.Background()
	factory := &metricFactory{}

	var (
		mu      sync.Mutex
		actions []string
	)
	recorder := audithook.RecorderFunc(func(_ context.Context, ev *audithook.AuditEvent) error {
		mu.Lock()
		defer mu.Unlock()
		actions = append(actions, ev.Action)
		return nil
	})

	e := New(
		WithConfig(Config{WalletID: "metered"}),
		WithMetrics(factory),
		WithAuditRecorder(recorder),
	)
	opts, err := e.buildWalletOpts()
	require.NoError(t, err)

	w := wallet.New(memory.New(), opts...)
	assert.Equal(t, 2, w.Plugins().Count())

	_, err = w.AddToken(ctx, wallet.Day)
	require.NoError(t, err)
	ok, err := w.Consume(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, float64(1), factory.get("wallet.bundle.added").value())
	assert.Equal(t, float64(3), factory.get("wallet.tokens.consumed").value())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, actions, audithook.ActionBundleAdded)
	assert.Contains(t, actions, audithook.ActionTokensConsumed)
}

func TestAuditRecorderOptionsPassThrough(t *testing.T) {
	var got []string
	recorder := audithook.RecorderFunc(func(_ context.Context, ev *audithook.AuditEvent) error {
		got = append(got, ev.Action)
		return nil
	})

	e := New(WithAuditRecorder(recorder, audithook.WithDisabledActions(audithook.ActionBundleAdded)))
	opts, err := e.buildWalletOpts()
	require.NoError(t, err)

	w := wallet.New(memory.New(), opts...)
	_, err = w.AddToken(context.Background(), wallet.Day)
	require.NoError(t, err)
	assert.Empty(t, got)
}
