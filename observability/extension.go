// Package observability provides a metrics extension for wallets that records
// ledger event counts via go-utils MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/wallet/plugin"
	"github.com/xraph/wallet/token"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnBundleAdded        = (*MetricsExtension)(nil)
	_ plugin.OnTokensConsumed     = (*MetricsExtension)(nil)
	_ plugin.OnConsumeRejected    = (*MetricsExtension)(nil)
	_ plugin.OnWalletReset        = (*MetricsExtension)(nil)
	_ plugin.OnLedgerInconsistent = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records wallet ledger metrics.
// Register it as a wallet plugin to automatically track consumption.
type MetricsExtension struct {
	factory MetricFactory

	// Purchase metrics
	BundleAdded     Counter
	TokensPurchased Counter

	// Consumption metrics
	TokensConsumed     Counter
	ConsumeRejected    Counter
	ConsumeAllocations Histogram

	// Ledger metrics
	WalletReset        Counter
	LedgerInconsistent Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		BundleAdded:     factory.Counter("wallet.bundle.added"),
		TokensPurchased: factory.Counter("wallet.tokens.purchased"),

		TokensConsumed:     factory.Counter("wallet.tokens.consumed"),
		ConsumeRejected:    factory.Counter("wallet.consume.rejected"),
		ConsumeAllocations: factory.Histogram("wallet.consume.allocations"),

		WalletReset:        factory.Counter("wallet.reset"),
		LedgerInconsistent: factory.Counter("wallet.ledger.inconsistent"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// OnBundleAdded implements plugin.OnBundleAdded.
func (m *MetricsExtension) OnBundleAdded(_ context.Context, batch *token.Batch) error {
	m.BundleAdded.Inc()
	m.TokensPurchased.Add(float64(batch.Count))
	return nil
}

// OnTokensConsumed implements plugin.OnTokensConsumed.
func (m *MetricsExtension) OnTokensConsumed(_ context.Context, _ string, count int64, records []*token.Consumption) error {
	m.TokensConsumed.Add(float64(count))
	m.ConsumeAllocations.Observe(float64(len(records)))
	return nil
}

// OnConsumeRejected implements plugin.OnConsumeRejected.
func (m *MetricsExtension) OnConsumeRejected(_ context.Context, _ string, _, _ int64) error {
	m.ConsumeRejected.Inc()
	return nil
}

// OnWalletReset implements plugin.OnWalletReset.
func (m *MetricsExtension) OnWalletReset(_ context.Context, _ string) error {
	m.WalletReset.Inc()
	return nil
}

// OnLedgerInconsistent implements plugin.OnLedgerInconsistent.
func (m *MetricsExtension) OnLedgerInconsistent(_ context.Context, _ string, _ error) error {
	m.LedgerInconsistent.Inc()
	return nil
}
