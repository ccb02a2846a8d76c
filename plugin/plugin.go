// Package plugin provides an extensible plugin system for wallets.
// Plugins can hook into ledger events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/wallet/token"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the wallet starts. w is the *wallet.Wallet.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, w interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnBundleAdded is called after a purchase batch is committed.
type OnBundleAdded interface {
	Plugin
	OnBundleAdded(ctx context.Context, batch *token.Batch) error
}

// OnTokensConsumed is called after consumption records are committed.
type OnTokensConsumed interface {
	Plugin
	OnTokensConsumed(ctx context.Context, walletID string, count int64, records []*token.Consumption) error
}

// OnConsumeRejected is called when a consume request cannot be covered.
type OnConsumeRejected interface {
	Plugin
	OnConsumeRejected(ctx context.Context, walletID string, requested, available int64) error
}

// OnWalletReset is called after both ledgers of a wallet are cleared.
type OnWalletReset interface {
	Plugin
	OnWalletReset(ctx context.Context, walletID string) error
}

// OnLedgerInconsistent is called when stored ledgers break the consumption
// invariants, for example a cohort consumed beyond its purchases.
type OnLedgerInconsistent interface {
	Plugin
	OnLedgerInconsistent(ctx context.Context, walletID string, err error) error
}
