// Package store defines the aggregate persistence interface for wallets.
package store

import (
	"context"

	"github.com/xraph/wallet/token"
)

// Store is the unified storage interface for wallet ledgers.
type Store interface {
	token.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Locker is implemented by stores shared between processes. The wallet takes
// the lock around every read-modify-write cycle on a wallet's ledgers.
type Locker interface {
	// Lock blocks until the wallet is held exclusively or ctx is done. The
	// returned func releases it.
	Lock(ctx context.Context, walletID string) (unlock func(), err error)
}
