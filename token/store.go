package token

import "context"

// Store persists the two ledgers of a wallet. Both ledgers are read and
// replaced wholesale; implementations must return records in insertion order.
type Store interface {
	ListPurchased(ctx context.Context, walletID string) ([]*Batch, error)
	ListConsumed(ctx context.Context, walletID string) ([]*Consumption, error)
	ReplacePurchased(ctx context.Context, walletID string, batches []*Batch) error
	ReplaceConsumed(ctx context.Context, walletID string, records []*Consumption) error
}
