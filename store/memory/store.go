package memory

import (
	"context"
	"sync"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/token"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	// Ledgers keyed by wallet ID
	purchased map[string][]token.Batch
	consumed  map[string][]token.Consumption
}

func New() *Store {
	return &Store{
		purchased: make(map[string][]token.Batch),
		consumed:  make(map[string][]token.Consumption),
	}
}

// Purchase ledger
func (s *Store) ListPurchased(_ context.Context, walletID string) ([]*token.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wallet.ErrStoreClosed
	}

	stored := s.purchased[walletID]
	result := make([]*token.Batch, len(stored))
	for i := range stored {
		b := stored[i]
		result[i] = &b
	}
	return result, nil
}

func (s *Store) ReplacePurchased(_ context.Context, walletID string, batches []*token.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wallet.ErrStoreClosed
	}

	if len(batches) == 0 {
		delete(s.purchased, walletID)
		return nil
	}
	stored := make([]token.Batch, len(batches))
	for i, b := range batches {
		stored[i] = *b
	}
	s.purchased[walletID] = stored
	return nil
}

// Consumption ledger
func (s *Store) ListConsumed(_ context.Context, walletID string) ([]*token.Consumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wallet.ErrStoreClosed
	}

	stored := s.consumed[walletID]
	result := make([]*token.Consumption, len(stored))
	for i := range stored {
		c := stored[i]
		result[i] = &c
	}
	return result, nil
}

func (s *Store) ReplaceConsumed(_ context.Context, walletID string, records []*token.Consumption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wallet.ErrStoreClosed
	}

	if len(records) == 0 {
		delete(s.consumed, walletID)
		return nil
	}
	stored := make([]token.Consumption, len(records))
	for i, c := range records {
		stored[i] = *c
	}
	s.consumed[walletID] = stored
	return nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wallet.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
