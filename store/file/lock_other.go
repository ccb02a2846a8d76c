//go:build !unix

package file

import (
	"context"
	"sync"
)

var walletLocks sync.Map

// Lock serializes writers within this process only. Other platforms have no
// flock, so concurrent processes on one data directory are not excluded.
func (s *Store) Lock(ctx context.Context, walletID string) (func(), error) {
	path, err := s.ledgerPath(walletID, lockFile)
	if err != nil {
		return nil, err
	}
	v, _ := walletLocks.LoadOrStore(path, make(chan struct{}, 1))
	ch := v.(chan struct{})

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
