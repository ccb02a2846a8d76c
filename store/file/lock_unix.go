//go:build unix

package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/xraph/wallet"
)

// Lock takes an exclusive flock on the wallet's lock file. The lock is held
// per open file, so separate processes and separate Store values on the same
// directory exclude each other.
func (s *Store) Lock(ctx context.Context, walletID string) (func(), error) {
	path, err := s.ledgerPath(walletID, lockFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("wallet/file: create directory for wallet %q: %w", walletID, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("wallet/file: open lock for wallet %q: %w", walletID, err)
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			return nil, fmt.Errorf("wallet/file: lock wallet %q: %w", walletID, err)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("wallet/file: lock wallet %q: %w: %w", walletID, wallet.ErrStoreNotReady, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
