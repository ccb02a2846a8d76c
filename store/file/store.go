// Package file persists wallet ledgers as JSON documents under a data
// directory, one directory per wallet holding purchased.json and
// consumed.json.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/codec"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/token"
)

const (
	purchasedFile = "purchased.json"
	consumedFile  = "consumed.json"
	lockFile      = ".lock"

	lockPollInterval = 10 * time.Millisecond
)

var (
	_ store.Store  = (*Store)(nil)
	_ store.Locker = (*Store)(nil)
)

// Store is a file-backed ledger store. Writes go to a temp file that is
// renamed over the target, so a reader never sees a partial document.
// Lock excludes other writers of the same wallet, including other processes.
type Store struct {
	dir    string
	mu     sync.RWMutex
	closed bool
}

// New creates a store rooted at dir. The directory is created by Migrate.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) ListPurchased(_ context.Context, walletID string) ([]*token.Batch, error) {
	return readLedger[*token.Batch](s, walletID, purchasedFile)
}

func (s *Store) ReplacePurchased(_ context.Context, walletID string, batches []*token.Batch) error {
	return writeLedger(s, walletID, purchasedFile, batches)
}

func (s *Store) ListConsumed(_ context.Context, walletID string) ([]*token.Consumption, error) {
	return readLedger[*token.Consumption](s, walletID, consumedFile)
}

func (s *Store) ReplaceConsumed(_ context.Context, walletID string, records []*token.Consumption) error {
	return writeLedger(s, walletID, consumedFile, records)
}

// Migrate creates the data directory.
func (s *Store) Migrate(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("wallet/file: create data directory: %w", err)
	}
	return nil
}

// Ping checks that the data directory exists.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wallet.ErrStoreClosed
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("wallet/file: ping: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("wallet/file: ping: %s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Missing or empty files are an empty ledger.
func readLedger[T any](s *Store, walletID, name string) ([]T, error) {
	path, err := s.ledgerPath(walletID, name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wallet.ErrStoreClosed
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("wallet/file: read %s for wallet %q: %w", name, walletID, err)
	}

	records, err := codec.Decode[[]T](string(data))
	if err != nil {
		return nil, fmt.Errorf("wallet/file: read %s for wallet %q: %w", name, walletID, err)
	}
	return records, nil
}

func writeLedger[T any](s *Store, walletID, name string, records []T) error {
	path, err := s.ledgerPath(walletID, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wallet.ErrStoreClosed
	}

	if len(records) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("wallet/file: clear %s for wallet %q: %w", name, walletID, err)
		}
		return nil
	}

	data, err := codec.EncodeIndent(records)
	if err != nil {
		return fmt.Errorf("wallet/file: encode %s for wallet %q: %w", name, walletID, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("wallet/file: create directory for wallet %q: %w", walletID, err)
	}

	if err := atomicWriteFile(path, []byte(data)); err != nil {
		return fmt.Errorf("wallet/file: write %s for wallet %q: %w", name, walletID, err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (s *Store) ledgerPath(walletID, name string) (string, error) {
	walletID = strings.TrimSpace(walletID)
	if !validWalletID(walletID) {
		return "", fmt.Errorf("wallet/file: invalid wallet ID %q: %w", walletID, wallet.ErrInvalidInput)
	}
	return filepath.Join(s.dir, walletID, name), nil
}

func validWalletID(walletID string) bool {
	if walletID == "" || walletID == "." || walletID == ".." {
		return false
	}
	return !strings.ContainsAny(walletID, `/\`) && filepath.Base(walletID) == walletID
}
