package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/id"
	"github.com/xraph/wallet/plugin"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/token"
	"github.com/xraph/wallet/types"
)

// DefaultWalletID is the wallet namespace used when none is configured.
const DefaultWalletID = "wallet"

// Wallet is the token consumption engine for a single wallet.
type Wallet struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	clock    clockwork.Clock
	catalog  *bundle.Catalog
	walletID string

	// mu serializes read-modify-write cycles against the store.
	mu sync.RWMutex
}

// New creates a new Wallet backed by s.
func New(s store.Store, opts ...Option) *Wallet {
	w := &Wallet{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		clock:    clockwork.NewRealClock(),
		catalog:  bundle.Standard(),
		walletID: DefaultWalletID,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Option configures a Wallet instance.
type Option func(*Wallet)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wallet) {
		w.logger = logger
		w.plugins.WithLogger(logger)
	}
}

// WithClock sets the time source. Tests pass a clockwork.FakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(w *Wallet) {
		w.clock = clock
	}
}

// WithWalletID sets the store namespace holding this wallet's ledgers.
func WithWalletID(walletID string) Option {
	return func(w *Wallet) {
		if walletID != "" {
			w.walletID = walletID
		}
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(w *Wallet) {
		_ = w.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCatalog sets the catalog used by AddBundle.
func WithCatalog(c *bundle.Catalog) Option {
	return func(w *Wallet) {
		if c != nil {
			w.catalog = c
		}
	}
}

// WalletID returns the store namespace of this wallet.
func (w *Wallet) WalletID() string { return w.walletID }

// Catalog returns the bundle catalog.
func (w *Wallet) Catalog() *bundle.Catalog { return w.catalog }

// Store returns the underlying store.
func (w *Wallet) Store() store.Store { return w.store }

// Plugins returns the plugin registry.
func (w *Wallet) Plugins() *plugin.Registry { return w.plugins }

// Start migrates the store and initializes plugins.
func (w *Wallet) Start(ctx context.Context) error {
	if err := w.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	w.plugins.EmitInit(ctx, w)

	w.logger.Info("wallet started",
		"wallet_id", w.walletID,
		"plugins", w.plugins.Count(),
		"bundles", w.catalog.Len(),
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (w *Wallet) Stop() error {
	ctx := context.Background()
	w.plugins.EmitShutdown(ctx)

	return w.store.Close()
}

// ──────────────────────────────────────────────────
// Purchases
// ──────────────────────────────────────────────────

// AddOption configures a single AddToken call.
type AddOption func(*addConfig)

type addConfig struct {
	expiresAt time.Time
	override  bool
}

// ExpiringAt overrides the expiration the bundle would compute.
func ExpiringAt(t time.Time) AddOption {
	return func(c *addConfig) {
		c.expiresAt = t
		c.override = true
	}
}

// AddToken records the purchase of b. The batch expires at b.ExpiresAt(now)
// unless ExpiringAt is given.
func (w *Wallet) AddToken(ctx context.Context, b bundle.Bundle, opts ...AddOption) (*token.Batch, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bundle", ErrInvalidBundle)
	}
	if b.Key() == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, ValidationError{Field: "key", Message: "must not be empty"})
	}
	if b.TokenCount() <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, ValidationError{
			Field:   "token_count",
			Message: fmt.Sprintf("must be positive, got %d", b.TokenCount()),
		})
	}

	var cfg addConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	now := w.clock.Now()
	expiresAt := b.ExpiresAt(now)
	if cfg.override {
		expiresAt = cfg.expiresAt
	}
	if expiresAt.IsZero() {
		return nil, ErrInvalidExpiration
	}

	batch := &token.Batch{
		Entity:    types.NewEntity(now),
		ID:        id.NewBatchID(),
		WalletID:  w.walletID,
		Count:     b.TokenCount(),
		ExpiresAt: types.Normalize(expiresAt),
		Bundle:    b.Key(),
	}

	if err := w.appendBatch(ctx, batch); err != nil {
		return nil, err
	}

	w.logger.Debug("bundle added",
		"wallet_id", w.walletID,
		"bundle", batch.Bundle,
		"count", batch.Count,
		"expires_at", batch.ExpiresAt,
	)
	w.plugins.EmitBundleAdded(ctx, batch)

	return batch, nil
}

// AddBundle looks key up in the catalog and adds it.
func (w *Wallet) AddBundle(ctx context.Context, key bundle.Key, opts ...AddOption) (*token.Batch, error) {
	def, err := w.catalog.Get(key)
	if err != nil {
		if errors.Is(err, bundle.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, key)
		}
		return nil, err
	}
	return w.AddToken(ctx, def, opts...)
}

func (w *Wallet) appendBatch(ctx context.Context, batch *token.Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	unlock, err := w.lockStore(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	purchased, err := w.store.ListPurchased(ctx, w.walletID)
	if err != nil {
		return fmt.Errorf("wallet: list purchased: %w", err)
	}

	if err := w.store.ReplacePurchased(ctx, w.walletID, append(purchased, batch)); err != nil {
		return fmt.Errorf("wallet: replace purchased: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Consumption
// ──────────────────────────────────────────────────

// CanConsume reports whether count tokens could be consumed now. It never
// mutates the ledgers. A count of zero or less is always satisfiable; see
// Consume for how such counts are rejected there.
func (w *Wallet) CanConsume(ctx context.Context, count int64) (bool, error) {
	if count <= 0 {
		return true, nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	now := w.clock.Now()
	purchased, consumed, err := w.load(ctx)
	if err != nil {
		return false, err
	}
	return token.CanConsume(purchased, consumed, count, now), nil
}

// ConsumeOne consumes a single token.
func (w *Wallet) ConsumeOne(ctx context.Context) (bool, error) {
	return w.Consume(ctx, 1)
}

// Consume draws count tokens from the soonest-expiring credit. It returns
// false without touching the ledgers when count cannot be covered in full.
//
// count must be positive: Consume(ctx, 0) fails with ErrInvalidCount, while
// CanConsume(ctx, 0) reports true.
func (w *Wallet) Consume(ctx context.Context, count int64) (bool, error) {
	if count <= 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	out, err := w.consume(ctx, count)
	if err != nil {
		return false, err
	}

	if out.inconsistent != nil {
		w.plugins.EmitLedgerInconsistent(ctx, w.walletID, out.inconsistent)
	}
	if out.records == nil {
		w.plugins.EmitConsumeRejected(ctx, w.walletID, count, out.available)
		return false, nil
	}

	w.plugins.EmitTokensConsumed(ctx, w.walletID, count, out.records)
	return true, nil
}

type consumeResult struct {
	records      []*token.Consumption
	available    int64
	inconsistent error
}

func (w *Wallet) consume(ctx context.Context, count int64) (consumeResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	unlock, err := w.lockStore(ctx)
	if err != nil {
		return consumeResult{}, err
	}
	defer unlock()

	var out consumeResult

	now := w.clock.Now()
	purchased, consumed, err := w.load(ctx)
	if err != nil {
		return out, err
	}

	if verr := token.Validate(purchased, consumed); verr != nil {
		w.logger.Warn("wallet ledger inconsistent",
			"wallet_id", w.walletID,
			"error", verr,
		)
		out.inconsistent = verr
	}

	out.available = token.Available(purchased, consumed, now)
	allocs, ok := token.Allocate(purchased, consumed, count, now)
	if !ok {
		if out.available >= count {
			w.logger.Warn("allocation fell short of available credit",
				"wallet_id", w.walletID,
				"count", count,
				"available", out.available,
			)
		} else {
			w.logger.Debug("consume rejected",
				"wallet_id", w.walletID,
				"count", count,
				"available", out.available,
			)
		}
		return out, nil
	}

	records := make([]*token.Consumption, 0, len(allocs))
	for _, a := range allocs {
		records = append(records, &token.Consumption{
			Entity:    types.NewEntity(now),
			ID:        id.NewConsumptionID(),
			WalletID:  w.walletID,
			Count:     a.Count,
			ExpiresAt: a.Cohort.ExpiresAt,
			Bundle:    a.Cohort.Bundle,
		})
	}

	committed := make([]*token.Consumption, 0, len(consumed)+len(records))
	committed = append(committed, consumed...)
	committed = append(committed, records...)
	if err := w.store.ReplaceConsumed(ctx, w.walletID, committed); err != nil {
		return consumeResult{}, fmt.Errorf("wallet: replace consumed: %w", err)
	}

	w.logger.Debug("tokens consumed",
		"wallet_id", w.walletID,
		"count", count,
		"records", len(records),
	)

	out.records = records
	return out, nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Balance returns the unconsumed non-expired credit and its closest
// expiration.
func (w *Wallet) Balance(ctx context.Context) (token.Balance, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	now := w.clock.Now()
	purchased, consumed, err := w.load(ctx)
	if err != nil {
		return token.Balance{}, err
	}
	return token.ComputeBalance(purchased, consumed, now), nil
}

// LatestExpiration returns the furthest expiration among non-expired
// purchases. ok is false when there are none.
func (w *Wallet) LatestExpiration(ctx context.Context) (t time.Time, ok bool, err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	now := w.clock.Now()
	purchased, err := w.store.ListPurchased(ctx, w.walletID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("wallet: list purchased: %w", err)
	}
	t, ok = token.LatestExpiration(purchased, now)
	return t, ok, nil
}

// Purchased returns the purchase ledger in insertion order.
func (w *Wallet) Purchased(ctx context.Context) ([]*token.Batch, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	purchased, err := w.store.ListPurchased(ctx, w.walletID)
	if err != nil {
		return nil, fmt.Errorf("wallet: list purchased: %w", err)
	}
	return purchased, nil
}

// Consumed returns the consumption ledger in insertion order.
func (w *Wallet) Consumed(ctx context.Context) ([]*token.Consumption, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	consumed, err := w.store.ListConsumed(ctx, w.walletID)
	if err != nil {
		return nil, fmt.Errorf("wallet: list consumed: %w", err)
	}
	return consumed, nil
}

// Reset erases both ledgers.
func (w *Wallet) Reset(ctx context.Context) error {
	if err := w.reset(ctx); err != nil {
		return err
	}

	w.logger.Info("wallet reset", "wallet_id", w.walletID)
	w.plugins.EmitWalletReset(ctx, w.walletID)
	return nil
}

// lockStore takes the store's cross-process lock for this wallet when the
// store provides one.
func (w *Wallet) lockStore(ctx context.Context) (func(), error) {
	l, ok := w.store.(store.Locker)
	if !ok {
		return func() {}, nil
	}
	unlock, err := l.Lock(ctx, w.walletID)
	if err != nil {
		return nil, fmt.Errorf("wallet: lock wallet %q: %w", w.walletID, err)
	}
	return unlock, nil
}

func (w *Wallet) reset(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	unlock, err := w.lockStore(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	// Purchases go first so a partial reset never leaves extra credit.
	if err := w.store.ReplacePurchased(ctx, w.walletID, nil); err != nil {
		return fmt.Errorf("wallet: reset purchased: %w", err)
	}
	if err := w.store.ReplaceConsumed(ctx, w.walletID, nil); err != nil {
		return fmt.Errorf("wallet: reset consumed: %w", err)
	}
	return nil
}

func (w *Wallet) load(ctx context.Context) ([]*token.Batch, []*token.Consumption, error) {
	purchased, err := w.store.ListPurchased(ctx, w.walletID)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet: list purchased: %w", err)
	}
	consumed, err := w.store.ListConsumed(ctx, w.walletID)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet: list consumed: %w", err)
	}
	return purchased, consumed, nil
}
