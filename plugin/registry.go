package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/wallet/token"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onBundleAdded        []OnBundleAdded
	onTokensConsumed     []OnTokensConsumed
	onConsumeRejected    []OnConsumeRejected
	onWalletReset        []OnWalletReset
	onLedgerInconsistent []OnLedgerInconsistent
}

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnBundleAdded); ok {
		r.onBundleAdded = append(r.onBundleAdded, v)
	}
	if v, ok := p.(OnTokensConsumed); ok {
		r.onTokensConsumed = append(r.onTokensConsumed, v)
	}
	if v, ok := p.(OnConsumeRejected); ok {
		r.onConsumeRejected = append(r.onConsumeRejected, v)
	}
	if v, ok := p.(OnWalletReset); ok {
		r.onWalletReset = append(r.onWalletReset, v)
	}
	if v, ok := p.(OnLedgerInconsistent); ok {
		r.onLedgerInconsistent = append(r.onLedgerInconsistent, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnBundleAdded", reflect.TypeOf((*OnBundleAdded)(nil)).Elem()},
	{"OnTokensConsumed", reflect.TypeOf((*OnTokensConsumed)(nil)).Elem()},
	{"OnConsumeRejected", reflect.TypeOf((*OnConsumeRejected)(nil)).Elem()},
	{"OnWalletReset", reflect.TypeOf((*OnWalletReset)(nil)).Elem()},
	{"OnLedgerInconsistent", reflect.TypeOf((*OnLedgerInconsistent)(nil)).Elem()},
}

// implementedInterfaces returns the hook interfaces implemented by p.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			interfaces = append(interfaces, h.name)
		}
	}
	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, w interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, w)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBundleAdded emits a bundle added event.
func (r *Registry) EmitBundleAdded(ctx context.Context, batch *token.Batch) {
	r.mu.RLock()
	plugins := r.onBundleAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBundleAdded(ctx, batch)
		}); err != nil {
			r.logger.Warn("plugin OnBundleAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTokensConsumed emits a tokens consumed event.
func (r *Registry) EmitTokensConsumed(ctx context.Context, walletID string, count int64, records []*token.Consumption) {
	r.mu.RLock()
	plugins := r.onTokensConsumed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTokensConsumed(ctx, walletID, count, records)
		}); err != nil {
			r.logger.Warn("plugin OnTokensConsumed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitConsumeRejected emits a consume rejected event.
func (r *Registry) EmitConsumeRejected(ctx context.Context, walletID string, requested, available int64) {
	r.mu.RLock()
	plugins := r.onConsumeRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnConsumeRejected(ctx, walletID, requested, available)
		}); err != nil {
			r.logger.Warn("plugin OnConsumeRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWalletReset emits a wallet reset event.
func (r *Registry) EmitWalletReset(ctx context.Context, walletID string) {
	r.mu.RLock()
	plugins := r.onWalletReset
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWalletReset(ctx, walletID)
		}); err != nil {
			r.logger.Warn("plugin OnWalletReset failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLedgerInconsistent emits a ledger inconsistency event.
func (r *Registry) EmitLedgerInconsistent(ctx context.Context, walletID string, cause error) {
	r.mu.RLock()
	plugins := r.onLedgerInconsistent
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLedgerInconsistent(ctx, walletID, cause)
		}); err != nil {
			r.logger.Warn("plugin OnLedgerInconsistent failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
