// Package extension provides the Forge extension adapter for wallets.
//
// It implements the forge.Extension interface to integrate a wallet
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.wallet" or "wallet" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/store"
	"github.com/xraph/wallet/store/memory"
	mongostore "github.com/xraph/wallet/store/mongo"
	"github.com/xraph/wallet/store/postgres"
	"github.com/xraph/wallet/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "wallet"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Expiring prepaid credit ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts a wallet as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *wallet.Wallet
	store      store.Store
	groveDB    *grove.DB
	walletOpts []wallet.Option
}

// New creates a new wallet Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying wallet.
// This is nil until Register is called.
func (e *Extension) Engine() *wallet.Wallet { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the wallet, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.resolveStore(); err != nil {
		return err
	}

	opts, err := e.buildWalletOpts()
	if err != nil {
		return err
	}

	e.engine = wallet.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*wallet.Wallet, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("wallet: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("wallet: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveStore picks the programmatic store, then a grove-backed store,
// then an in-memory store.
func (e *Extension) resolveStore() error {
	if e.store != nil {
		return nil
	}
	if e.groveDB == nil {
		e.store = memory.New()
		return nil
	}

	s, err := NewGroveStore(e.config.Driver, e.groveDB)
	if err != nil {
		return err
	}
	e.store = s
	return nil
}

// NewGroveStore returns the store backend for driver over db.
func NewGroveStore(driver string, db *grove.DB) (store.Store, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.New(db), nil
	case DriverPostgres, "":
		return postgres.New(db), nil
	case DriverMongo:
		return mongostore.New(db), nil
	default:
		return nil, fmt.Errorf("wallet: unknown store driver %q", driver)
	}
}

// buildWalletOpts constructs wallet.Option values from the resolved config.
func (e *Extension) buildWalletOpts() ([]wallet.Option, error) {
	opts := make([]wallet.Option, 0, len(e.walletOpts)+3)

	opts = append(opts, wallet.WithWalletID(e.config.WalletID))

	if e.config.CatalogPath != "" {
		catalog, err := bundle.LoadCatalogFile(e.config.CatalogPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wallet.WithCatalog(catalog))
	}

	// Append any pass-through wallet options.
	opts = append(opts, e.walletOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("wallet: configuration is required but not found in config files; " +
				"ensure 'extensions.wallet' or 'wallet' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("wallet: configuration loaded",
		forge.F("wallet_id", e.config.WalletID),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("catalog_path", e.config.CatalogPath),
		forge.F("driver", e.config.Driver),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.wallet" first (namespaced pattern).
	if cm.IsSet("extensions.wallet") {
		if err := cm.Bind("extensions.wallet", &cfg); err == nil {
			e.Logger().Debug("wallet: loaded config from file",
				forge.F("key", "extensions.wallet"),
			)
			return cfg, true
		}
		e.Logger().Warn("wallet: failed to bind extensions.wallet config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "wallet" key.
	if cm.IsSet("wallet") {
		if err := cm.Bind("wallet", &cfg); err == nil {
			e.Logger().Debug("wallet: loaded config from file",
				forge.F("key", "wallet"),
			)
			return cfg, true
		}
		e.Logger().Warn("wallet: failed to bind wallet config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.WalletID == "" {
		cfg.WalletID = defaults.WalletID
	}
	if cfg.Driver == "" {
		cfg.Driver = defaults.Driver
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.WalletID == "" && programmaticConfig.WalletID != "" {
		yamlConfig.WalletID = programmaticConfig.WalletID
	}
	if yamlConfig.CatalogPath == "" && programmaticConfig.CatalogPath != "" {
		yamlConfig.CatalogPath = programmaticConfig.CatalogPath
	}
	if yamlConfig.Driver == "" && programmaticConfig.Driver != "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
