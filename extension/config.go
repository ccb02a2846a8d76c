package extension

// Driver names accepted by Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds the wallet extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.wallet" or "wallet" keys).
type Config struct {
	// WalletID is the store namespace of the registered wallet (default: "wallet").
	WalletID string `json:"wallet_id" mapstructure:"wallet_id" yaml:"wallet_id"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// CatalogPath points to a YAML bundle catalog. The standard day, week,
	// month and year catalog is used when empty.
	CatalogPath string `json:"catalog_path" mapstructure:"catalog_path" yaml:"catalog_path"`

	// Driver selects the grove store backend built from the database passed
	// with WithGroveDB: "sqlite", "postgres" or "mongo" (default: "postgres").
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WalletID: "wallet",
		Driver:   DriverPostgres,
	}
}
