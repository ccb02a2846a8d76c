package extension

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWithDefaults(t *testing.T) {
	cfg := mergeWithDefaults(Config{})
	assert.Equal(t, "wallet", cfg.WalletID)
	assert.Equal(t, DriverPostgres, cfg.Driver)

	cfg = mergeWithDefaults(Config{WalletID: "acct", Driver: DriverSQLite})
	assert.Equal(t, "acct", cfg.WalletID)
	assert.Equal(t, DriverSQLite, cfg.Driver)
}

func TestMergeConfigurations(t *testing.T) {
	tests := []struct {
		name         string
		yaml         Config
		programmatic Config
		want         Config
	}{
		{
			name:         "yaml wins for strings",
			yaml:         Config{WalletID: "from-yaml", Driver: DriverMongo},
			programmatic: Config{WalletID: "from-code", Driver: DriverSQLite},
			want:         Config{WalletID: "from-yaml", Driver: DriverMongo},
		},
		{
			name:         "programmatic fills gaps",
			yaml:         Config{},
			programmatic: Config{WalletID: "from-code", CatalogPath: "bundles.yaml"},
			want:         Config{WalletID: "from-code", CatalogPath: "bundles.yaml", Driver: DriverPostgres},
		},
		{
			name:         "programmatic bool flag overrides",
			yaml:         Config{WalletID: "w"},
			programmatic: Config{DisableMigrate: true},
			want:         Config{WalletID: "w", DisableMigrate: true, Driver: DriverPostgres},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeConfigurations(tt.yaml, tt.programmatic))
		})
	}
}

func TestNewGroveStoreUnknownDriver(t *testing.T) {
	_, err := NewGroveStore("cassandra", nil)
	assert.Error(t, err)
}

func TestBuildWalletOptsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bundles:\n  - {key: trial, tokens: 5, validity: {days: 3}}\n"), 0o600))

	e := &Extension{config: Config{WalletID: "w", CatalogPath: path}}
	opts, err := e.buildWalletOpts()
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	e = &Extension{config: Config{WalletID: "w", CatalogPath: filepath.Join(t.TempDir(), "missing.yaml")}}
	_, err = e.buildWalletOpts()
	assert.Error(t, err)
}

func TestResolveStoreDefaultsToMemory(t *testing.T) {
	e := &Extension{config: DefaultConfig()}
	require.NoError(t, e.resolveStore())
	assert.NotNil(t, e.store)
}
