// Command walletctl manages an expiring token wallet stored on disk.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/store/file"
)

// Version information (set at build time with -ldflags)
var Version = "dev"

// displayLayout is how instants are shown to users.
const displayLayout = "Jan 2, 2006 3:04 PM"

var (
	dataDir     string
	walletID    string
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "walletctl",
	Short:         "walletctl - expiring token wallet",
	Long:          `walletctl buys token bundles, consumes tokens soonest-expiring first and reports the balance of a wallet kept in a data directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default $WALLETCTL_DATA_DIR or ~/.walletctl)")
	rootCmd.PersistentFlags().StringVar(&walletID, "wallet", wallet.DefaultWalletID, "wallet ID")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "bundle catalog YAML file (standard catalog when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log wallet operations")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(consumeCmd)
	rootCmd.AddCommand(canConsumeCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(bundlesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openWallet builds a started wallet over the file store selected by the
// global flags.
func openWallet(ctx context.Context) (*wallet.Wallet, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	w := wallet.New(file.New(dir),
		wallet.WithWalletID(strings.TrimSpace(walletID)),
		wallet.WithCatalog(catalog),
		wallet.WithLogger(logger),
	)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func loadCatalog() (*bundle.Catalog, error) {
	if strings.TrimSpace(catalogPath) == "" {
		return bundle.Standard(), nil
	}
	return bundle.LoadCatalogFile(catalogPath)
}

func resolveDataDir() (string, error) {
	if dir := strings.TrimSpace(dataDir); dir != "" {
		return dir, nil
	}
	if dir := strings.TrimSpace(os.Getenv("WALLETCTL_DATA_DIR")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	return filepath.Join(home, ".walletctl"), nil
}
