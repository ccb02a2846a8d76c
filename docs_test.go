package wallet_test

import (
	"context"
	"log"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/wallet"
	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/store/memory"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from package docs
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		w := wallet.New(store,
			wallet.WithLogger(slog.Default()),
			wallet.WithWalletID("user_123"),
		)

		ctx := context.Background()
		if err := w.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer w.Stop()

		// Buy a week pass
		if _, err := w.AddToken(ctx, wallet.Week); err != nil {
			t.Fatal(err)
		}

		ok, err := w.Consume(ctx, 30)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected consume to succeed")
		}

		bal, err := w.Balance(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if bal.Count != 70 {
			t.Fatalf("expected 70 tokens, got %d", bal.Count)
		}
		log.Printf("Balance: %d tokens\n", bal.Count)
	})

	// Test fake clock example
	t.Run("ClockExample", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		w := wallet.New(memory.New(), wallet.WithClock(clock))
		ctx := context.Background()

		if _, err := w.AddToken(ctx, wallet.Week); err != nil {
			t.Fatal(err)
		}
		clock.Advance(8 * 24 * time.Hour) // the week pass has now expired

		ok, err := w.CanConsume(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expired credit must not be consumable")
		}
	})

	// Test custom catalog example
	t.Run("CatalogExample", func(t *testing.T) {
		catalog, err := bundle.LoadCatalog(strings.NewReader(`
bundles:
  - key: trial
    name: Trial
    tokens: 5
    validity: {days: 3}
`))
		if err != nil {
			t.Fatal(err)
		}

		w := wallet.New(memory.New(), wallet.WithCatalog(catalog))
		if _, err := w.AddBundle(context.Background(), "trial"); err != nil {
			t.Fatal(err)
		}
	})
}
