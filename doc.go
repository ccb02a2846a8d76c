// Package wallet provides an expiring prepaid credit ledger for Go applications.
//
// Wallet is designed as a library, not a service. Credits ("tokens") are
// acquired in bundles that expire, and consumed incrementally. It provides:
//
//   - All-or-nothing consumption that never draws more than was purchased
//   - Soonest-expiring credit is always consumed first
//   - Expired credit is never usable
//   - Pluggable stores (memory, file, SQLite, PostgreSQL, MongoDB)
//   - Hooks for metrics and audit trails
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/wallet"
//	    "github.com/xraph/wallet/store/memory"
//	)
//
//	w := wallet.New(memory.New())
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
//	// Buy a week pass: 100 tokens valid for 7 days
//	if _, err := w.AddToken(ctx, wallet.Week); err != nil {
//	    log.Fatal(err)
//	}
//
//	ok, err := w.Consume(ctx, 30)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !ok {
//	    // not enough credit, nothing was consumed
//	}
//
//	bal, _ := w.Balance(ctx) // bal.Count == 70
//
// # Core Concepts
//
// A purchase appends a batch to the purchase ledger. Batches of the same
// bundle expiring at the same instant form a cohort and share one pool of
// credit. Consuming appends records to the consumption ledger, one per
// cohort drawn from, soonest expiration first.
//
// Bundles are anything implementing bundle.Bundle. The bundle package ships
// a day, week, month and year catalog and a YAML loader for custom ones.
//
// Time comes from an injected clockwork.Clock, sampled once per operation:
//
//	clock := clockwork.NewFakeClock()
//	w := wallet.New(store, wallet.WithClock(clock))
//	clock.Advance(8 * 24 * time.Hour) // the week pass has now expired
//
// # TypeID
//
// All ledger records use TypeID for globally unique, type-safe identifiers:
//
//	tbat_01h2xcejqtf2nbrexx3vqjhp41  // Purchase batch
//	tcon_01h455vb4pex5vsknk084sn02q  // Consumption record
//
// TypeIDs are K-sortable, providing natural time-ordering of records.
package wallet
