package wallet

import (
	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/token"
	"github.com/xraph/wallet/types"
)

// Re-export common types for convenience so users don't have to import the
// model packages.

// Entity is re-exported from types package.
type Entity = types.Entity

// Bundle is re-exported from bundle package.
type Bundle = bundle.Bundle

// Ledger records and balances.
type (
	Batch       = token.Batch
	Consumption = token.Consumption
	Balance     = token.Balance
)

// Standard bundle definitions.
var (
	Day   = bundle.Day
	Week  = bundle.Week
	Month = bundle.Month
	Year  = bundle.Year
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
