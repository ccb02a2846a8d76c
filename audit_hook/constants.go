package audithook

// Action constants for audit events.
const (
	// Purchase actions
	ActionBundleAdded = "bundle.added"

	// Consumption actions
	ActionTokensConsumed  = "tokens.consumed"
	ActionConsumeRejected = "consume.rejected"

	// Ledger actions
	ActionWalletReset        = "wallet.reset"
	ActionLedgerInconsistent = "ledger.inconsistent"
)

// Resource constants for audit events.
const (
	ResourceBatch       = "batch"
	ResourceConsumption = "consumption"
	ResourceWallet      = "wallet"
)

// Category constants for audit events.
const (
	CategoryPurchase    = "purchase"
	CategoryConsumption = "consumption"
	CategoryLedger      = "ledger"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
