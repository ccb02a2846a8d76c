package wallet

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput = errors.New("wallet: invalid input")

	// Ledger errors
	ErrInvalidCount      = errors.New("wallet: token count must be positive")
	ErrInvalidBundle     = errors.New("wallet: invalid bundle")
	ErrInvalidExpiration = errors.New("wallet: expiration must be set")
	ErrBundleNotFound    = errors.New("wallet: bundle not found")

	// Store errors
	ErrStoreNotReady   = errors.New("wallet: store not ready")
	ErrStoreClosed     = errors.New("wallet: store is closed")
	ErrMigrationFailed = errors.New("wallet: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("wallet: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBundleNotFound)
}

// IsMisuse returns true if the error reports invalid caller input rather
// than a storage failure.
func IsMisuse(err error) bool {
	var ve ValidationError
	return errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrInvalidBundle) ||
		errors.Is(err, ErrInvalidExpiration) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.As(err, &ve)
}

// IsRetryable returns true if the error is temporary and the operation can be retried,
// such as a wallet lock that another process still holds.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady)
}
