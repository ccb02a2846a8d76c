// Package bundle defines the purchasable credit bundles a wallet grants
// tokens from. The wallet only relies on the Bundle capability; Definition
// and Catalog are the stock way to declare bundles.
package bundle

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingKey        = errors.New("bundle: key is required")
	ErrInvalidDefinition = errors.New("bundle: invalid definition")
	ErrDuplicateKey      = errors.New("bundle: duplicate key")
	ErrNotFound          = errors.New("bundle: not found")
)

// Key identifies a bundle definition. Consumption is accounted per
// (Key, expiration) cohort, so two bundles sharing a key share cohorts.
type Key string

// Bundle is the capability a wallet needs from a bundle definition.
type Bundle interface {
	Key() Key
	TokenCount() int64
	// ExpiresAt returns the expiration of a purchase made at now.
	ExpiresAt(now time.Time) time.Time
}

// Validity is a calendar offset applied with time.AddDate.
type Validity struct {
	Years  int `json:"years,omitempty"  yaml:"years,omitempty"`
	Months int `json:"months,omitempty" yaml:"months,omitempty"`
	Days   int `json:"days,omitempty"   yaml:"days,omitempty"`
}

// IsZero reports whether the validity adds no time at all.
func (v Validity) IsZero() bool {
	return v.Years == 0 && v.Months == 0 && v.Days == 0
}

// Apply returns t shifted by the validity window.
func (v Validity) Apply(t time.Time) time.Time {
	return t.AddDate(v.Years, v.Months, v.Days)
}

// Definition is a catalog entry implementing Bundle.
type Definition struct {
	ID       Key               `json:"key"                yaml:"key"`
	Name     string            `json:"name"               yaml:"name"`
	Tokens   int64             `json:"tokens"             yaml:"tokens"`
	Validity Validity          `json:"validity"           yaml:"validity"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

var _ Bundle = Definition{}

func (d Definition) Key() Key { return d.ID }

func (d Definition) TokenCount() int64 { return d.Tokens }

func (d Definition) ExpiresAt(now time.Time) time.Time { return d.Validity.Apply(now) }

// Validate checks that the definition can grant tokens.
func (d Definition) Validate() error {
	switch {
	case d.ID == "":
		return ErrMissingKey
	case d.Tokens <= 0:
		return fmt.Errorf("bundle %q: tokens must be positive: %w", d.ID, ErrInvalidDefinition)
	case d.Validity.IsZero():
		return fmt.Errorf("bundle %q: validity is required: %w", d.ID, ErrInvalidDefinition)
	case d.Validity.Years < 0 || d.Validity.Months < 0 || d.Validity.Days < 0:
		return fmt.Errorf("bundle %q: validity must not be negative: %w", d.ID, ErrInvalidDefinition)
	}
	return nil
}

// Standard bundle keys.
const (
	KeyDay   Key = "day"
	KeyWeek  Key = "week"
	KeyMonth Key = "month"
	KeyYear  Key = "year"
)

// Standard definitions.
var (
	Day   = Definition{ID: KeyDay, Name: "Day pass", Tokens: 10, Validity: Validity{Days: 1}}
	Week  = Definition{ID: KeyWeek, Name: "Week pass", Tokens: 100, Validity: Validity{Days: 7}}
	Month = Definition{ID: KeyMonth, Name: "Month pass", Tokens: 500, Validity: Validity{Months: 1}}
	Year  = Definition{ID: KeyYear, Name: "Year pass", Tokens: 1000, Validity: Validity{Years: 1}}
)
