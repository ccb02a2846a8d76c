// Package types provides common types shared by wallet records.
package types

import "time"

// Precision is the resolution at which wallet instants are stored. BSON dates
// carry milliseconds, so every backend is normalized to it and cohort keys
// compare equal after a round trip through any store.
const Precision = time.Millisecond

// Entity carries the creation timestamp of a ledger record. Records are
// immutable once stored, so there is no update timestamp.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
}

// NewEntity creates an Entity stamped with the given instant.
func NewEntity(now time.Time) Entity {
	return Entity{CreatedAt: Normalize(now)}
}

// Age returns how long before now the entity was created.
func (e Entity) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Normalize converts t to UTC at storage precision.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(Precision)
}
