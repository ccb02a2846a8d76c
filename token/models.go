package token

import (
	"time"

	"github.com/xraph/wallet/bundle"
	"github.com/xraph/wallet/id"
	"github.com/xraph/wallet/types"
)

// Batch is one purchase of a bundle: Count tokens usable until ExpiresAt.
type Batch struct {
	types.Entity
	ID        id.BatchID `json:"id"`
	WalletID  string     `json:"wallet_id"`
	Count     int64      `json:"count"`
	ExpiresAt time.Time  `json:"expires_at"`
	Bundle    bundle.Key `json:"bundle"`
}

func (b *Batch) Cohort() Cohort { return Cohort{Bundle: b.Bundle, ExpiresAt: b.ExpiresAt} }

// Consumption records Count tokens drawn from the cohort (Bundle, ExpiresAt).
type Consumption struct {
	types.Entity
	ID        id.ConsumptionID `json:"id"`
	WalletID  string           `json:"wallet_id"`
	Count     int64            `json:"count"`
	ExpiresAt time.Time        `json:"expires_at"`
	Bundle    bundle.Key       `json:"bundle"`
}

func (c *Consumption) Cohort() Cohort { return Cohort{Bundle: c.Bundle, ExpiresAt: c.ExpiresAt} }

// Cohort groups batches of the same bundle expiring at the same instant.
// Batches in a cohort share one pool of credit.
type Cohort struct {
	Bundle    bundle.Key `json:"bundle"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Equal reports whether both cohorts name the same pool.
func (c Cohort) Equal(o Cohort) bool {
	return c.Bundle == o.Bundle && c.ExpiresAt.Equal(o.ExpiresAt)
}

type cohortKey struct {
	bundle  bundle.Key
	expires int64
}

func (c Cohort) key() cohortKey {
	return cohortKey{bundle: c.Bundle, expires: c.ExpiresAt.UnixNano()}
}

// Allocation is the share of a consume request drawn from one cohort.
type Allocation struct {
	Cohort Cohort `json:"cohort"`
	Count  int64  `json:"count"`
}

type Balance struct {
	Count             int64      `json:"count"`
	ClosestExpiration *time.Time `json:"closest_expiration,omitempty"`
}
