// Package token holds the wallet ledgers and the pure consumption engine
// that decides availability, allocation order and balances.
package token

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInconsistentLedger reports ledgers that violate the consumption
// invariants, e.g. a cohort consumed beyond what was purchased.
var ErrInconsistentLedger = errors.New("token: inconsistent ledger")

type pool struct {
	cohort   Cohort
	capacity int64
}

// activePools groups batches with ExpiresAt after now into cohorts, ordered
// by expiration. Cohorts expiring at the same instant keep purchase order.
func activePools(purchased []*Batch, now time.Time) []*pool {
	index := make(map[cohortKey]*pool)
	var pools []*pool
	for _, b := range purchased {
		if !b.ExpiresAt.After(now) {
			continue
		}
		c := b.Cohort()
		p, ok := index[c.key()]
		if !ok {
			p = &pool{cohort: c}
			index[c.key()] = p
			pools = append(pools, p)
		}
		p.capacity += b.Count
	}
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].cohort.ExpiresAt.Before(pools[j].cohort.ExpiresAt)
	})
	return pools
}

func consumedByCohort(consumed []*Consumption) map[cohortKey]int64 {
	out := make(map[cohortKey]int64)
	for _, c := range consumed {
		out[c.Cohort().key()] += c.Count
	}
	return out
}

// Available returns the non-expired purchased total minus every consumption
// ever recorded. Consumption against cohorts that have since expired still
// counts, so the figure never overstates what Allocate can satisfy.
func Available(purchased []*Batch, consumed []*Consumption, now time.Time) int64 {
	var total int64
	for _, b := range purchased {
		if b.ExpiresAt.After(now) {
			total += b.Count
		}
	}
	for _, c := range consumed {
		total -= c.Count
	}
	return total
}

// CanConsume reports whether count tokens are available at now.
func CanConsume(purchased []*Batch, consumed []*Consumption, count int64, now time.Time) bool {
	if count <= 0 {
		return true
	}
	return Available(purchased, consumed, now) >= count
}

// Allocate splits count across non-expired cohorts, soonest expiration
// first. It returns false without allocations when count cannot be covered
// in full.
func Allocate(purchased []*Batch, consumed []*Consumption, count int64, now time.Time) ([]Allocation, bool) {
	if count <= 0 || !CanConsume(purchased, consumed, count, now) {
		return nil, false
	}

	used := consumedByCohort(consumed)
	remaining := count
	var out []Allocation
	for _, p := range activePools(purchased, now) {
		if remaining <= 0 {
			break
		}
		free := p.capacity - used[p.cohort.key()]
		if free <= 0 {
			continue
		}
		take := min(free, remaining)
		used[p.cohort.key()] += take
		remaining -= take
		out = append(out, Allocation{Cohort: p.cohort, Count: take})
	}

	if remaining > 0 {
		return nil, false
	}
	return out, true
}

// ComputeBalance sums the unconsumed credit of every non-expired cohort.
func ComputeBalance(purchased []*Batch, consumed []*Consumption, now time.Time) Balance {
	used := consumedByCohort(consumed)

	var bal Balance
	for _, p := range activePools(purchased, now) {
		bal.Count += p.capacity - min(used[p.cohort.key()], p.capacity)
		if bal.ClosestExpiration == nil {
			exp := p.cohort.ExpiresAt
			bal.ClosestExpiration = &exp
		}
	}
	return bal
}

// LatestExpiration returns the furthest expiration among non-expired
// batches.
func LatestExpiration(purchased []*Batch, now time.Time) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, b := range purchased {
		if !b.ExpiresAt.After(now) {
			continue
		}
		if !found || b.ExpiresAt.After(latest) {
			latest = b.ExpiresAt
			found = true
		}
	}
	return latest, found
}

// Validate checks record counts and per-cohort totals regardless of
// expiration.
func Validate(purchased []*Batch, consumed []*Consumption) error {
	var errs []error
	capacity := make(map[cohortKey]int64)
	for _, b := range purchased {
		if b.Count <= 0 {
			errs = append(errs, fmt.Errorf("batch %s: count %d: %w", b.ID, b.Count, ErrInconsistentLedger))
		}
		capacity[b.Cohort().key()] += b.Count
	}
	for _, c := range consumed {
		if c.Count <= 0 {
			errs = append(errs, fmt.Errorf("consumption %s: count %d: %w", c.ID, c.Count, ErrInconsistentLedger))
		}
	}

	used := consumedByCohort(consumed)
	keys := make([]cohortKey, 0, len(used))
	for k := range used {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].expires != keys[j].expires {
			return keys[i].expires < keys[j].expires
		}
		return keys[i].bundle < keys[j].bundle
	})
	for _, k := range keys {
		if used[k] > capacity[k] {
			errs = append(errs, fmt.Errorf("cohort %s@%s: consumed %d of %d: %w",
				k.bundle, time.Unix(0, k.expires).UTC().Format(time.RFC3339), used[k], capacity[k], ErrInconsistentLedger))
		}
	}
	return errors.Join(errs...)
}
