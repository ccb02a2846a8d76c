// Package audithook bridges wallet ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/wallet/plugin"
	"github.com/xraph/wallet/token"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnBundleAdded        = (*Extension)(nil)
	_ plugin.OnTokensConsumed     = (*Extension)(nil)
	_ plugin.OnConsumeRejected    = (*Extension)(nil)
	_ plugin.OnWalletReset        = (*Extension)(nil)
	_ plugin.OnLedgerInconsistent = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges wallet ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Purchase hooks
// ──────────────────────────────────────────────────

// OnBundleAdded implements plugin.OnBundleAdded.
func (e *Extension) OnBundleAdded(ctx context.Context, batch *token.Batch) error {
	return e.record(ctx, ActionBundleAdded, SeverityInfo, OutcomeSuccess,
		ResourceBatch, batch.ID.String(), CategoryPurchase, nil,
		"wallet_id", batch.WalletID,
		"bundle", string(batch.Bundle),
		"count", batch.Count,
		"expires_at", batch.ExpiresAt,
	)
}

// ──────────────────────────────────────────────────
// Consumption hooks
// ──────────────────────────────────────────────────

// OnTokensConsumed implements plugin.OnTokensConsumed.
func (e *Extension) OnTokensConsumed(ctx context.Context, walletID string, count int64, records []*token.Consumption) error {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID.String())
	}
	return e.record(ctx, ActionTokensConsumed, SeverityInfo, OutcomeSuccess,
		ResourceConsumption, walletID, CategoryConsumption, nil,
		"wallet_id", walletID,
		"count", count,
		"records", ids,
	)
}

// OnConsumeRejected implements plugin.OnConsumeRejected.
func (e *Extension) OnConsumeRejected(ctx context.Context, walletID string, requested, available int64) error {
	return e.record(ctx, ActionConsumeRejected, SeverityWarning, OutcomeFailure,
		ResourceWallet, walletID, CategoryConsumption, nil,
		"wallet_id", walletID,
		"requested", requested,
		"available", available,
	)
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnWalletReset implements plugin.OnWalletReset.
func (e *Extension) OnWalletReset(ctx context.Context, walletID string) error {
	return e.record(ctx, ActionWalletReset, SeverityWarning, OutcomeSuccess,
		ResourceWallet, walletID, CategoryLedger, nil,
		"wallet_id", walletID,
	)
}

// OnLedgerInconsistent implements plugin.OnLedgerInconsistent.
func (e *Extension) OnLedgerInconsistent(ctx context.Context, walletID string, cause error) error {
	return e.record(ctx, ActionLedgerInconsistent, SeverityCritical, OutcomeFailure,
		ResourceWallet, walletID, CategoryLedger, cause,
		"wallet_id", walletID,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
