package session

import (
	"context"
	"log"
)

// MessagesPerTurn is the message-count increment for one completed
// user/assistant exchange. Intermediate tool-use and tool-result
// fragments are archived but do not count toward it.
const MessagesPerTurn = 2

// Reconciler converts the cumulative cost figure reported by the agent
// runtime at end of turn into a per-turn delta before persisting it.
// The persistence API only ever accepts deltas, so accumulating the
// cumulative figure twice is structurally impossible.
type Reconciler struct {
	store *Store
	warnf func(format string, args ...any)
}

// NewReconciler creates a Reconciler over the session store. Warnings
// (cost regressions) go to the standard logger.
func NewReconciler(store *Store) *Reconciler {
	return &Reconciler{store: store, warnf: log.Printf}
}

// SetWarnf replaces the warning sink. Used by tests to capture
// regression warnings.
func (r *Reconciler) SetWarnf(warnf func(format string, args ...any)) {
	r.warnf = warnf
}

// TurnDelta computes the per-turn cost increment from the reported and
// previously stored cumulative figures. A regressed report (reported <
// stored) should not happen; when it does, the delta is clamped to zero
// and a warning is emitted, never a negative delta.
func (r *Reconciler) TurnDelta(sessionID string, reported, stored float64) float64 {
	delta := reported - stored
	if delta < 0 {
		r.warnf("cost regression for session %s: reported %.6f below stored %.6f, clamping delta to 0", sessionID, reported, stored)
		return 0
	}
	return delta
}

// CompleteTurn runs the end-of-turn reconciliation exactly once per
// completed exchange: it reads the stored cumulative cost, derives the
// delta from the runtime's reported cumulative figure, and persists the
// delta together with the two-message count increment. Returns the
// persisted delta.
func (r *Reconciler) CompleteTurn(ctx context.Context, sessionID string, reportedCumulative float64) (float64, error) {
	sess, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	delta := r.TurnDelta(sessionID, reportedCumulative, sess.TotalCostUSD)
	if err := r.store.TouchAndIncrement(ctx, sessionID, delta, MessagesPerTurn); err != nil {
		return 0, err
	}
	return delta, nil
}
