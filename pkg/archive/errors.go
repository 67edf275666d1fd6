package archive

import "fmt"

// SessionNotFoundError reports a resume request for a session id with no
// matching row. It enables typed error discrimination via errors.As so
// callers can fall back to creating a fresh session.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

// NegativeCostDeltaError reports an attempt to persist a cost delta that
// would reduce a session's cumulative spend. Cumulative cost is
// monotonically non-decreasing; negative deltas are rejected at the
// storage boundary.
type NegativeCostDeltaError struct {
	SessionID string
	Delta     float64
}

func (e *NegativeCostDeltaError) Error() string {
	return fmt.Sprintf("negative cost delta %.6f rejected for session %s", e.Delta, e.SessionID)
}

// InvalidRoleError reports a message append with a role outside the
// closed {user, assistant, tool} set.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid message role %q", e.Role)
}
