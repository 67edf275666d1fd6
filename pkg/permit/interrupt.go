package permit

import "time"

// BoundedInterrupt cancels in-flight work and waits for it to
// acknowledge, but never longer than timeout: a hung cancellation must
// not wedge process shutdown. cancel is invoked immediately; done
// should close when the interrupted work has wound down. Returns true
// if the work acknowledged within the bound, false if the interrupt was
// abandoned as best-effort.
func BoundedInterrupt(cancel func(), done <-chan struct{}, timeout time.Duration) bool {
	cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
