package mqtt

import "time"

// keepAliveGraceFactor is the multiplier for the liveness deadline. The
// specification allows one and a half keep-alive intervals of silence
// before a session is considered dead.
const keepAliveGraceFactor = 1.5

// keepAliveTracker tracks the keep-alive deadlines of a single session.
// It is driven cooperatively: the engine calls touch on every packet
// sent or received and tick from Engine.Tick; the tracker never spawns
// timers.
type keepAliveTracker struct {
	interval     time.Duration
	lastActivity time.Time

	// pingPending is set between emitting PINGREQ and receiving
	// PINGRESP; pingDeadline is the point at which the missing
	// PINGRESP kills the session.
	pingPending  bool
	pingDeadline time.Time
}

// newKeepAliveTracker creates a tracker for a keep-alive interval in
// seconds. Zero disables keep-alive entirely.
func newKeepAliveTracker(seconds uint16, now time.Time) *keepAliveTracker {
	return &keepAliveTracker{
		interval:     time.Duration(seconds) * time.Second,
		lastActivity: now,
	}
}

// setInterval applies a server keep-alive override from CONNACK.
func (k *keepAliveTracker) setInterval(seconds uint16) {
	k.interval = time.Duration(seconds) * time.Second
}

// touch records traffic in either direction and pushes the main deadline
// out.
func (k *keepAliveTracker) touch(now time.Time) {
	k.lastActivity = now
}

// pongReceived clears the outstanding PINGREQ.
func (k *keepAliveTracker) pongReceived(now time.Time) {
	k.pingPending = false
	k.lastActivity = now
}

// tick compares now against the deadlines. sendPing is true exactly when
// a PINGREQ must go out; expired is true when the grace deadline passed
// without a PINGRESP and the session is dead.
func (k *keepAliveTracker) tick(now time.Time) (sendPing, expired bool) {
	if k.interval == 0 {
		return false, false
	}

	if k.pingPending {
		return false, !now.Before(k.pingDeadline)
	}

	if !now.Before(k.lastActivity.Add(k.interval)) {
		// The grace window is anchored to the PINGREQ itself, not to the
		// silence that provoked it.
		k.pingPending = true
		k.pingDeadline = now.Add(time.Duration(keepAliveGraceFactor * float64(k.interval)))
		return true, false
	}

	return false, false
}
