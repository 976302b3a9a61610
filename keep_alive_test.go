package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeepAliveSchedule(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ka := newKeepAliveTracker(10, start)

	sendPing, expired := ka.tick(start.Add(9 * time.Second))
	assert.False(t, sendPing)
	assert.False(t, expired)

	// One interval of silence triggers exactly one ping.
	sendPing, expired = ka.tick(start.Add(10 * time.Second))
	assert.True(t, sendPing)
	assert.False(t, expired)

	sendPing, expired = ka.tick(start.Add(11 * time.Second))
	assert.False(t, sendPing)
	assert.False(t, expired)

	// The grace period is half an interval past the ping.
	sendPing, expired = ka.tick(start.Add(24 * time.Second))
	assert.False(t, sendPing)
	assert.False(t, expired)

	sendPing, expired = ka.tick(start.Add(25 * time.Second))
	assert.False(t, sendPing)
	assert.True(t, expired)
}

// A tick arriving late still grants the full grace window from the
// moment the PINGREQ actually goes out.
func TestKeepAliveLateTickAnchorsDeadline(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ka := newKeepAliveTracker(10, start)

	sendPing, expired := ka.tick(start.Add(13 * time.Second))
	assert.True(t, sendPing)
	assert.False(t, expired)

	_, expired = ka.tick(start.Add(27 * time.Second))
	assert.False(t, expired)

	_, expired = ka.tick(start.Add(28 * time.Second))
	assert.True(t, expired)
}

func TestKeepAlivePongResets(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ka := newKeepAliveTracker(10, start)

	sendPing, _ := ka.tick(start.Add(10 * time.Second))
	assert.True(t, sendPing)

	ka.pongReceived(start.Add(12 * time.Second))

	// Not expired at what would have been the old deadline.
	sendPing, expired := ka.tick(start.Add(25 * time.Second))
	assert.False(t, expired)
	// 12s + 10s interval has passed again.
	assert.True(t, sendPing)
}

func TestKeepAliveActivityDefersPing(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ka := newKeepAliveTracker(10, start)

	ka.touch(start.Add(8 * time.Second))

	sendPing, expired := ka.tick(start.Add(10 * time.Second))
	assert.False(t, sendPing)
	assert.False(t, expired)

	sendPing, _ = ka.tick(start.Add(18 * time.Second))
	assert.True(t, sendPing)
}

func TestKeepAliveDisabled(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ka := newKeepAliveTracker(0, start)

	sendPing, expired := ka.tick(start.Add(1000 * time.Hour))
	assert.False(t, sendPing)
	assert.False(t, expired)
}
