package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboundTrackerOrder(t *testing.T) {
	tr := newOutboundTracker()

	for _, id := range []uint16{5, 1, 9} {
		tr.track(&outboundExchange{packetID: id, kind: ExchangePublishQoS1})
	}
	require.Equal(t, 3, tr.count())

	// inFlight preserves send order, not identifier order.
	var ids []uint16
	for _, ex := range tr.inFlight() {
		ids = append(ids, ex.packetID)
	}
	assert.Equal(t, []uint16{5, 1, 9}, ids)

	tr.release(1)
	ids = ids[:0]
	for _, ex := range tr.inFlight() {
		ids = append(ids, ex.packetID)
	}
	assert.Equal(t, []uint16{5, 9}, ids)

	_, ok := tr.get(1)
	assert.False(t, ok)
	ex, ok := tr.get(9)
	require.True(t, ok)
	assert.Equal(t, uint16(9), ex.packetID)
}

func TestInboundQoS1DuplicateSuppression(t *testing.T) {
	tr := newInboundTracker()

	assert.False(t, tr.seenQoS1(7, false))

	// A DUP retransmission of a delivered identifier is suppressed.
	assert.True(t, tr.seenQoS1(7, true))

	// A non-DUP publish reusing the identifier is a new message.
	assert.False(t, tr.seenQoS1(7, false))

	// DUP on a never-seen identifier still delivers.
	assert.False(t, tr.seenQoS1(8, true))
}

func TestInboundQoS2Lifecycle(t *testing.T) {
	tr := newInboundTracker()
	msg := &Message{Topic: "a", Payload: []byte("x"), QoS: 2}

	require.True(t, tr.receiveQoS2(3, msg))
	assert.True(t, tr.pendingQoS2(3))
	assert.Equal(t, 1, tr.count())

	// A retransmitted PUBLISH must not replace the held message.
	assert.False(t, tr.receiveQoS2(3, &Message{Topic: "other"}))

	got, known := tr.releaseQoS2(3)
	require.True(t, known)
	assert.Same(t, msg, got)
	assert.False(t, tr.pendingQoS2(3))

	// A retransmitted PUBREL after completion is known but yields nothing.
	got, known = tr.releaseQoS2(3)
	assert.True(t, known)
	assert.Nil(t, got)

	// An identifier never seen is unknown.
	_, known = tr.releaseQoS2(99)
	assert.False(t, known)
}
