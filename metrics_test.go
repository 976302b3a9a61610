package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.PacketSent(PacketPUBLISH)
	m.PacketSent(PacketPUBLISH)
	m.PacketReceived(PacketPUBACK)
	m.MessageDelivered()
	m.PublishCompleted()
	m.Retransmission()
	m.KeepAliveTimeout()

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.PacketsSent)
	assert.Equal(t, uint64(1), snap.PacketsReceived)
	assert.Equal(t, uint64(1), snap.MessagesDelivered)
	assert.Equal(t, uint64(1), snap.PublishCompleted)
	assert.Equal(t, uint64(1), snap.Retransmissions)
	assert.Equal(t, uint64(1), snap.KeepAliveTimeouts)
}
