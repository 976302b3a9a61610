package mqtt

import "sync/atomic"

// Metrics receives counters from the engine and transports. Implement it
// to bridge to a metrics system; the default is NopMetrics.
type Metrics interface {
	// PacketSent counts one outbound control packet.
	PacketSent(t PacketType)

	// PacketReceived counts one inbound control packet.
	PacketReceived(t PacketType)

	// MessageDelivered counts one inbound application message handed to
	// the application.
	MessageDelivered()

	// PublishCompleted counts one outbound QoS 1 or 2 publish reaching
	// the end of its acknowledgement flow.
	PublishCompleted()

	// Retransmission counts one packet re-sent after session resumption.
	Retransmission()

	// KeepAliveTimeout counts one session lost to a missed keep-alive
	// deadline.
	KeepAliveTimeout()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) PacketSent(PacketType)     {}
func (NopMetrics) PacketReceived(PacketType) {}
func (NopMetrics) MessageDelivered()         {}
func (NopMetrics) PublishCompleted()         {}
func (NopMetrics) Retransmission()           {}
func (NopMetrics) KeepAliveTimeout()         {}

// InMemoryMetrics keeps atomic counters, for tests and debug endpoints.
type InMemoryMetrics struct {
	packetsSent       atomic.Uint64
	packetsReceived   atomic.Uint64
	messagesDelivered atomic.Uint64
	publishCompleted  atomic.Uint64
	retransmissions   atomic.Uint64
	keepAliveTimeouts atomic.Uint64
}

// NewInMemoryMetrics creates an in-memory metrics collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{}
}

func (m *InMemoryMetrics) PacketSent(PacketType)     { m.packetsSent.Add(1) }
func (m *InMemoryMetrics) PacketReceived(PacketType) { m.packetsReceived.Add(1) }
func (m *InMemoryMetrics) MessageDelivered()         { m.messagesDelivered.Add(1) }
func (m *InMemoryMetrics) PublishCompleted()         { m.publishCompleted.Add(1) }
func (m *InMemoryMetrics) Retransmission()           { m.retransmissions.Add(1) }
func (m *InMemoryMetrics) KeepAliveTimeout()         { m.keepAliveTimeouts.Add(1) }

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	PacketsSent       uint64
	PacketsReceived   uint64
	MessagesDelivered uint64
	PublishCompleted  uint64
	Retransmissions   uint64
	KeepAliveTimeouts uint64
}

// Snapshot returns the current counter values.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		PacketsSent:       m.packetsSent.Load(),
		PacketsReceived:   m.packetsReceived.Load(),
		MessagesDelivered: m.messagesDelivered.Load(),
		PublishCompleted:  m.publishCompleted.Load(),
		Retransmissions:   m.retransmissions.Load(),
		KeepAliveTimeouts: m.keepAliveTimeouts.Load(),
	}
}
