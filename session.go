package mqtt

// ConnectionPhase is the lifecycle phase of a session.
type ConnectionPhase int

const (
	// PhaseDisconnected: no connection attempt in progress.
	PhaseDisconnected ConnectionPhase = iota
	// PhaseConnecting: CONNECT sent, CONNACK pending.
	PhaseConnecting
	// PhaseConnected: CONNACK accepted, normal operation.
	PhaseConnected
)

// String returns the phase name.
func (p ConnectionPhase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// session is the per-connection state an engine drives: the phase, the
// QoS trackers, packet identifier allocation, flow control quota and
// topic alias tables.
type session struct {
	phase      ConnectionPhase
	clientID   string
	cleanStart bool

	pids      *PacketIDManager
	outbound  *outboundTracker
	inbound   *inboundTracker
	flow      *FlowController
	aliases   *TopicAliasManager
	keepAlive *keepAliveTracker

	// Capabilities announced by the server in CONNACK (v5). The
	// zero-value defaults match v3.1.1 behavior.
	serverMaxQoS          byte
	serverRetainAvailable bool
}

func newSession() *session {
	return &session{
		pids:                  NewPacketIDManager(),
		outbound:              newOutboundTracker(),
		inbound:               newInboundTracker(),
		flow:                  NewFlowController(0),
		aliases:               NewTopicAliasManager(0, 0),
		serverMaxQoS:          2,
		serverRetainAvailable: true,
	}
}

// reset discards all per-connection state for a clean start.
func (s *session) reset() {
	s.pids = NewPacketIDManager()
	s.outbound = newOutboundTracker()
	s.inbound = newInboundTracker()
	s.flow = NewFlowController(0)
	s.serverMaxQoS = 2
	s.serverRetainAvailable = true
}

// dropEphemeral discards the exchanges that do not survive a
// reconnection: SUBSCRIBE and UNSUBSCRIBE requests die with the
// connection, while QoS publish flows are retransmitted.
func (s *session) dropEphemeral() {
	for _, ex := range s.outbound.inFlight() {
		if ex.kind == ExchangeSubscribe || ex.kind == ExchangeUnsubscribe {
			s.outbound.release(ex.packetID)
			_ = s.pids.Release(ex.packetID)
		}
	}
}
