package mqtt

// The QoS exchange state machines. Each in-flight exchange is one small
// independent machine keyed by packet identifier; the trackers below are
// plain maps because they are owned by a single Engine and the engine
// contract forbids concurrent use (see Engine).

// ExchangeKind identifies what an outbound packet identifier is
// correlating.
type ExchangeKind int

const (
	ExchangePublishQoS1 ExchangeKind = iota
	ExchangePublishQoS2
	ExchangeSubscribe
	ExchangeUnsubscribe
)

// String returns the exchange kind name.
func (k ExchangeKind) String() string {
	switch k {
	case ExchangePublishQoS1:
		return "publish-qos1"
	case ExchangePublishQoS2:
		return "publish-qos2"
	case ExchangeSubscribe:
		return "subscribe"
	case ExchangeUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}

// OutboundState is the sender-side acknowledgement state.
type OutboundState int

const (
	// StateAwaitingPuback: QoS 1 PUBLISH sent, PUBACK pending.
	StateAwaitingPuback OutboundState = iota
	// StateAwaitingPubrec: QoS 2 PUBLISH sent, PUBREC pending.
	StateAwaitingPubrec
	// StateAwaitingPubcomp: PUBREL sent, PUBCOMP pending.
	StateAwaitingPubcomp
	// StateAwaitingSuback: SUBSCRIBE sent, SUBACK pending.
	StateAwaitingSuback
	// StateAwaitingUnsuback: UNSUBSCRIBE sent, UNSUBACK pending.
	StateAwaitingUnsuback
)

// outboundExchange is one sender-side in-flight exchange. The stored
// packets are owned copies so they can be retransmitted after the decode
// buffer that produced any inbound data is long gone.
type outboundExchange struct {
	packetID    uint16
	kind        ExchangeKind
	state       OutboundState
	publish     *PublishPacket
	subscribe   *SubscribePacket
	unsubscribe *UnsubscribePacket
}

// outboundTracker tracks sender-side exchanges in send order, so that
// reconnect retransmission preserves the original ordering.
type outboundTracker struct {
	exchanges map[uint16]*outboundExchange
	order     []uint16
}

func newOutboundTracker() *outboundTracker {
	return &outboundTracker{exchanges: make(map[uint16]*outboundExchange)}
}

func (t *outboundTracker) track(ex *outboundExchange) {
	t.exchanges[ex.packetID] = ex
	t.order = append(t.order, ex.packetID)
}

func (t *outboundTracker) get(id uint16) (*outboundExchange, bool) {
	ex, ok := t.exchanges[id]
	return ex, ok
}

func (t *outboundTracker) release(id uint16) {
	delete(t.exchanges, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// inFlight returns the live exchanges in send order.
func (t *outboundTracker) inFlight() []*outboundExchange {
	out := make([]*outboundExchange, 0, len(t.exchanges))
	for _, id := range t.order {
		if ex, ok := t.exchanges[id]; ok {
			out = append(out, ex)
		}
	}
	return out
}

func (t *outboundTracker) count() int {
	return len(t.exchanges)
}

// inboundTracker tracks receiver-side QoS state.
//
// QoS 1 needs only duplicate suppression: qos1Seen remembers identifiers
// that were delivered and PUBACKed, so a DUP retransmission of the same
// identifier is acknowledged again without a second delivery. A non-DUP
// PUBLISH reusing the identifier is a fresh message and replaces the
// entry.
//
// QoS 2 holds the message from PUBLISH until PUBREL releases it; the
// completed set allows PUBCOMP retransmission when a PUBREL is itself
// retransmitted after completion.
type inboundTracker struct {
	qos1Seen  map[uint16]struct{}
	pending   map[uint16]*Message
	completed map[uint16]struct{}
}

func newInboundTracker() *inboundTracker {
	return &inboundTracker{
		qos1Seen:  make(map[uint16]struct{}),
		pending:   make(map[uint16]*Message),
		completed: make(map[uint16]struct{}),
	}
}

// seenQoS1 reports whether a QoS 1 identifier was already delivered, and
// records it either way.
func (t *inboundTracker) seenQoS1(id uint16, dup bool) bool {
	if dup {
		if _, ok := t.qos1Seen[id]; ok {
			return true
		}
	}
	t.qos1Seen[id] = struct{}{}
	return false
}

// receiveQoS2 stores a QoS 2 message awaiting PUBREL. Returns false when
// the identifier is already pending (a retransmit: re-ack, do not
// re-store).
func (t *inboundTracker) receiveQoS2(id uint16, msg *Message) bool {
	if _, ok := t.pending[id]; ok {
		return false
	}
	delete(t.completed, id)
	t.pending[id] = msg
	return true
}

// releaseQoS2 hands out the message held for the identifier, exactly
// once. The second return is false when the identifier is unknown; a
// known-but-completed identifier returns (nil, true) so the caller can
// retransmit PUBCOMP without re-delivering.
func (t *inboundTracker) releaseQoS2(id uint16) (*Message, bool) {
	if msg, ok := t.pending[id]; ok {
		delete(t.pending, id)
		t.completed[id] = struct{}{}
		return msg, true
	}
	if _, ok := t.completed[id]; ok {
		return nil, true
	}
	return nil, false
}

// pendingQoS2 reports whether the identifier holds an undelivered QoS 2
// message.
func (t *inboundTracker) pendingQoS2(id uint16) bool {
	_, ok := t.pending[id]
	return ok
}

func (t *inboundTracker) count() int {
	return len(t.pending)
}
