package mqtt

import (
	"time"
)

// ConnectOptions configures a connection attempt.
type ConnectOptions struct {
	// ClientID is the client identifier. May be empty with CleanStart
	// under v5, where the server assigns one.
	ClientID string

	// CleanStart requests a fresh session.
	CleanStart bool

	// KeepAlive is the keep-alive interval in seconds. Zero disables
	// keep-alive.
	KeepAlive uint16

	// Username and Password for authentication.
	Username string
	Password []byte

	// Will is the message the server publishes if the connection dies
	// without a DISCONNECT. Optional.
	Will *Message

	// WillDelay is the will delay interval in seconds (v5 only).
	WillDelay uint32

	// SessionExpiry is the session expiry interval in seconds (v5 only).
	SessionExpiry uint32

	// ReceiveMaximum is the number of inbound QoS>0 publishes this side
	// accepts concurrently (v5 only). Zero means the protocol default.
	ReceiveMaximum uint16

	// TopicAliasMaximum is the highest inbound topic alias this side
	// accepts (v5 only). Zero disables inbound aliasing.
	TopicAliasMaximum uint16

	// Authenticator enables v5 enhanced authentication.
	Authenticator Authenticator

	// Properties holds additional CONNECT properties (v5 only).
	Properties Properties
}

// Authenticator drives one side of a v5 enhanced authentication
// exchange (SCRAM, Kerberos and the like).
type Authenticator interface {
	// Method is the authentication method name sent in CONNECT.
	Method() string

	// InitialData produces the authentication data for CONNECT.
	InitialData() ([]byte, error)

	// Continue consumes a server challenge and produces the next
	// client response.
	Continue(challenge []byte) ([]byte, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the engine's metrics sink.
func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the engine's time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// Engine drives one MQTT session without performing I/O. Every
// operation returns the packets the caller must transmit, in order, and
// the events the application should see. The engine never blocks, never
// spawns goroutines, and never touches the network.
//
// An Engine is owned by exactly one connection loop. Its methods must
// not be called concurrently.
//
// Timers are cooperative: the owner calls Tick periodically and the
// engine reports keep-alive work as packets and events, exactly like
// any other operation.
type Engine struct {
	version ProtocolVersion
	sess    *session
	opts    ConnectOptions

	now     func() time.Time
	log     Logger
	metrics Metrics
}

// NewEngine creates an engine for one session speaking the given
// protocol version.
func NewEngine(version ProtocolVersion, opts ...EngineOption) *Engine {
	e := &Engine{
		version: version,
		sess:    newSession(),
		now:     time.Now,
		log:     NopLogger{},
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Version returns the protocol version the engine speaks.
func (e *Engine) Version() ProtocolVersion { return e.version }

// Phase returns the current connection phase.
func (e *Engine) Phase() ConnectionPhase { return e.sess.phase }

// InFlight returns the number of outbound exchanges awaiting
// acknowledgement.
func (e *Engine) InFlight() int { return e.sess.outbound.count() }

// send counts outbound packets and refreshes the keep-alive activity
// mark.
func (e *Engine) send(pkts ...Packet) []Packet {
	for _, p := range pkts {
		e.metrics.PacketSent(p.Type())
	}
	if len(pkts) > 0 && e.sess.keepAlive != nil {
		e.sess.keepAlive.touch(e.now())
	}
	return pkts
}

// Connect starts a connection attempt and returns the CONNECT packet to
// transmit. With CleanStart false, in-flight QoS exchanges from the
// previous connection are kept for retransmission once the server
// confirms session presence.
func (e *Engine) Connect(opts ConnectOptions) ([]Packet, []Event, error) {
	if e.sess.phase != PhaseDisconnected {
		return nil, nil, ErrAlreadyConnected
	}

	if opts.Will != nil && opts.Will.QoS > 2 {
		return nil, nil, ErrInvalidQoS
	}

	e.opts = opts

	if opts.CleanStart {
		e.sess.reset()
	} else {
		e.sess.dropEphemeral()
	}
	e.sess.clientID = opts.ClientID
	e.sess.cleanStart = opts.CleanStart
	e.sess.inbound = newInboundTracker()
	e.sess.keepAlive = newKeepAliveTracker(opts.KeepAlive, e.now())
	e.sess.aliases.Reset(0, opts.TopicAliasMaximum)

	pkt := &ConnectPacket{
		ClientID:   opts.ClientID,
		CleanStart: opts.CleanStart,
		KeepAlive:  opts.KeepAlive,
		Username:   opts.Username,
		Password:   opts.Password,
	}

	if e.version == Version5 {
		pkt.Props = opts.Properties
		if opts.SessionExpiry != 0 {
			pkt.Props.Set(PropSessionExpiryInterval, opts.SessionExpiry)
		}
		if opts.ReceiveMaximum != 0 {
			pkt.Props.Set(PropReceiveMaximum, opts.ReceiveMaximum)
		}
		if opts.TopicAliasMaximum != 0 {
			pkt.Props.Set(PropTopicAliasMaximum, opts.TopicAliasMaximum)
		}
		if opts.Authenticator != nil {
			pkt.Props.Set(PropAuthenticationMethod, opts.Authenticator.Method())
			data, err := opts.Authenticator.InitialData()
			if err != nil {
				return nil, nil, err
			}
			if len(data) > 0 {
				pkt.Props.Set(PropAuthenticationData, data)
			}
		}
	}

	if opts.Will != nil {
		pkt.WillFlag = true
		pkt.WillTopic = opts.Will.Topic
		pkt.WillPayload = opts.Will.Payload
		pkt.WillQoS = opts.Will.QoS
		pkt.WillRetain = opts.Will.Retain
		if e.version == Version5 {
			pkt.WillProps = opts.Will.ToProperties()
			if opts.WillDelay != 0 {
				pkt.WillProps.Set(PropWillDelayInterval, opts.WillDelay)
			}
		}
	}

	if err := pkt.Validate(e.version); err != nil {
		return nil, nil, err
	}

	e.sess.phase = PhaseConnecting
	e.log.Debugf("mqtt: connecting client_id=%q clean_start=%v keep_alive=%ds",
		opts.ClientID, opts.CleanStart, opts.KeepAlive)

	return e.send(pkt), nil, nil
}

// Publish sends an application message. QoS 0 returns the PUBLISH alone;
// QoS 1 and 2 allocate a packet identifier, take a flow-control slot and
// track the exchange until its acknowledgement flow completes, reported
// later as a PublishAcked event.
func (e *Engine) Publish(msg *Message) ([]Packet, []Event, error) {
	if e.sess.phase != PhaseConnected {
		return nil, nil, ErrNotConnected
	}
	if msg.QoS > 2 {
		return nil, nil, ErrInvalidQoS
	}
	if msg.QoS > e.sess.serverMaxQoS {
		return nil, nil, violationf("QoS %d exceeds server maximum %d", msg.QoS, e.sess.serverMaxQoS)
	}
	if msg.Retain && !e.sess.serverRetainAvailable {
		return nil, nil, violationf("server does not support retained messages")
	}

	// The engine owns the message from here on; the caller may reuse
	// the payload buffer after this call returns.
	owned := msg.Clone()

	pkt := &PublishPacket{}
	pkt.FromMessage(owned)

	if e.version == Version5 {
		if alias, includeTopic := e.sess.aliases.Assign(owned.Topic); alias != 0 {
			pkt.Props.Set(PropTopicAlias, alias)
			if !includeTopic {
				pkt.Topic = ""
			}
		}
	}

	if msg.QoS == 0 {
		return e.send(pkt), nil, nil
	}

	if err := e.sess.flow.Acquire(); err != nil {
		return nil, nil, err
	}

	id, err := e.sess.pids.Allocate()
	if err != nil {
		e.sess.flow.Release()
		return nil, nil, err
	}
	pkt.PacketID = id

	ex := &outboundExchange{
		packetID: id,
		publish:  pkt,
	}
	if msg.QoS == 1 {
		ex.kind = ExchangePublishQoS1
		ex.state = StateAwaitingPuback
	} else {
		ex.kind = ExchangePublishQoS2
		ex.state = StateAwaitingPubrec
	}
	e.sess.outbound.track(ex)

	return e.send(pkt), nil, nil
}

// Subscribe sends a SUBSCRIBE for the given filters. Completion is
// reported later as a SubscribeAcked event carrying one reason code per
// filter.
func (e *Engine) Subscribe(subs ...Subscription) ([]Packet, []Event, error) {
	if e.sess.phase != PhaseConnected {
		return nil, nil, ErrNotConnected
	}
	if len(subs) == 0 {
		return nil, nil, ErrNoTopicFilters
	}

	id, err := e.sess.pids.Allocate()
	if err != nil {
		return nil, nil, err
	}

	pkt := &SubscribePacket{
		PacketID:      id,
		Subscriptions: subs,
	}
	if err := pkt.Validate(e.version); err != nil {
		_ = e.sess.pids.Release(id)
		return nil, nil, err
	}

	e.sess.outbound.track(&outboundExchange{
		packetID:  id,
		kind:      ExchangeSubscribe,
		state:     StateAwaitingSuback,
		subscribe: pkt,
	})

	return e.send(pkt), nil, nil
}

// Unsubscribe sends an UNSUBSCRIBE for the given filters. Completion is
// reported later as an UnsubscribeAcked event.
func (e *Engine) Unsubscribe(filters ...string) ([]Packet, []Event, error) {
	if e.sess.phase != PhaseConnected {
		return nil, nil, ErrNotConnected
	}
	if len(filters) == 0 {
		return nil, nil, ErrNoTopicFilters
	}

	id, err := e.sess.pids.Allocate()
	if err != nil {
		return nil, nil, err
	}

	pkt := &UnsubscribePacket{
		PacketID:     id,
		TopicFilters: filters,
	}
	if err := pkt.Validate(e.version); err != nil {
		_ = e.sess.pids.Release(id)
		return nil, nil, err
	}

	e.sess.outbound.track(&outboundExchange{
		packetID:    id,
		kind:        ExchangeUnsubscribe,
		state:       StateAwaitingUnsuback,
		unsubscribe: pkt,
	})

	return e.send(pkt), nil, nil
}

// Disconnect ends the session cleanly and returns the DISCONNECT packet
// to transmit before closing the connection. In-flight QoS state is kept
// for a later reconnect with CleanStart false.
func (e *Engine) Disconnect(reason ReasonCode) ([]Packet, []Event, error) {
	if e.sess.phase == PhaseDisconnected {
		return nil, nil, ErrNotConnected
	}

	pkt := &DisconnectPacket{}
	if e.version == Version5 {
		pkt.ReasonCode = reason
	}

	out := e.send(pkt)
	e.sess.phase = PhaseDisconnected
	e.sess.keepAlive = nil
	e.log.Debugf("mqtt: disconnected client_id=%q reason=%s", e.sess.clientID, reason)

	return out, nil, nil
}

// Tick drives the engine's cooperative timers. Call it periodically with
// the current time; it emits PINGREQ when the keep-alive interval
// elapses without traffic and reports KeepAliveTimeout when the peer
// misses the response deadline.
func (e *Engine) Tick(now time.Time) ([]Packet, []Event, error) {
	if e.sess.phase != PhaseConnected || e.sess.keepAlive == nil {
		return nil, nil, nil
	}

	sendPing, expired := e.sess.keepAlive.tick(now)
	if expired {
		e.sess.phase = PhaseDisconnected
		e.sess.keepAlive = nil
		e.metrics.KeepAliveTimeout()
		e.log.Warnf("mqtt: keep-alive timeout client_id=%q", e.sess.clientID)
		return nil, []Event{
			KeepAliveTimeout{},
			ConnectionLost{Err: ErrKeepAliveTimeout},
		}, nil
	}

	if sendPing {
		// Bypass send: a PINGREQ must not refresh the activity mark it
		// exists to probe.
		pkt := &PingreqPacket{}
		e.metrics.PacketSent(pkt.Type())
		return []Packet{pkt}, nil, nil
	}

	return nil, nil, nil
}

// Deliver feeds one inbound packet to the engine. The packet may borrow
// from a decode buffer; anything the engine needs to keep beyond this
// call is copied.
func (e *Engine) Deliver(pkt Packet) ([]Packet, []Event, error) {
	e.metrics.PacketReceived(pkt.Type())
	if e.sess.keepAlive != nil {
		e.sess.keepAlive.touch(e.now())
	}

	switch e.sess.phase {
	case PhaseConnecting:
		return e.deliverConnecting(pkt)
	case PhaseConnected:
		return e.deliverConnected(pkt)
	default:
		return nil, nil, ErrNotConnected
	}
}

// deliverConnecting handles the handshake: only CONNACK and (v5) AUTH
// are legal before the connection is established.
func (e *Engine) deliverConnecting(pkt Packet) ([]Packet, []Event, error) {
	switch p := pkt.(type) {
	case *ConnackPacket:
		return e.handleConnack(p)
	case *AuthPacket:
		if e.version == Version5 {
			return e.handleAuth(p)
		}
	}
	return nil, nil, violationf("%s before CONNACK", pkt.Type())
}

func (e *Engine) handleConnack(p *ConnackPacket) ([]Packet, []Event, error) {
	if !p.Accepted(e.version) {
		e.sess.phase = PhaseDisconnected
		e.sess.keepAlive = nil
		reason := p.FailureReason(e.version)
		e.log.Infof("mqtt: connection refused client_id=%q reason=%s", e.sess.clientID, reason)
		return nil, []Event{ConnectionLost{ReasonCode: reason}}, nil
	}

	e.sess.phase = PhaseConnected

	if !p.SessionPresent && e.sess.outbound.count() > 0 {
		// The server forgot us; the old exchanges can never complete.
		e.sess.reset()
	}

	keepAlive := e.opts.KeepAlive
	assignedID := ""
	if e.version == Version5 {
		if p.Props.Has(PropServerKeepAlive) {
			keepAlive = p.Props.GetUint16(PropServerKeepAlive)
			e.sess.keepAlive.setInterval(keepAlive)
		}
		if id := p.Props.GetString(PropAssignedClientIdentifier); id != "" {
			assignedID = id
			e.sess.clientID = id
		}

		e.sess.flow = NewFlowController(p.Props.GetUint16(PropReceiveMaximum))
		e.sess.aliases.Reset(p.Props.GetUint16(PropTopicAliasMaximum), e.opts.TopicAliasMaximum)

		if p.Props.Has(PropMaximumQoS) {
			e.sess.serverMaxQoS = p.Props.GetByte(PropMaximumQoS)
		} else {
			e.sess.serverMaxQoS = 2
		}
		if p.Props.Has(PropRetainAvailable) {
			e.sess.serverRetainAvailable = p.Props.GetByte(PropRetainAvailable) != 0
		} else {
			e.sess.serverRetainAvailable = true
		}
	}

	events := []Event{ConnectionEstablished{
		SessionPresent:   p.SessionPresent,
		AssignedClientID: assignedID,
		KeepAlive:        keepAlive,
	}}

	var out []Packet
	if p.SessionPresent {
		out = e.retransmit()
	}

	e.log.Infof("mqtt: connected client_id=%q session_present=%v", e.sess.clientID, p.SessionPresent)
	return e.send(out...), events, nil
}

// retransmit replays the in-flight QoS exchanges in their original send
// order, with DUP set on PUBLISH packets.
func (e *Engine) retransmit() []Packet {
	var out []Packet
	for _, ex := range e.sess.outbound.inFlight() {
		switch ex.state {
		case StateAwaitingPuback, StateAwaitingPubrec:
			pub := ex.publish
			pub.DUP = true
			out = append(out, pub)
		case StateAwaitingPubcomp:
			out = append(out, &PubrelPacket{PacketID: ex.packetID})
		}
		e.metrics.Retransmission()
	}
	return out
}

func (e *Engine) handleAuth(p *AuthPacket) ([]Packet, []Event, error) {
	if e.version != Version5 {
		return nil, nil, unsupported("AUTH packet", e.version)
	}
	if p.ReasonCode != ReasonContinueAuth {
		return nil, nil, violationf("unexpected AUTH reason %s", p.ReasonCode)
	}
	if e.opts.Authenticator == nil {
		return nil, nil, violationf("AUTH without enhanced authentication in progress")
	}

	data, err := e.opts.Authenticator.Continue(p.AuthData())
	if err != nil {
		return nil, nil, err
	}

	resp := &AuthPacket{ReasonCode: ReasonContinueAuth}
	resp.Props.Set(PropAuthenticationMethod, e.opts.Authenticator.Method())
	if len(data) > 0 {
		resp.Props.Set(PropAuthenticationData, data)
	}

	events := []Event{AuthContinue{
		ReasonCode: p.ReasonCode,
		Method:     p.AuthMethod(),
		Data:       p.AuthData(),
	}}

	return e.send(resp), events, nil
}

// deliverConnected dispatches packets in the established phase.
func (e *Engine) deliverConnected(pkt Packet) ([]Packet, []Event, error) {
	switch p := pkt.(type) {
	case *PublishPacket:
		return e.handlePublish(p)
	case *PubackPacket:
		return e.handlePuback(p)
	case *PubrecPacket:
		return e.handlePubrec(p)
	case *PubrelPacket:
		return e.handlePubrel(p)
	case *PubcompPacket:
		return e.handlePubcomp(p)
	case *SubackPacket:
		return e.handleSuback(p)
	case *UnsubackPacket:
		return e.handleUnsuback(p)
	case *PingrespPacket:
		e.sess.keepAlive.pongReceived(e.now())
		return nil, nil, nil
	case *PingreqPacket:
		return e.send(&PingrespPacket{}), nil, nil
	case *DisconnectPacket:
		e.sess.phase = PhaseDisconnected
		e.sess.keepAlive = nil
		e.log.Infof("mqtt: server disconnect client_id=%q reason=%s", e.sess.clientID, p.ReasonCode)
		return nil, []Event{ConnectionLost{ReasonCode: p.ReasonCode}}, nil
	case *AuthPacket:
		return e.handleAuth(p)
	default:
		return nil, nil, violationf("unexpected %s packet", pkt.Type())
	}
}

// handlePublish runs the receiver side of the QoS state machines.
func (e *Engine) handlePublish(p *PublishPacket) ([]Packet, []Event, error) {
	msg := p.ToMessage()

	if e.version == Version5 && p.Props.Has(PropTopicAlias) {
		topic, err := e.sess.aliases.Resolve(p.Props.GetUint16(PropTopicAlias), p.Topic)
		if err != nil {
			return nil, nil, err
		}
		msg.Topic = topic
	}

	switch p.QoS {
	case 0:
		e.metrics.MessageDelivered()
		return nil, []Event{MessageDelivered{Message: msg.Clone()}}, nil

	case 1:
		ack := &PubackPacket{PacketID: p.PacketID}
		if e.sess.inbound.seenQoS1(p.PacketID, p.DUP) {
			// Duplicate retransmission: acknowledge again, deliver once.
			return e.send(ack), nil, nil
		}
		e.metrics.MessageDelivered()
		return e.send(ack), []Event{MessageDelivered{Message: msg.Clone()}}, nil

	case 2:
		// The message outlives this call, so the engine takes an owned
		// copy before the decode buffer is reused.
		e.sess.inbound.receiveQoS2(p.PacketID, msg.Clone())
		return e.send(&PubrecPacket{PacketID: p.PacketID}), nil, nil

	default:
		return nil, nil, ErrInvalidQoS
	}
}

func (e *Engine) handlePuback(p *PubackPacket) ([]Packet, []Event, error) {
	ex, ok := e.sess.outbound.get(p.PacketID)
	if !ok || ex.kind != ExchangePublishQoS1 {
		return nil, nil, violationf("PUBACK for unknown packet ID %d", p.PacketID)
	}

	e.completePublish(ex)
	return nil, []Event{PublishAcked{PacketID: p.PacketID, ReasonCode: p.ReasonCode}}, nil
}

func (e *Engine) handlePubrec(p *PubrecPacket) ([]Packet, []Event, error) {
	ex, ok := e.sess.outbound.get(p.PacketID)
	if !ok || ex.kind != ExchangePublishQoS2 {
		return nil, nil, violationf("PUBREC for unknown packet ID %d", p.PacketID)
	}

	if e.version == Version5 && p.ReasonCode.IsError() {
		// The server rejected the publish; the exchange ends here.
		e.completePublish(ex)
		return nil, []Event{PublishAcked{PacketID: p.PacketID, ReasonCode: p.ReasonCode}}, nil
	}

	ex.state = StateAwaitingPubcomp
	ex.publish = nil
	return e.send(&PubrelPacket{PacketID: p.PacketID}), nil, nil
}

func (e *Engine) handlePubrel(p *PubrelPacket) ([]Packet, []Event, error) {
	msg, known := e.sess.inbound.releaseQoS2(p.PacketID)
	if !known {
		comp := &PubcompPacket{PacketID: p.PacketID}
		if e.version == Version5 {
			comp.ReasonCode = ReasonPacketIDNotFound
		}
		return e.send(comp), nil, nil
	}

	out := e.send(&PubcompPacket{PacketID: p.PacketID})
	if msg == nil {
		// PUBREL retransmission after completion: re-ack only.
		return out, nil, nil
	}

	e.metrics.MessageDelivered()
	return out, []Event{MessageDelivered{Message: msg}}, nil
}

func (e *Engine) handlePubcomp(p *PubcompPacket) ([]Packet, []Event, error) {
	ex, ok := e.sess.outbound.get(p.PacketID)
	if !ok || ex.kind != ExchangePublishQoS2 || ex.state != StateAwaitingPubcomp {
		return nil, nil, violationf("PUBCOMP for unknown packet ID %d", p.PacketID)
	}

	e.completePublish(ex)
	return nil, []Event{PublishAcked{PacketID: p.PacketID, ReasonCode: p.ReasonCode}}, nil
}

// completePublish releases everything an outbound publish exchange held:
// the tracker entry, the packet identifier and the flow-control slot.
func (e *Engine) completePublish(ex *outboundExchange) {
	e.sess.outbound.release(ex.packetID)
	_ = e.sess.pids.Release(ex.packetID)
	e.sess.flow.Release()
	e.metrics.PublishCompleted()
}

func (e *Engine) handleSuback(p *SubackPacket) ([]Packet, []Event, error) {
	ex, ok := e.sess.outbound.get(p.PacketID)
	if !ok || ex.kind != ExchangeSubscribe {
		return nil, nil, violationf("SUBACK for unknown packet ID %d", p.PacketID)
	}
	if len(p.ReasonCodes) != len(ex.subscribe.Subscriptions) {
		return nil, nil, violationf("SUBACK carries %d reason codes for %d filters",
			len(p.ReasonCodes), len(ex.subscribe.Subscriptions))
	}

	e.sess.outbound.release(ex.packetID)
	_ = e.sess.pids.Release(ex.packetID)

	return nil, []Event{SubscribeAcked{PacketID: p.PacketID, ReasonCodes: p.ReasonCodes}}, nil
}

func (e *Engine) handleUnsuback(p *UnsubackPacket) ([]Packet, []Event, error) {
	ex, ok := e.sess.outbound.get(p.PacketID)
	if !ok || ex.kind != ExchangeUnsubscribe {
		return nil, nil, violationf("UNSUBACK for unknown packet ID %d", p.PacketID)
	}
	if e.version == Version5 && len(p.ReasonCodes) != len(ex.unsubscribe.TopicFilters) {
		return nil, nil, violationf("UNSUBACK carries %d reason codes for %d filters",
			len(p.ReasonCodes), len(ex.unsubscribe.TopicFilters))
	}

	e.sess.outbound.release(ex.packetID)
	_ = e.sess.pids.Release(ex.packetID)

	return nil, []Event{UnsubscribeAcked{PacketID: p.PacketID, ReasonCodes: p.ReasonCodes}}, nil
}
