package mqtt

// Event is an application-visible occurrence produced by an engine
// operation. The concrete types below are the complete set; switch on
// them to react.
//
// Events never perform I/O and never retain engine-internal state;
// messages carried by an event are owned copies, safe to hold after the
// decode buffer that produced them is reused.
type Event interface {
	isEvent()
}

// ConnectionEstablished is emitted when the CONNACK accepts the
// connection attempt.
type ConnectionEstablished struct {
	// SessionPresent is true when the peer resumed a previous session.
	SessionPresent bool

	// AssignedClientID is the server-assigned client identifier, when
	// the connect request left it empty (v5 only).
	AssignedClientID string

	// KeepAlive is the effective keep-alive interval in seconds, after
	// any server override.
	KeepAlive uint16
}

// ConnectionLost is emitted when the session ends for any reason other
// than a locally requested disconnect.
type ConnectionLost struct {
	// ReasonCode carries the peer's stated reason, when one was sent.
	ReasonCode ReasonCode

	// Err carries the local cause, when the session died without a
	// packet from the peer.
	Err error
}

// MessageDelivered is emitted exactly once per inbound application
// message, at the point its QoS contract allows delivery: immediately
// for QoS 0 and 1, at PUBREL for QoS 2.
type MessageDelivered struct {
	Message *Message
}

// PublishAcked is emitted when an outbound QoS 1 or 2 publish completes
// its acknowledgement flow.
type PublishAcked struct {
	PacketID   uint16
	ReasonCode ReasonCode
}

// SubscribeAcked is emitted when a SUBACK answers an outbound
// SUBSCRIBE. ReasonCodes are in request order, one per filter.
type SubscribeAcked struct {
	PacketID    uint16
	ReasonCodes []ReasonCode
}

// UnsubscribeAcked is emitted when an UNSUBACK answers an outbound
// UNSUBSCRIBE. ReasonCodes are empty under v3.1.1.
type UnsubscribeAcked struct {
	PacketID    uint16
	ReasonCodes []ReasonCode
}

// KeepAliveTimeout is emitted when the peer misses the keep-alive
// deadline; the session is dead and the connection must be closed.
type KeepAliveTimeout struct{}

// AuthContinue is emitted for each step of a v5 enhanced authentication
// exchange that needs more rounds.
type AuthContinue struct {
	ReasonCode ReasonCode
	Method     string
	Data       []byte
}

func (ConnectionEstablished) isEvent() {}
func (ConnectionLost) isEvent()        {}
func (MessageDelivered) isEvent()      {}
func (PublishAcked) isEvent()          {}
func (SubscribeAcked) isEvent()        {}
func (UnsubscribeAcked) isEvent()      {}
func (KeepAliveTimeout) isEvent()      {}
func (AuthContinue) isEvent()          {}
