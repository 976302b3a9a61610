package mqtt

import "io"

// ProtocolVersion identifies the MQTT protocol revision negotiated for a
// connection. It is fixed at CONNECT time and threaded through every codec
// call; the codec itself holds no state between packets.
type ProtocolVersion byte

const (
	// Version311 is MQTT 3.1.1 (protocol level 4).
	Version311 ProtocolVersion = 4
	// Version5 is MQTT 5.0 (protocol level 5).
	Version5 ProtocolVersion = 5
)

// String returns the human-readable protocol revision.
func (v ProtocolVersion) String() string {
	switch v {
	case Version311:
		return "MQTT 3.1.1"
	case Version5:
		return "MQTT 5.0"
	default:
		return "MQTT unknown"
	}
}

// Valid returns true if the version is one this package implements.
func (v ProtocolVersion) Valid() bool {
	return v == Version311 || v == Version5
}

// Packet is the interface that all MQTT control packets implement.
//
// Byte-slice fields of a decoded packet (payloads, binary properties,
// passwords, correlation data) are subslices of the buffer passed to
// Decode. The packet is valid only as long as that buffer is not reused;
// take an owned copy (Clone) before recycling the buffer.
type Packet interface {
	// Type returns the control packet type.
	Type() PacketType

	// Encode writes the full packet, fixed header included, to the
	// writer. Returns the number of bytes written.
	Encode(w io.Writer, version ProtocolVersion) (int, error)

	// Decode parses the packet body. The fixed header has already been
	// decoded and body holds exactly RemainingLength bytes.
	Decode(body []byte, header FixedHeader, version ProtocolVersion) error

	// Validate checks the packet contents against the per-type
	// structural invariants for the given version.
	Validate(version ProtocolVersion) error
}

// PacketWithID is implemented by packets carrying a packet identifier.
type PacketWithID interface {
	Packet

	// GetPacketID returns the packet identifier.
	GetPacketID() uint16

	// SetPacketID sets the packet identifier.
	SetPacketID(id uint16)
}

// Message represents an MQTT application message, the user-facing view of
// a PUBLISH exchange.
type Message struct {
	// Topic is the topic name to publish to or received from.
	Topic string

	// Payload is the application message payload. After a decode this
	// aliases the decode buffer; Clone before reusing the buffer.
	Payload []byte

	// QoS is the Quality of Service level (0, 1, or 2).
	QoS byte

	// Retain indicates if this is a retained message.
	Retain bool

	// PayloadFormat indicates UTF-8 text (1) or unspecified bytes (0).
	// v5 only.
	PayloadFormat byte

	// MessageExpiry is the lifetime of the message in seconds. Zero
	// means no expiry. v5 only.
	MessageExpiry uint32

	// ContentType is the MIME type of the payload. v5 only.
	ContentType string

	// ResponseTopic is the topic for response messages. v5 only.
	ResponseTopic string

	// CorrelationData correlates request/response messages. v5 only.
	CorrelationData []byte

	// UserProperties contains user-defined name-value pairs. v5 only.
	UserProperties []StringPair
}

// Clone creates a deep copy of the message that does not alias any decode
// buffer.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}

	clone := &Message{
		Topic:         m.Topic,
		QoS:           m.QoS,
		Retain:        m.Retain,
		PayloadFormat: m.PayloadFormat,
		MessageExpiry: m.MessageExpiry,
		ContentType:   m.ContentType,
		ResponseTopic: m.ResponseTopic,
	}

	if m.Payload != nil {
		clone.Payload = make([]byte, len(m.Payload))
		copy(clone.Payload, m.Payload)
	}

	if m.CorrelationData != nil {
		clone.CorrelationData = make([]byte, len(m.CorrelationData))
		copy(clone.CorrelationData, m.CorrelationData)
	}

	if m.UserProperties != nil {
		clone.UserProperties = make([]StringPair, len(m.UserProperties))
		copy(clone.UserProperties, m.UserProperties)
	}

	return clone
}

// ToProperties converts the message metadata to MQTT v5 properties, used
// when encoding a PUBLISH packet.
func (m *Message) ToProperties() Properties {
	var p Properties

	if m.PayloadFormat != 0 {
		p.Set(PropPayloadFormatIndicator, m.PayloadFormat)
	}

	if m.MessageExpiry != 0 {
		p.Set(PropMessageExpiryInterval, m.MessageExpiry)
	}

	if m.ContentType != "" {
		p.Set(PropContentType, m.ContentType)
	}

	if m.ResponseTopic != "" {
		p.Set(PropResponseTopic, m.ResponseTopic)
	}

	if len(m.CorrelationData) > 0 {
		p.Set(PropCorrelationData, m.CorrelationData)
	}

	for _, up := range m.UserProperties {
		p.Add(PropUserProperty, up)
	}

	return p
}

// FromProperties populates the message metadata from decoded PUBLISH
// properties.
func (m *Message) FromProperties(p *Properties) {
	if p == nil {
		return
	}

	m.PayloadFormat = p.GetByte(PropPayloadFormatIndicator)
	m.MessageExpiry = p.GetUint32(PropMessageExpiryInterval)
	m.ContentType = p.GetString(PropContentType)
	m.ResponseTopic = p.GetString(PropResponseTopic)
	m.CorrelationData = p.GetBinary(PropCorrelationData)
	m.UserProperties = p.GetAllStringPairs(PropUserProperty)
}
