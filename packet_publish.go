package mqtt

import "io"

// PUBLISH packet errors.
var (
	ErrTopicNameEmpty   = &ProtocolViolationError{Detail: "topic name cannot be empty"}
	ErrInvalidQoS       = &MalformedError{Detail: "invalid QoS level"}
	ErrPacketIDRequired = &ProtocolViolationError{Detail: "packet identifier required for QoS > 0"}
	ErrPacketIDZero     = &ProtocolViolationError{Detail: "packet identifier must be non-zero"}
)

// PublishPacket represents an MQTT PUBLISH packet.
type PublishPacket struct {
	// Topic is the topic name.
	Topic string

	// Payload is the application message. After a decode this aliases
	// the decode buffer; Clone before reusing the buffer.
	Payload []byte

	// QoS is the Quality of Service level (0, 1, or 2).
	QoS byte

	// Retain indicates if the message should be retained.
	Retain bool

	// DUP indicates if this is a retransmission.
	DUP bool

	// PacketID is the packet identifier (only for QoS > 0).
	PacketID uint16

	// Props contains the PUBLISH properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *PublishPacket) Type() PacketType {
	return PacketPUBLISH
}

// Properties returns a pointer to the packet's properties.
func (p *PublishPacket) Properties() *Properties {
	return &p.Props
}

// GetPacketID returns the packet identifier.
func (p *PublishPacket) GetPacketID() uint16 {
	return p.PacketID
}

// SetPacketID sets the packet identifier.
func (p *PublishPacket) SetPacketID(id uint16) {
	p.PacketID = id
}

// Clone creates a deep copy whose payload does not alias any decode
// buffer.
func (p *PublishPacket) Clone() *PublishPacket {
	clone := *p
	if p.Payload != nil {
		clone.Payload = make([]byte, len(p.Payload))
		copy(clone.Payload, p.Payload)
	}
	return &clone
}

// flags returns the fixed header flags.
func (p *PublishPacket) flags() byte {
	var flags byte
	if p.DUP {
		flags |= 0x08
	}
	flags |= (p.QoS & 0x03) << 1
	if p.Retain {
		flags |= 0x01
	}
	return flags
}

// Encode writes the packet to the writer.
func (p *PublishPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := encodeString(buf, p.Topic); err != nil {
		return 0, err
	}

	if p.QoS > 0 {
		if _, err := encodeUint16(buf, p.PacketID); err != nil {
			return 0, err
		}
	}

	if version == Version5 {
		if _, err := p.Props.Encode(buf); err != nil {
			return 0, err
		}
	}

	buf.Write(p.Payload)

	return writeWithHeader(w, PacketPUBLISH, p.flags(), buf)
}

// Decode reads the packet body. The payload is the unconsumed remainder
// of the body and is returned as a subslice, not a copy.
func (p *PublishPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketPUBLISH {
		return ErrInvalidPacketType
	}

	p.DUP = header.DUP()
	p.QoS = header.QoS()
	p.Retain = header.Retain()

	if p.QoS > 2 {
		return ErrInvalidQoS
	}

	r := newReader(body)

	var err error
	if p.Topic, err = r.readString(); err != nil {
		return err
	}

	if p.QoS > 0 {
		if p.PacketID, err = r.readUint16(); err != nil {
			return err
		}
		if p.PacketID == 0 {
			return ErrPacketIDZero
		}
	}

	if version == Version5 {
		if err := p.Props.decode(r); err != nil {
			return err
		}
	}

	p.Payload = r.rest()
	return nil
}

// Validate validates the packet contents.
func (p *PublishPacket) Validate(version ProtocolVersion) error {
	if p.QoS > 2 {
		return ErrInvalidQoS
	}

	if p.QoS == 0 && p.DUP {
		return ErrInvalidPacketFlags
	}

	if p.QoS > 0 && p.PacketID == 0 {
		return ErrPacketIDRequired
	}

	if version != Version5 && p.Props.Len() > 0 {
		return unsupported("PUBLISH properties", version)
	}

	// A v5 topic alias stands in for the topic name; without one the
	// topic is mandatory.
	if p.Topic == "" {
		if !(version == Version5 && p.Props.Has(PropTopicAlias)) {
			return ErrTopicNameEmpty
		}
	} else if err := ValidateTopicName(p.Topic); err != nil {
		return err
	}

	return nil
}

// ToMessage converts the PUBLISH packet to a Message.
func (p *PublishPacket) ToMessage() *Message {
	m := &Message{
		Topic:   p.Topic,
		Payload: p.Payload,
		QoS:     p.QoS,
		Retain:  p.Retain,
	}
	m.FromProperties(&p.Props)
	return m
}

// FromMessage populates the PUBLISH packet from a Message.
func (p *PublishPacket) FromMessage(m *Message) {
	p.Topic = m.Topic
	p.Payload = m.Payload
	p.QoS = m.QoS
	p.Retain = m.Retain
	p.Props = m.ToProperties()
}
