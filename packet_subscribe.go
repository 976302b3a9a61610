package mqtt

import "io"

// SUBSCRIBE packet errors.
var (
	ErrNoTopicFilters         = &ProtocolViolationError{Detail: "subscription list cannot be empty"}
	ErrInvalidSubscribeOption = &MalformedError{Detail: "invalid subscription options"}
	ErrInvalidRetainHandling  = &MalformedError{Detail: "invalid retain handling value"}
)

// Subscription represents a single subscription request. The NoLocal,
// RetainAsPublished and RetainHandling options exist only in v5; under
// v3.1.1 the options byte carries the QoS alone.
type Subscription struct {
	// TopicFilter is the topic filter to subscribe to.
	TopicFilter string

	// QoS is the maximum QoS level for this subscription.
	QoS byte

	// NoLocal prevents messages published by this client from being
	// delivered back to it (v5 only).
	NoLocal bool

	// RetainAsPublished keeps the RETAIN flag as published (v5 only).
	RetainAsPublished bool

	// RetainHandling controls delivery of retained messages: 0 send,
	// 1 send if new subscription, 2 do not send (v5 only).
	RetainHandling byte
}

// options returns the subscription options byte.
func (s *Subscription) options(version ProtocolVersion) byte {
	opts := s.QoS & 0x03
	if version != Version5 {
		return opts
	}
	if s.NoLocal {
		opts |= 0x04
	}
	if s.RetainAsPublished {
		opts |= 0x08
	}
	opts |= (s.RetainHandling & 0x03) << 4
	return opts
}

// setOptions parses the subscription options byte. Reserved bits are
// fatal in both versions.
func (s *Subscription) setOptions(opts byte, version ProtocolVersion) error {
	s.QoS = opts & 0x03
	if s.QoS > 2 {
		return ErrInvalidSubscribeOption
	}

	if version != Version5 {
		if opts&0xFC != 0 {
			return ErrInvalidSubscribeOption
		}
		return nil
	}

	if opts&0xC0 != 0 {
		return ErrInvalidSubscribeOption
	}

	s.NoLocal = opts&0x04 != 0
	s.RetainAsPublished = opts&0x08 != 0
	s.RetainHandling = (opts >> 4) & 0x03
	if s.RetainHandling > 2 {
		return ErrInvalidRetainHandling
	}

	return nil
}

// SubscribePacket represents an MQTT SUBSCRIBE packet.
type SubscribePacket struct {
	// PacketID is the packet identifier.
	PacketID uint16

	// Subscriptions is the non-empty list of subscription requests.
	Subscriptions []Subscription

	// Props contains the SUBSCRIBE properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *SubscribePacket) Type() PacketType { return PacketSUBSCRIBE }

// Properties returns a pointer to the packet's properties.
func (p *SubscribePacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *SubscribePacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *SubscribePacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *SubscribePacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := encodeUint16(buf, p.PacketID); err != nil {
		return 0, err
	}

	if version == Version5 {
		if _, err := p.Props.Encode(buf); err != nil {
			return 0, err
		}
	}

	for i := range p.Subscriptions {
		sub := &p.Subscriptions[i]
		if _, err := encodeString(buf, sub.TopicFilter); err != nil {
			return 0, err
		}
		buf.WriteByte(sub.options(version))
	}

	return writeWithHeader(w, PacketSUBSCRIBE, 0x02, buf)
}

// Decode reads the packet body.
func (p *SubscribePacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketSUBSCRIBE {
		return ErrInvalidPacketType
	}

	r := newReader(body)

	var err error
	if p.PacketID, err = r.readUint16(); err != nil {
		return err
	}
	if p.PacketID == 0 {
		return ErrPacketIDZero
	}

	if version == Version5 {
		if err := p.Props.decode(r); err != nil {
			return err
		}
	}

	for r.remaining() > 0 {
		var sub Subscription
		if sub.TopicFilter, err = r.readString(); err != nil {
			return err
		}

		opts, err := r.readByte()
		if err != nil {
			return err
		}
		if err := sub.setOptions(opts, version); err != nil {
			return err
		}

		p.Subscriptions = append(p.Subscriptions, sub)
	}

	if len(p.Subscriptions) == 0 {
		return ErrNoTopicFilters
	}

	return nil
}

// Validate validates the packet contents.
func (p *SubscribePacket) Validate(version ProtocolVersion) error {
	if p.PacketID == 0 {
		return ErrPacketIDZero
	}

	if len(p.Subscriptions) == 0 {
		return ErrNoTopicFilters
	}

	for i := range p.Subscriptions {
		sub := &p.Subscriptions[i]
		if err := ValidateTopicFilter(sub.TopicFilter); err != nil {
			return err
		}
		if sub.QoS > 2 {
			return ErrInvalidSubscribeOption
		}
		if sub.RetainHandling > 2 {
			return ErrInvalidRetainHandling
		}
		if version != Version5 && (sub.NoLocal || sub.RetainAsPublished || sub.RetainHandling != 0) {
			return unsupported("subscription options", version)
		}
	}

	if version != Version5 && p.Props.Len() > 0 {
		return unsupported("SUBSCRIBE properties", version)
	}

	return nil
}
