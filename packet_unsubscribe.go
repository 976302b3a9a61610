package mqtt

import "io"

// UnsubscribePacket represents an MQTT UNSUBSCRIBE packet.
type UnsubscribePacket struct {
	// PacketID is the packet identifier.
	PacketID uint16

	// TopicFilters is the non-empty list of filters to remove.
	TopicFilters []string

	// Props contains the UNSUBSCRIBE properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *UnsubscribePacket) Type() PacketType { return PacketUNSUBSCRIBE }

// Properties returns a pointer to the packet's properties.
func (p *UnsubscribePacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *UnsubscribePacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *UnsubscribePacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *UnsubscribePacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
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

	for _, filter := range p.TopicFilters {
		if _, err := encodeString(buf, filter); err != nil {
			return 0, err
		}
	}

	return writeWithHeader(w, PacketUNSUBSCRIBE, 0x02, buf)
}

// Decode reads the packet body.
func (p *UnsubscribePacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketUNSUBSCRIBE {
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
		filter, err := r.readString()
		if err != nil {
			return err
		}
		p.TopicFilters = append(p.TopicFilters, filter)
	}

	if len(p.TopicFilters) == 0 {
		return ErrNoTopicFilters
	}

	return nil
}

// Validate validates the packet contents.
func (p *UnsubscribePacket) Validate(version ProtocolVersion) error {
	if p.PacketID == 0 {
		return ErrPacketIDZero
	}

	if len(p.TopicFilters) == 0 {
		return ErrNoTopicFilters
	}

	for _, filter := range p.TopicFilters {
		if err := ValidateTopicFilter(filter); err != nil {
			return err
		}
	}

	if version != Version5 && p.Props.Len() > 0 {
		return unsupported("UNSUBSCRIBE properties", version)
	}

	return nil
}
