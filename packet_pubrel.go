//nolint:dupl // the four QoS acknowledgement types share a shape by specification
package mqtt

import "io"

// PubrelPacket represents an MQTT PUBREL packet, the second QoS 2
// acknowledgement step. Its fixed header flags are 0x02 by specification.
type PubrelPacket struct {
	PacketID   uint16
	ReasonCode ReasonCode
	Props      Properties
}

// Type returns the packet type.
func (p *PubrelPacket) Type() PacketType { return PacketPUBREL }

// Properties returns a pointer to the packet's properties.
func (p *PubrelPacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *PubrelPacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *PubrelPacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *PubrelPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}
	return encodeAck(w, PacketPUBREL, 0x02, &ackPacket{
		PacketID:   p.PacketID,
		ReasonCode: p.ReasonCode,
		Props:      p.Props,
	}, version)
}

// Decode reads the packet body.
func (p *PubrelPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketPUBREL {
		return ErrInvalidPacketType
	}
	var ack ackPacket
	err := decodeAck(body, header, &ack, version)
	p.PacketID = ack.PacketID
	p.ReasonCode = ack.ReasonCode
	p.Props = ack.Props
	return err
}

// Validate validates the packet contents.
func (p *PubrelPacket) Validate(version ProtocolVersion) error {
	if version == Version5 && !p.ReasonCode.ValidForPUBREL() {
		return ErrInvalidReasonCode
	}
	ack := ackPacket{PacketID: p.PacketID, ReasonCode: p.ReasonCode, Props: p.Props}
	return ack.validate(PacketPUBREL, version)
}
