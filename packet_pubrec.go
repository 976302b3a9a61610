//nolint:dupl // the four QoS acknowledgement types share a shape by specification
package mqtt

import "io"

// PubrecPacket represents an MQTT PUBREC packet, the first QoS 2
// acknowledgement step.
type PubrecPacket struct {
	PacketID   uint16
	ReasonCode ReasonCode
	Props      Properties
}

// Type returns the packet type.
func (p *PubrecPacket) Type() PacketType { return PacketPUBREC }

// Properties returns a pointer to the packet's properties.
func (p *PubrecPacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *PubrecPacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *PubrecPacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *PubrecPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}
	return encodeAck(w, PacketPUBREC, 0x00, &ackPacket{
		PacketID:   p.PacketID,
		ReasonCode: p.ReasonCode,
		Props:      p.Props,
	}, version)
}

// Decode reads the packet body.
func (p *PubrecPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketPUBREC {
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
func (p *PubrecPacket) Validate(version ProtocolVersion) error {
	if version == Version5 && !p.ReasonCode.ValidForPUBACK() {
		return ErrInvalidReasonCode
	}
	ack := ackPacket{PacketID: p.PacketID, ReasonCode: p.ReasonCode, Props: p.Props}
	return ack.validate(PacketPUBREC, version)
}
