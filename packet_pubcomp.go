//nolint:dupl // the four QoS acknowledgement types share a shape by specification
package mqtt

import "io"

// PubcompPacket represents an MQTT PUBCOMP packet, the final QoS 2
// acknowledgement step.
type PubcompPacket struct {
	PacketID   uint16
	ReasonCode ReasonCode
	Props      Properties
}

// Type returns the packet type.
func (p *PubcompPacket) Type() PacketType { return PacketPUBCOMP }

// Properties returns a pointer to the packet's properties.
func (p *PubcompPacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *PubcompPacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *PubcompPacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *PubcompPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}
	return encodeAck(w, PacketPUBCOMP, 0x00, &ackPacket{
		PacketID:   p.PacketID,
		ReasonCode: p.ReasonCode,
		Props:      p.Props,
	}, version)
}

// Decode reads the packet body.
func (p *PubcompPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketPUBCOMP {
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
func (p *PubcompPacket) Validate(version ProtocolVersion) error {
	if version == Version5 && !p.ReasonCode.ValidForPUBREL() {
		return ErrInvalidReasonCode
	}
	ack := ackPacket{PacketID: p.PacketID, ReasonCode: p.ReasonCode, Props: p.Props}
	return ack.validate(PacketPUBCOMP, version)
}
