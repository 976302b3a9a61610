//nolint:dupl // the four QoS acknowledgement types share a shape by specification
package mqtt

import "io"

// PubackPacket represents an MQTT PUBACK packet, the QoS 1 acknowledgement.
type PubackPacket struct {
	PacketID   uint16
	ReasonCode ReasonCode
	Props      Properties
}

// Type returns the packet type.
func (p *PubackPacket) Type() PacketType { return PacketPUBACK }

// Properties returns a pointer to the packet's properties.
func (p *PubackPacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *PubackPacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *PubackPacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *PubackPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}
	return encodeAck(w, PacketPUBACK, 0x00, &ackPacket{
		PacketID:   p.PacketID,
		ReasonCode: p.ReasonCode,
		Props:      p.Props,
	}, version)
}

// Decode reads the packet body.
func (p *PubackPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketPUBACK {
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
func (p *PubackPacket) Validate(version ProtocolVersion) error {
	if version == Version5 && !p.ReasonCode.ValidForPUBACK() {
		return ErrInvalidReasonCode
	}
	ack := ackPacket{PacketID: p.PacketID, ReasonCode: p.ReasonCode, Props: p.Props}
	return ack.validate(PacketPUBACK, version)
}
