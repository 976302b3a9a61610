package mqtt

import "io"

// DisconnectPacket represents an MQTT DISCONNECT packet. In v3.1.1 it has
// no body; v5 adds an optional reason code and properties, where an empty
// body is shorthand for normal disconnection.
type DisconnectPacket struct {
	// ReasonCode is the disconnect reason (v5 only).
	ReasonCode ReasonCode

	// Props contains the DISCONNECT properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *DisconnectPacket) Type() PacketType { return PacketDISCONNECT }

// Properties returns a pointer to the packet's properties.
func (p *DisconnectPacket) Properties() *Properties { return &p.Props }

// Encode writes the packet to the writer.
func (p *DisconnectPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}

	if version != Version5 || (p.ReasonCode == ReasonSuccess && p.Props.Len() == 0) {
		header := FixedHeader{PacketType: PacketDISCONNECT}
		return header.encode(w)
	}

	buf := getBuffer()
	defer putBuffer(buf)

	buf.WriteByte(byte(p.ReasonCode))
	if p.Props.Len() > 0 {
		if _, err := p.Props.Encode(buf); err != nil {
			return 0, err
		}
	}

	return writeWithHeader(w, PacketDISCONNECT, 0x00, buf)
}

// Decode reads the packet body.
func (p *DisconnectPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketDISCONNECT {
		return ErrInvalidPacketType
	}

	if version != Version5 {
		if len(body) != 0 {
			return malformedf("v3.1.1 DISCONNECT carries no payload")
		}
		return nil
	}

	r := newReader(body)
	p.ReasonCode = ReasonSuccess

	if r.remaining() > 0 {
		code, err := r.readByte()
		if err != nil {
			return err
		}
		p.ReasonCode = ReasonCode(code)

		if r.remaining() > 0 {
			if err := p.Props.decode(r); err != nil {
				return err
			}
		}
	}

	return r.expectEOF()
}

// Validate validates the packet contents.
func (p *DisconnectPacket) Validate(version ProtocolVersion) error {
	if version != Version5 {
		if p.ReasonCode != ReasonSuccess {
			return unsupported("DISCONNECT reason code", version)
		}
		if p.Props.Len() > 0 {
			return unsupported("DISCONNECT properties", version)
		}
	}
	return nil
}
