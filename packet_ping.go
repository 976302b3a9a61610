package mqtt

import "io"

// Ping packet errors.
var ErrPingBodyNotEmpty = &MalformedError{Detail: "ping packets carry no payload"}

// PingreqPacket represents an MQTT PINGREQ packet. It has no body.
type PingreqPacket struct{}

// Type returns the packet type.
func (p *PingreqPacket) Type() PacketType { return PacketPINGREQ }

// Encode writes the packet to the writer.
func (p *PingreqPacket) Encode(w io.Writer, _ ProtocolVersion) (int, error) {
	header := FixedHeader{PacketType: PacketPINGREQ}
	return header.encode(w)
}

// Decode reads the packet body, which must be empty.
func (p *PingreqPacket) Decode(body []byte, header FixedHeader, _ ProtocolVersion) error {
	if header.PacketType != PacketPINGREQ {
		return ErrInvalidPacketType
	}
	if len(body) != 0 {
		return ErrPingBodyNotEmpty
	}
	return nil
}

// Validate validates the packet contents.
func (p *PingreqPacket) Validate(_ ProtocolVersion) error { return nil }

// PingrespPacket represents an MQTT PINGRESP packet. It has no body.
type PingrespPacket struct{}

// Type returns the packet type.
func (p *PingrespPacket) Type() PacketType { return PacketPINGRESP }

// Encode writes the packet to the writer.
func (p *PingrespPacket) Encode(w io.Writer, _ ProtocolVersion) (int, error) {
	header := FixedHeader{PacketType: PacketPINGRESP}
	return header.encode(w)
}

// Decode reads the packet body, which must be empty.
func (p *PingrespPacket) Decode(body []byte, header FixedHeader, _ ProtocolVersion) error {
	if header.PacketType != PacketPINGRESP {
		return ErrInvalidPacketType
	}
	if len(body) != 0 {
		return ErrPingBodyNotEmpty
	}
	return nil
}

// Validate validates the packet contents.
func (p *PingrespPacket) Validate(_ ProtocolVersion) error { return nil }
