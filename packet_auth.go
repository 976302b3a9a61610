package mqtt

import "io"

// AUTH packet errors.
var ErrInvalidAuthReason = &MalformedError{Detail: "invalid AUTH reason code"}

// AuthPacket represents an MQTT v5.0 AUTH packet, used for enhanced
// authentication exchanges. It does not exist in v3.1.1.
type AuthPacket struct {
	// ReasonCode is Success, ContinueAuth or ReAuth. An empty body is
	// shorthand for Success.
	ReasonCode ReasonCode

	// Props contains the AUTH properties (authentication method and
	// data).
	Props Properties
}

// Type returns the packet type.
func (p *AuthPacket) Type() PacketType { return PacketAUTH }

// Properties returns a pointer to the packet's properties.
func (p *AuthPacket) Properties() *Properties { return &p.Props }

// Encode writes the packet to the writer.
func (p *AuthPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}

	if p.ReasonCode == ReasonSuccess && p.Props.Len() == 0 {
		header := FixedHeader{PacketType: PacketAUTH}
		return header.encode(w)
	}

	buf := getBuffer()
	defer putBuffer(buf)

	buf.WriteByte(byte(p.ReasonCode))
	if _, err := p.Props.Encode(buf); err != nil {
		return 0, err
	}

	return writeWithHeader(w, PacketAUTH, 0x00, buf)
}

// Decode reads the packet body.
func (p *AuthPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketAUTH {
		return ErrInvalidPacketType
	}
	if version != Version5 {
		return unsupported("AUTH packet", version)
	}

	r := newReader(body)
	p.ReasonCode = ReasonSuccess

	if r.remaining() > 0 {
		code, err := r.readByte()
		if err != nil {
			return err
		}
		p.ReasonCode = ReasonCode(code)
		if !p.ReasonCode.ValidForAUTH() {
			return ErrInvalidAuthReason
		}

		if err := p.Props.decode(r); err != nil {
			return err
		}
	}

	return r.expectEOF()
}

// Validate validates the packet contents.
func (p *AuthPacket) Validate(version ProtocolVersion) error {
	if version != Version5 {
		return unsupported("AUTH packet", version)
	}
	if !p.ReasonCode.ValidForAUTH() {
		return ErrInvalidAuthReason
	}
	return nil
}

// AuthMethod returns the authentication method property.
func (p *AuthPacket) AuthMethod() string {
	return p.Props.GetString(PropAuthenticationMethod)
}

// AuthData returns the authentication data property. Aliases the decode
// buffer.
func (p *AuthPacket) AuthData() []byte {
	return p.Props.GetBinary(PropAuthenticationData)
}
