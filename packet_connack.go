package mqtt

import "io"

// CONNACK packet errors.
var (
	ErrInvalidAckFlags         = &MalformedError{Detail: "invalid connect acknowledge flags"}
	ErrInvalidConnectReason    = &MalformedError{Detail: "invalid CONNACK reason code"}
	ErrSessionPresentOnFailure = &ProtocolViolationError{Detail: "session present with non-zero reason code"}
)

// ConnackPacket represents an MQTT CONNACK packet. v5 carries a reason
// code and properties; v3.1.1 carries a connect return code instead.
type ConnackPacket struct {
	// SessionPresent indicates the server resumed an existing session.
	SessionPresent bool

	// ReasonCode is the v5 connect reason code.
	ReasonCode ReasonCode

	// ReturnCode is the v3.1.1 connect return code.
	ReturnCode ConnectReturnCode

	// Props contains the CONNACK properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *ConnackPacket) Type() PacketType {
	return PacketCONNACK
}

// Properties returns a pointer to the packet's properties.
func (p *ConnackPacket) Properties() *Properties {
	return &p.Props
}

// Accepted reports whether the connection attempt succeeded under the
// given version.
func (p *ConnackPacket) Accepted(version ProtocolVersion) bool {
	if version == Version5 {
		return p.ReasonCode == ReasonSuccess
	}
	return p.ReturnCode == ConnectAccepted
}

// FailureReason returns the failure as a v5 reason code regardless of
// version, so callers see a single vocabulary.
func (p *ConnackPacket) FailureReason(version ProtocolVersion) ReasonCode {
	if version == Version5 {
		return p.ReasonCode
	}
	return p.ReturnCode.ReasonCode()
}

// Encode writes the packet to the writer.
func (p *ConnackPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	var ackFlags byte
	if p.SessionPresent {
		ackFlags = 0x01
	}
	buf.WriteByte(ackFlags)

	if version == Version5 {
		buf.WriteByte(byte(p.ReasonCode))
		if _, err := p.Props.Encode(buf); err != nil {
			return 0, err
		}
	} else {
		buf.WriteByte(byte(p.ReturnCode))
	}

	return writeWithHeader(w, PacketCONNACK, 0x00, buf)
}

// Decode reads the packet body.
func (p *ConnackPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketCONNACK {
		return ErrInvalidPacketType
	}

	r := newReader(body)

	ackFlags, err := r.readByte()
	if err != nil {
		return err
	}
	if ackFlags&0xFE != 0 {
		return ErrInvalidAckFlags
	}
	p.SessionPresent = ackFlags&0x01 != 0

	code, err := r.readByte()
	if err != nil {
		return err
	}

	if version == Version5 {
		p.ReasonCode = ReasonCode(code)
		if err := p.Props.decode(r); err != nil {
			return err
		}
	} else {
		if code > byte(ConnectRefusedNotAuthorized) {
			return ErrInvalidConnectReason
		}
		p.ReturnCode = ConnectReturnCode(code)
	}

	return r.expectEOF()
}

// Validate validates the packet contents.
func (p *ConnackPacket) Validate(version ProtocolVersion) error {
	if version == Version5 {
		if p.SessionPresent && p.ReasonCode != ReasonSuccess {
			return ErrSessionPresentOnFailure
		}
		return nil
	}

	if p.Props.Len() > 0 {
		return unsupported("CONNACK properties", version)
	}
	if p.ReturnCode > ConnectRefusedNotAuthorized {
		return ErrInvalidConnectReason
	}
	if p.SessionPresent && p.ReturnCode != ConnectAccepted {
		return ErrSessionPresentOnFailure
	}
	return nil
}
