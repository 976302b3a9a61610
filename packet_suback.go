package mqtt

import "io"

// SUBACK/UNSUBACK packet errors.
var (
	ErrNoReasonCodes        = &ProtocolViolationError{Detail: "acknowledgement must carry one reason code per filter"}
	ErrInvalidSubackCode    = &MalformedError{Detail: "invalid SUBACK reason code"}
	ErrInvalidUnsubackCode  = &MalformedError{Detail: "invalid UNSUBACK reason code"}
	ErrUnsubackBodyNotEmpty = &MalformedError{Detail: "v3.1.1 UNSUBACK carries no payload"}
)

// subackFailure is the only failure value a v3.1.1 SUBACK payload may
// carry.
const subackFailure = 0x80

// SubackPacket represents an MQTT SUBACK packet. The payload carries one
// reason code per requested filter, in request order.
type SubackPacket struct {
	// PacketID is the packet identifier.
	PacketID uint16

	// ReasonCodes holds one entry per subscription request. In v3.1.1
	// these are the granted QoS values or 0x80 for failure.
	ReasonCodes []ReasonCode

	// Props contains the SUBACK properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *SubackPacket) Type() PacketType { return PacketSUBACK }

// Properties returns a pointer to the packet's properties.
func (p *SubackPacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *SubackPacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *SubackPacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *SubackPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
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

	for _, code := range p.ReasonCodes {
		buf.WriteByte(byte(code))
	}

	return writeWithHeader(w, PacketSUBACK, 0x00, buf)
}

// Decode reads the packet body.
func (p *SubackPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketSUBACK {
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
		code, err := r.readByte()
		if err != nil {
			return err
		}
		if err := validateSubackCode(code, version); err != nil {
			return err
		}
		p.ReasonCodes = append(p.ReasonCodes, ReasonCode(code))
	}

	if len(p.ReasonCodes) == 0 {
		return ErrNoReasonCodes
	}

	return nil
}

func validateSubackCode(code byte, version ProtocolVersion) error {
	if version == Version5 {
		if !ReasonCode(code).ValidForSUBACK() {
			return ErrInvalidSubackCode
		}
		return nil
	}
	if code > 2 && code != subackFailure {
		return ErrInvalidSubackCode
	}
	return nil
}

// Validate validates the packet contents.
func (p *SubackPacket) Validate(version ProtocolVersion) error {
	if p.PacketID == 0 {
		return ErrPacketIDZero
	}

	if len(p.ReasonCodes) == 0 {
		return ErrNoReasonCodes
	}

	for _, code := range p.ReasonCodes {
		if err := validateSubackCode(byte(code), version); err != nil {
			return err
		}
	}

	if version != Version5 && p.Props.Len() > 0 {
		return unsupported("SUBACK properties", version)
	}

	return nil
}

// UnsubackPacket represents an MQTT UNSUBACK packet. In v3.1.1 it is a
// bare packet identifier; v5 adds per-filter reason codes and properties.
type UnsubackPacket struct {
	// PacketID is the packet identifier.
	PacketID uint16

	// ReasonCodes holds one entry per unsubscribe request (v5 only).
	ReasonCodes []ReasonCode

	// Props contains the UNSUBACK properties (v5 only).
	Props Properties
}

// Type returns the packet type.
func (p *UnsubackPacket) Type() PacketType { return PacketUNSUBACK }

// Properties returns a pointer to the packet's properties.
func (p *UnsubackPacket) Properties() *Properties { return &p.Props }

// GetPacketID returns the packet identifier.
func (p *UnsubackPacket) GetPacketID() uint16 { return p.PacketID }

// SetPacketID sets the packet identifier.
func (p *UnsubackPacket) SetPacketID(id uint16) { p.PacketID = id }

// Encode writes the packet to the writer.
func (p *UnsubackPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
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
		for _, code := range p.ReasonCodes {
			buf.WriteByte(byte(code))
		}
	}

	return writeWithHeader(w, PacketUNSUBACK, 0x00, buf)
}

// Decode reads the packet body.
func (p *UnsubackPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketUNSUBACK {
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

	if version != Version5 {
		return r.expectEOF()
	}

	if err := p.Props.decode(r); err != nil {
		return err
	}

	for r.remaining() > 0 {
		code, err := r.readByte()
		if err != nil {
			return err
		}
		if !ReasonCode(code).ValidForUNSUBACK() {
			return ErrInvalidUnsubackCode
		}
		p.ReasonCodes = append(p.ReasonCodes, ReasonCode(code))
	}

	if len(p.ReasonCodes) == 0 {
		return ErrNoReasonCodes
	}

	return nil
}

// Validate validates the packet contents.
func (p *UnsubackPacket) Validate(version ProtocolVersion) error {
	if p.PacketID == 0 {
		return ErrPacketIDZero
	}

	if version != Version5 {
		if len(p.ReasonCodes) > 0 || p.Props.Len() > 0 {
			return ErrUnsubackBodyNotEmpty
		}
		return nil
	}

	if len(p.ReasonCodes) == 0 {
		return ErrNoReasonCodes
	}

	for _, code := range p.ReasonCodes {
		if !code.ValidForUNSUBACK() {
			return ErrInvalidUnsubackCode
		}
	}

	return nil
}
