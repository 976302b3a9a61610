package mqtt

import "io"

// Ack packet errors.
var ErrInvalidReasonCode = &MalformedError{Detail: "invalid reason code for packet type"}

// ackPacket is the shared shape of the simple acknowledgement packets
// (PUBACK, PUBREC, PUBREL, PUBCOMP). In v3.1.1 the body is exactly the
// packet identifier; v5 appends an optional reason code and properties,
// where an absent reason code is shorthand for success.
type ackPacket struct {
	PacketID   uint16
	ReasonCode ReasonCode
	Props      Properties
}

// encodeAck encodes an acknowledgement packet with the given packet type
// and flags.
func encodeAck(w io.Writer, packetType PacketType, flags byte, ack *ackPacket, version ProtocolVersion) (int, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := encodeUint16(buf, ack.PacketID); err != nil {
		return 0, err
	}

	if version == Version5 && (ack.ReasonCode != ReasonSuccess || ack.Props.Len() > 0) {
		buf.WriteByte(byte(ack.ReasonCode))

		if ack.Props.Len() > 0 {
			if _, err := ack.Props.Encode(buf); err != nil {
				return 0, err
			}
		}
	}

	return writeWithHeader(w, packetType, flags, buf)
}

// decodeAck decodes an acknowledgement packet body.
func decodeAck(body []byte, header FixedHeader, ack *ackPacket, version ProtocolVersion) error {
	r := newReader(body)

	var err error
	if ack.PacketID, err = r.readUint16(); err != nil {
		return err
	}
	if ack.PacketID == 0 {
		return ErrPacketIDZero
	}

	ack.ReasonCode = ReasonSuccess

	if version == Version5 && r.remaining() > 0 {
		code, err := r.readByte()
		if err != nil {
			return err
		}
		ack.ReasonCode = ReasonCode(code)

		if r.remaining() > 0 {
			if err := ack.Props.decode(r); err != nil {
				return err
			}
		}
	}

	return r.expectEOF()
}

// validateAckProps rejects v5-only fields under v3.1.1.
func (a *ackPacket) validate(packetType PacketType, version ProtocolVersion) error {
	if version != Version5 {
		if a.Props.Len() > 0 {
			return unsupported(packetType.String()+" properties", version)
		}
		if a.ReasonCode != ReasonSuccess {
			return unsupported(packetType.String()+" reason code", version)
		}
	}
	if a.PacketID == 0 {
		return ErrPacketIDZero
	}
	return nil
}
