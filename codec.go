package mqtt

import (
	"errors"
	"io"
)

// Codec errors.
var (
	ErrPacketTooLarge = errors.New("mqtt: packet exceeds maximum size")
	ErrBufferTooSmall = errors.New("mqtt: output buffer too small")
	ErrInvalidVersion = errors.New("mqtt: invalid protocol version")
	errNilPacket      = errors.New("mqtt: nil packet")
)

// newPacket returns an empty packet value for the control packet type.
func newPacket(packetType PacketType) Packet {
	switch packetType {
	case PacketCONNECT:
		return &ConnectPacket{}
	case PacketCONNACK:
		return &ConnackPacket{}
	case PacketPUBLISH:
		return &PublishPacket{}
	case PacketPUBACK:
		return &PubackPacket{}
	case PacketPUBREC:
		return &PubrecPacket{}
	case PacketPUBREL:
		return &PubrelPacket{}
	case PacketPUBCOMP:
		return &PubcompPacket{}
	case PacketSUBSCRIBE:
		return &SubscribePacket{}
	case PacketSUBACK:
		return &SubackPacket{}
	case PacketUNSUBSCRIBE:
		return &UnsubscribePacket{}
	case PacketUNSUBACK:
		return &UnsubackPacket{}
	case PacketPINGREQ:
		return &PingreqPacket{}
	case PacketPINGRESP:
		return &PingrespPacket{}
	case PacketDISCONNECT:
		return &DisconnectPacket{}
	case PacketAUTH:
		return &AuthPacket{}
	default:
		return nil
	}
}

// Decode parses one packet from the start of buf for the given protocol
// version. It returns the packet and the number of bytes consumed.
//
// Decode is pure: it never blocks, never reads from the network, and
// holds no state between calls. When buf contains a valid but unfinished
// prefix (a partial fixed header, or fewer bytes than Remaining Length
// declares) it returns ErrIncomplete and the caller should retry with
// more bytes. All other errors are fatal for the connection and classify
// via errors.Is as ErrMalformed, ErrUnsupported or ErrProtocolViolation.
//
// Byte-slice fields of the returned packet alias buf; they are valid
// only until buf is reused.
func Decode(buf []byte, version ProtocolVersion) (Packet, int, error) {
	if !version.Valid() {
		return nil, 0, ErrInvalidVersion
	}

	header, headerLen, err := decodeFixedHeader(buf, version)
	if err != nil {
		if errors.Is(err, ErrIncomplete) {
			return nil, 0, ErrIncomplete
		}
		return nil, headerLen, err
	}

	if err := header.validateFlags(); err != nil {
		return nil, headerLen, err
	}

	total := headerLen + int(header.RemainingLength)
	if len(buf) < total {
		return nil, 0, ErrIncomplete
	}

	packet := newPacket(header.PacketType)
	if packet == nil {
		return nil, headerLen, ErrInvalidPacketType
	}

	if err := packet.Decode(buf[headerLen:total], header, version); err != nil {
		return nil, total, err
	}

	return packet, total, nil
}

// Encode writes the packet, fixed header included, to w for the given
// protocol version. Returns the number of bytes written.
func Encode(w io.Writer, packet Packet, version ProtocolVersion) (int, error) {
	if packet == nil {
		return 0, errNilPacket
	}
	if !version.Valid() {
		return 0, ErrInvalidVersion
	}
	return packet.Encode(w, version)
}

// Append encodes the packet and appends the bytes to dst, returning the
// extended slice.
func Append(dst []byte, packet Packet, version ProtocolVersion) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := Encode(buf, packet, version); err != nil {
		return dst, err
	}
	return append(dst, buf.Bytes()...), nil
}

// EncodeTo encodes the packet into the pre-sized buffer out. Returns the
// number of bytes written, or ErrBufferTooSmall if out cannot hold the
// serialized packet.
func EncodeTo(out []byte, packet Packet, version ProtocolVersion) (int, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	n, err := Encode(buf, packet, version)
	if err != nil {
		return 0, err
	}
	if n > len(out) {
		return 0, ErrBufferTooSmall
	}
	copy(out, buf.Bytes())
	return n, nil
}
