package mqtt

import "io"

// PacketType represents an MQTT control packet type.
type PacketType byte

// MQTT control packet types as defined in the specification.
const (
	PacketCONNECT     PacketType = 1
	PacketCONNACK     PacketType = 2
	PacketPUBLISH     PacketType = 3
	PacketPUBACK      PacketType = 4
	PacketPUBREC      PacketType = 5
	PacketPUBREL      PacketType = 6
	PacketPUBCOMP     PacketType = 7
	PacketSUBSCRIBE   PacketType = 8
	PacketSUBACK      PacketType = 9
	PacketUNSUBSCRIBE PacketType = 10
	PacketUNSUBACK    PacketType = 11
	PacketPINGREQ     PacketType = 12
	PacketPINGRESP    PacketType = 13
	PacketDISCONNECT  PacketType = 14
	PacketAUTH        PacketType = 15
)

// String returns the string representation of the packet type.
func (p PacketType) String() string {
	switch p {
	case PacketCONNECT:
		return "CONNECT"
	case PacketCONNACK:
		return "CONNACK"
	case PacketPUBLISH:
		return "PUBLISH"
	case PacketPUBACK:
		return "PUBACK"
	case PacketPUBREC:
		return "PUBREC"
	case PacketPUBREL:
		return "PUBREL"
	case PacketPUBCOMP:
		return "PUBCOMP"
	case PacketSUBSCRIBE:
		return "SUBSCRIBE"
	case PacketSUBACK:
		return "SUBACK"
	case PacketUNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case PacketUNSUBACK:
		return "UNSUBACK"
	case PacketPINGREQ:
		return "PINGREQ"
	case PacketPINGRESP:
		return "PINGRESP"
	case PacketDISCONNECT:
		return "DISCONNECT"
	case PacketAUTH:
		return "AUTH"
	default:
		return "UNKNOWN"
	}
}

// Valid returns true if the packet type is valid for the version. AUTH
// exists only in v5.
func (p PacketType) Valid(version ProtocolVersion) bool {
	if p == PacketAUTH {
		return version == Version5
	}
	return p >= PacketCONNECT && p <= PacketDISCONNECT
}

// FixedHeader represents the fixed header of an MQTT control packet:
// packet type (4 bits), per-type flags (4 bits), and the Remaining Length
// of everything that follows.
type FixedHeader struct {
	PacketType      PacketType
	Flags           byte
	RemainingLength uint32
}

// decodeFixedHeader parses a fixed header from the start of buf.
// Returns ErrIncomplete when buf holds a valid but unfinished prefix.
func decodeFixedHeader(buf []byte, version ProtocolVersion) (FixedHeader, int, error) {
	if len(buf) == 0 {
		return FixedHeader{}, 0, ErrIncomplete
	}

	h := FixedHeader{
		PacketType: PacketType(buf[0] >> 4),
		Flags:      buf[0] & 0x0F,
	}

	if h.PacketType < PacketCONNECT || h.PacketType > PacketAUTH {
		return h, 1, ErrInvalidPacketType
	}
	if h.PacketType == PacketAUTH && version != Version5 {
		return h, 1, unsupported("AUTH packet", version)
	}

	length, n, err := decodeVarint(buf[1:])
	if err != nil {
		return h, 1 + n, err
	}

	h.RemainingLength = length
	return h, 1 + n, nil
}

// encode writes the fixed header to the writer. Returns the number of
// bytes written.
func (h *FixedHeader) encode(w io.Writer) (int, error) {
	firstByte := byte(h.PacketType)<<4 | (h.Flags & 0x0F)
	n, err := w.Write([]byte{firstByte})
	if err != nil {
		return n, err
	}

	n2, err := encodeVarint(w, h.RemainingLength)
	return n + n2, err
}

// size returns the encoded size of the fixed header in bytes.
func (h *FixedHeader) size() int {
	return 1 + varintSize(h.RemainingLength)
}

// validateFlags checks the flags against the packet type. PUBLISH carries
// DUP/QoS/RETAIN; PUBREL, SUBSCRIBE and UNSUBSCRIBE are fixed at 0x02;
// everything else must be zero.
func (h *FixedHeader) validateFlags() error {
	switch h.PacketType {
	case PacketPUBLISH:
		// QoS 3 is reserved and fatal.
		if (h.Flags>>1)&0x03 > 2 {
			return ErrInvalidPacketFlags
		}
		return nil

	case PacketPUBREL, PacketSUBSCRIBE, PacketUNSUBSCRIBE:
		if h.Flags != 0x02 {
			return ErrInvalidPacketFlags
		}
		return nil

	default:
		if h.Flags != 0x00 {
			return ErrInvalidPacketFlags
		}
		return nil
	}
}

// PUBLISH flag accessors.

// DUP returns the DUP flag from PUBLISH packet flags.
func (h *FixedHeader) DUP() bool {
	return h.Flags&0x08 != 0
}

// QoS returns the QoS level from PUBLISH packet flags.
func (h *FixedHeader) QoS() byte {
	return (h.Flags >> 1) & 0x03
}

// Retain returns the RETAIN flag from PUBLISH packet flags.
func (h *FixedHeader) Retain() bool {
	return h.Flags&0x01 != 0
}
