package mqtt

import "io"

// CONNECT protocol name, shared by both versions.
const protocolName = "MQTT"

// Connect flag bit positions.
const (
	connectFlagCleanStart   = 0x02
	connectFlagWillFlag     = 0x04
	connectFlagWillRetain   = 0x20
	connectFlagPasswordFlag = 0x40
	connectFlagUsernameFlag = 0x80
)

// CONNECT packet errors.
var (
	ErrInvalidProtocolName    = &MalformedError{Detail: "invalid protocol name"}
	ErrInvalidProtocolVersion = &UnsupportedError{Feature: "protocol level"}
	ErrInvalidConnectFlags    = &MalformedError{Detail: "invalid connect flags"}
	ErrClientIDRequired       = &ProtocolViolationError{Detail: "client ID required with clean start false"}
)

// ConnectPacket represents an MQTT CONNECT packet.
type ConnectPacket struct {
	// ClientID is the client identifier.
	ClientID string

	// CleanStart requests a fresh session (v3.1.1 calls this clean
	// session).
	CleanStart bool

	// KeepAlive is the keep alive interval in seconds.
	KeepAlive uint16

	// Props contains the CONNECT properties (v5 only).
	Props Properties

	// Username for authentication.
	Username string

	// Password for authentication. Aliases the decode buffer.
	Password []byte

	// Will message configuration.
	WillFlag    bool
	WillRetain  bool
	WillQoS     byte
	WillTopic   string
	WillPayload []byte
	WillProps   Properties

	// Version is the protocol level the packet declared. Set by Decode;
	// brokers read it to pick the codec version for the rest of the
	// connection.
	Version ProtocolVersion
}

// Type returns the packet type.
func (p *ConnectPacket) Type() PacketType {
	return PacketCONNECT
}

// Properties returns a pointer to the packet's properties.
func (p *ConnectPacket) Properties() *Properties {
	return &p.Props
}

// connectFlags returns the connect flags byte.
func (p *ConnectPacket) connectFlags() byte {
	var flags byte

	if p.CleanStart {
		flags |= connectFlagCleanStart
	}

	if p.WillFlag {
		flags |= connectFlagWillFlag
		flags |= (p.WillQoS & 0x03) << 3
		if p.WillRetain {
			flags |= connectFlagWillRetain
		}
	}

	if len(p.Password) > 0 {
		flags |= connectFlagPasswordFlag
	}

	if p.Username != "" {
		flags |= connectFlagUsernameFlag
	}

	return flags
}

// setConnectFlags parses the connect flags byte. The reserved bit must be
// zero.
func (p *ConnectPacket) setConnectFlags(flags byte) error {
	if flags&0x01 != 0 {
		return ErrInvalidConnectFlags
	}

	p.CleanStart = flags&connectFlagCleanStart != 0
	p.WillFlag = flags&connectFlagWillFlag != 0
	p.WillQoS = (flags >> 3) & 0x03
	p.WillRetain = flags&connectFlagWillRetain != 0

	if !p.WillFlag && (p.WillQoS != 0 || p.WillRetain) {
		return ErrInvalidConnectFlags
	}

	if p.WillQoS > 2 {
		return ErrInvalidConnectFlags
	}

	return nil
}

// Encode writes the packet to the writer.
func (p *ConnectPacket) Encode(w io.Writer, version ProtocolVersion) (int, error) {
	if err := p.Validate(version); err != nil {
		return 0, err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := encodeString(buf, protocolName); err != nil {
		return 0, err
	}

	buf.WriteByte(byte(version))
	buf.WriteByte(p.connectFlags())

	if _, err := encodeUint16(buf, p.KeepAlive); err != nil {
		return 0, err
	}

	if version == Version5 {
		if _, err := p.Props.Encode(buf); err != nil {
			return 0, err
		}
	}

	// Payload

	if _, err := encodeString(buf, p.ClientID); err != nil {
		return 0, err
	}

	if p.WillFlag {
		if version == Version5 {
			if _, err := p.WillProps.Encode(buf); err != nil {
				return 0, err
			}
		}

		if _, err := encodeString(buf, p.WillTopic); err != nil {
			return 0, err
		}

		if _, err := encodeBinary(buf, p.WillPayload); err != nil {
			return 0, err
		}
	}

	if p.Username != "" {
		if _, err := encodeString(buf, p.Username); err != nil {
			return 0, err
		}
	}

	if len(p.Password) > 0 {
		if _, err := encodeBinary(buf, p.Password); err != nil {
			return 0, err
		}
	}

	return writeWithHeader(w, PacketCONNECT, 0x00, buf)
}

// Decode reads the packet body. CONNECT is the version-negotiating packet:
// the declared protocol level wins over the version argument and is stored
// in p.Version, so a broker can decode the first packet of a connection
// before knowing which revision the client speaks.
func (p *ConnectPacket) Decode(body []byte, header FixedHeader, version ProtocolVersion) error {
	if header.PacketType != PacketCONNECT {
		return ErrInvalidPacketType
	}

	r := newReader(body)

	protoName, err := r.readString()
	if err != nil {
		return err
	}
	if protoName != protocolName {
		return ErrInvalidProtocolName
	}

	level, err := r.readByte()
	if err != nil {
		return err
	}
	p.Version = ProtocolVersion(level)
	if !p.Version.Valid() {
		return ErrInvalidProtocolVersion
	}

	flags, err := r.readByte()
	if err != nil {
		return err
	}
	if err := p.setConnectFlags(flags); err != nil {
		return err
	}

	usernameFlag := flags&connectFlagUsernameFlag != 0
	passwordFlag := flags&connectFlagPasswordFlag != 0

	if p.KeepAlive, err = r.readUint16(); err != nil {
		return err
	}

	if p.Version == Version5 {
		if err := p.Props.decode(r); err != nil {
			return err
		}
	}

	// Payload

	if p.ClientID, err = r.readString(); err != nil {
		return err
	}

	if p.WillFlag {
		if p.Version == Version5 {
			if err := p.WillProps.decode(r); err != nil {
				return err
			}
		}

		if p.WillTopic, err = r.readString(); err != nil {
			return err
		}

		if p.WillPayload, err = r.readBinary(); err != nil {
			return err
		}
	}

	if usernameFlag {
		if p.Username, err = r.readString(); err != nil {
			return err
		}
	}

	if passwordFlag {
		if p.Password, err = r.readBinary(); err != nil {
			return err
		}
	}

	return r.expectEOF()
}

// Validate validates the packet contents.
func (p *ConnectPacket) Validate(version ProtocolVersion) error {
	if !p.CleanStart && p.ClientID == "" {
		return ErrClientIDRequired
	}

	if p.WillQoS > 2 {
		return ErrInvalidConnectFlags
	}

	if !p.WillFlag && (p.WillRetain || p.WillQoS != 0) {
		return ErrInvalidConnectFlags
	}

	if version != Version5 && (p.Props.Len() > 0 || p.WillProps.Len() > 0) {
		return unsupported("CONNECT properties", version)
	}

	return nil
}
