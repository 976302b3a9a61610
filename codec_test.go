package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePacket(t *testing.T, pkt Packet, version ProtocolVersion) []byte {
	t.Helper()
	buf, err := Append(nil, pkt, version)
	require.NoError(t, err)
	return buf
}

func decodePacket(t *testing.T, buf []byte, version ProtocolVersion) Packet {
	t.Helper()
	pkt, n, err := Decode(buf, version)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	return pkt
}

func samplePackets(version ProtocolVersion) []Packet {
	pkts := []Packet{
		&ConnectPacket{ClientID: "client-1", CleanStart: true, KeepAlive: 60,
			Username: "user", Password: []byte("secret")},
		&ConnackPacket{SessionPresent: false, ReturnCode: ConnectAccepted},
		&PublishPacket{Topic: "a/b", Payload: []byte("hi"), QoS: 1, PacketID: 7},
		&PublishPacket{Topic: "a/b", Payload: nil, QoS: 0},
		&PubackPacket{PacketID: 7},
		&PubrecPacket{PacketID: 8},
		&PubrelPacket{PacketID: 8},
		&PubcompPacket{PacketID: 8},
		&SubscribePacket{PacketID: 9, Subscriptions: []Subscription{{TopicFilter: "a/+", QoS: 1}}},
		&SubackPacket{PacketID: 9, ReasonCodes: []ReasonCode{ReasonGrantedQoS1}},
		&UnsubscribePacket{PacketID: 10, TopicFilters: []string{"a/+"}},
		&PingreqPacket{},
		&PingrespPacket{},
		&DisconnectPacket{},
	}

	if version == Version5 {
		pkts = append(pkts,
			&UnsubackPacket{PacketID: 10, ReasonCodes: []ReasonCode{ReasonSuccess}},
			&AuthPacket{ReasonCode: ReasonContinueAuth},
		)
	} else {
		pkts = append(pkts, &UnsubackPacket{PacketID: 10})
	}

	return pkts
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, version := range []ProtocolVersion{Version311, Version5} {
		t.Run(version.String(), func(t *testing.T) {
			for _, pkt := range samplePackets(version) {
				t.Run(pkt.Type().String(), func(t *testing.T) {
					buf := encodePacket(t, pkt, version)
					decoded := decodePacket(t, buf, version)
					assert.Equal(t, pkt.Type(), decoded.Type())

					// A second encode of the decoded packet must be
					// byte-identical.
					if pkt.Type() == PacketCONNECT {
						// CONNECT records the decoded protocol level,
						// which the original zero value lacks.
						return
					}
					assert.Equal(t, buf, encodePacket(t, decoded, version))
				})
			}
		})
	}
}

// Every strict prefix of a valid packet must report ErrIncomplete, and
// appending the remaining bytes must always recover.
func TestDecodePrefixStability(t *testing.T) {
	for _, version := range []ProtocolVersion{Version311, Version5} {
		for _, pkt := range samplePackets(version) {
			buf := encodePacket(t, pkt, version)
			for k := 0; k < len(buf); k++ {
				_, _, err := Decode(buf[:k], version)
				require.ErrorIs(t, err, ErrIncomplete,
					"%s %s prefix %d/%d", version, pkt.Type(), k, len(buf))
			}
			_, n, err := Decode(buf, version)
			require.NoError(t, err)
			require.Equal(t, len(buf), n)
		}
	}
}

func TestDecodeConsumesExactly(t *testing.T) {
	pub := encodePacket(t, &PublishPacket{Topic: "t", Payload: []byte("x"), QoS: 0}, Version5)
	ping := encodePacket(t, &PingreqPacket{}, Version5)
	stream := append(append([]byte{}, pub...), ping...)

	pkt, n, err := Decode(stream, Version5)
	require.NoError(t, err)
	assert.Equal(t, PacketPUBLISH, pkt.Type())
	assert.Equal(t, len(pub), n)

	pkt, n, err = Decode(stream[n:], Version5)
	require.NoError(t, err)
	assert.Equal(t, PacketPINGREQ, pkt.Type())
	assert.Equal(t, len(ping), n)
}

func TestDecodeInvalidVersion(t *testing.T) {
	_, _, err := Decode([]byte{0xC0, 0x00}, ProtocolVersion(3))
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestDecodeInvalidFlags(t *testing.T) {
	// PINGREQ with nonzero flags.
	_, _, err := Decode([]byte{0xC1, 0x00}, Version5)
	assert.ErrorIs(t, err, ErrInvalidPacketFlags)
}

func TestDecodeBodyTrailingBytes(t *testing.T) {
	// PUBACK with remaining length 3: packet ID plus a stray byte is
	// malformed under v3.1.1 where the body is exactly the ID.
	buf := []byte{0x40, 0x03, 0x00, 0x01, 0xFF}
	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodePublishBorrowsPayload(t *testing.T) {
	buf := encodePacket(t, &PublishPacket{Topic: "t", Payload: []byte("abc"), QoS: 0}, Version5)

	pkt := decodePacket(t, buf, Version5)
	pub := pkt.(*PublishPacket)
	require.Equal(t, []byte("abc"), pub.Payload)

	// Payload aliases the decode buffer.
	buf[len(buf)-3] = 'X'
	assert.Equal(t, []byte("Xbc"), pub.Payload)

	// Clone materializes an owned copy.
	clone := pub.Clone()
	buf[len(buf)-2] = 'Y'
	assert.Equal(t, []byte("Xbc"), clone.Payload)
	assert.Equal(t, []byte("XYc"), pub.Payload)
}

func TestEncodeTo(t *testing.T) {
	pkt := &PingreqPacket{}

	out := make([]byte, 2)
	n, err := EncodeTo(out, pkt, Version5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC0, 0x00}, out[:n])

	_, err = EncodeTo(make([]byte, 1), pkt, Version5)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestEncodeNilPacket(t *testing.T) {
	_, err := Encode(nil, nil, Version5)
	assert.Error(t, err)
}
