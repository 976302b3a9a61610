package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version ProtocolVersion
		packet  *ConnectPacket
	}{
		{
			name:    "v311 basic",
			version: Version311,
			packet:  &ConnectPacket{ClientID: "c1", CleanStart: true, KeepAlive: 60},
		},
		{
			name:    "v311 credentials",
			version: Version311,
			packet: &ConnectPacket{ClientID: "c2", CleanStart: true,
				Username: "user", Password: []byte("pass")},
		},
		{
			name:    "v311 will",
			version: Version311,
			packet: &ConnectPacket{ClientID: "c3", CleanStart: true,
				WillFlag: true, WillTopic: "status", WillPayload: []byte("gone"),
				WillQoS: 1, WillRetain: true},
		},
		{
			name:    "v5 will with properties",
			version: Version5,
			packet: func() *ConnectPacket {
				p := &ConnectPacket{ClientID: "c4", CleanStart: true, KeepAlive: 30,
					WillFlag: true, WillTopic: "status", WillPayload: []byte("gone")}
				p.Props.Set(PropSessionExpiryInterval, uint32(120))
				p.WillProps.Set(PropWillDelayInterval, uint32(5))
				return p
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodePacket(t, tt.packet, tt.version)
			decoded := decodePacket(t, buf, tt.version).(*ConnectPacket)

			assert.Equal(t, tt.packet.ClientID, decoded.ClientID)
			assert.Equal(t, tt.packet.CleanStart, decoded.CleanStart)
			assert.Equal(t, tt.packet.KeepAlive, decoded.KeepAlive)
			assert.Equal(t, tt.packet.Username, decoded.Username)
			assert.Equal(t, tt.packet.Password, decoded.Password)
			assert.Equal(t, tt.packet.WillFlag, decoded.WillFlag)
			assert.Equal(t, tt.packet.WillTopic, decoded.WillTopic)
			assert.Equal(t, tt.packet.WillQoS, decoded.WillQoS)
			assert.Equal(t, tt.version, decoded.Version)
		})
	}
}

// The declared protocol level wins over the decode argument, so a server
// can parse the first packet before knowing what the client speaks.
func TestConnectDeclaredLevelWins(t *testing.T) {
	buf := encodePacket(t, &ConnectPacket{ClientID: "c", CleanStart: true}, Version311)

	decoded := decodePacket(t, buf, Version5).(*ConnectPacket)
	assert.Equal(t, Version311, decoded.Version)
}

func TestConnectInvalidProtocolName(t *testing.T) {
	buf := encodePacket(t, &ConnectPacket{ClientID: "c", CleanStart: true}, Version311)
	// Corrupt the protocol name ("MQTT" starts at body offset 2).
	buf[4] = 'X'

	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrInvalidProtocolName)
}

func TestConnectUnsupportedLevel(t *testing.T) {
	buf := encodePacket(t, &ConnectPacket{ClientID: "c", CleanStart: true}, Version311)
	buf[8] = 3 // protocol level byte

	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestConnectReservedFlagBit(t *testing.T) {
	buf := encodePacket(t, &ConnectPacket{ClientID: "c", CleanStart: true}, Version311)
	buf[9] |= 0x01 // reserved bit of the connect flags

	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrInvalidConnectFlags)
}

func TestConnectValidate(t *testing.T) {
	t.Run("empty client ID needs clean start", func(t *testing.T) {
		p := &ConnectPacket{CleanStart: false}
		assert.ErrorIs(t, p.Validate(Version5), ErrClientIDRequired)
	})

	t.Run("will retain without will flag", func(t *testing.T) {
		p := &ConnectPacket{ClientID: "c", CleanStart: true, WillRetain: true}
		assert.ErrorIs(t, p.Validate(Version5), ErrInvalidConnectFlags)
	})

	t.Run("v311 rejects properties", func(t *testing.T) {
		p := &ConnectPacket{ClientID: "c", CleanStart: true}
		p.Props.Set(PropSessionExpiryInterval, uint32(1))
		assert.ErrorIs(t, p.Validate(Version311), ErrUnsupported)
	})
}

func TestConnectPasswordBorrows(t *testing.T) {
	buf := encodePacket(t, &ConnectPacket{ClientID: "c", CleanStart: true,
		Username: "u", Password: []byte("pw")}, Version311)

	decoded := decodePacket(t, buf, Version311).(*ConnectPacket)
	require.Equal(t, []byte("pw"), decoded.Password)

	buf[len(buf)-2] = 'X'
	assert.Equal(t, []byte("Xw"), decoded.Password)
}
