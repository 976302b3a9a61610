package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version ProtocolVersion
		packet  *PublishPacket
	}{
		{"qos0", Version311, &PublishPacket{Topic: "a/b", Payload: []byte("x")}},
		{"qos0 empty payload", Version311, &PublishPacket{Topic: "a/b"}},
		{"qos1", Version311, &PublishPacket{Topic: "a/b", Payload: []byte("x"), QoS: 1, PacketID: 1}},
		{"qos2 retain", Version311, &PublishPacket{Topic: "a", QoS: 2, PacketID: 2, Retain: true}},
		{"qos1 dup", Version5, &PublishPacket{Topic: "a", QoS: 1, PacketID: 3, DUP: true}},
		{
			"v5 properties", Version5,
			func() *PublishPacket {
				p := &PublishPacket{Topic: "a", Payload: []byte("y"), QoS: 1, PacketID: 4}
				p.Props.Set(PropContentType, "text/plain")
				p.Props.Set(PropMessageExpiryInterval, uint32(60))
				return p
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodePacket(t, tt.packet, tt.version)
			decoded := decodePacket(t, buf, tt.version).(*PublishPacket)

			assert.Equal(t, tt.packet.Topic, decoded.Topic)
			assert.Equal(t, tt.packet.QoS, decoded.QoS)
			assert.Equal(t, tt.packet.Retain, decoded.Retain)
			assert.Equal(t, tt.packet.DUP, decoded.DUP)
			assert.Equal(t, tt.packet.PacketID, decoded.PacketID)
			if len(tt.packet.Payload) > 0 {
				assert.Equal(t, tt.packet.Payload, decoded.Payload)
			}
		})
	}
}

func TestPublishValidate(t *testing.T) {
	t.Run("qos without packet ID", func(t *testing.T) {
		p := &PublishPacket{Topic: "a", QoS: 1}
		assert.ErrorIs(t, p.Validate(Version5), ErrPacketIDRequired)
	})

	t.Run("dup on qos0", func(t *testing.T) {
		p := &PublishPacket{Topic: "a", DUP: true}
		assert.ErrorIs(t, p.Validate(Version5), ErrInvalidPacketFlags)
	})

	t.Run("empty topic", func(t *testing.T) {
		p := &PublishPacket{}
		assert.ErrorIs(t, p.Validate(Version5), ErrTopicNameEmpty)
	})

	t.Run("wildcard in topic name", func(t *testing.T) {
		p := &PublishPacket{Topic: "a/+/b"}
		assert.ErrorIs(t, p.Validate(Version5), ErrInvalidTopicName)
	})

	t.Run("empty topic with alias", func(t *testing.T) {
		p := &PublishPacket{}
		p.Props.Set(PropTopicAlias, uint16(3))
		assert.NoError(t, p.Validate(Version5))
		assert.ErrorIs(t, p.Validate(Version311), ErrUnsupported)
	})
}

func TestPublishZeroPacketID(t *testing.T) {
	buf := encodePacket(t, &PublishPacket{Topic: "a", QoS: 1, PacketID: 5}, Version311)
	// Zero out the packet ID that follows the 3-byte topic field.
	buf[len(buf)-2] = 0
	buf[len(buf)-1] = 0

	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrPacketIDZero)
}

func TestPublishQoS3Rejected(t *testing.T) {
	// Flags 0x06 encode QoS 3.
	buf := []byte{0x36, 0x03, 0x00, 0x01, 'a'}
	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrInvalidPacketFlags)
}

func TestPublishMessageConversion(t *testing.T) {
	p := &PublishPacket{Topic: "a", Payload: []byte("x"), QoS: 1, PacketID: 1, Retain: true}
	p.Props.Set(PropContentType, "text/plain")
	p.Props.Set(PropResponseTopic, "replies")

	msg := p.ToMessage()
	assert.Equal(t, "a", msg.Topic)
	assert.Equal(t, byte(1), msg.QoS)
	assert.True(t, msg.Retain)
	assert.Equal(t, "text/plain", msg.ContentType)
	assert.Equal(t, "replies", msg.ResponseTopic)

	var back PublishPacket
	back.FromMessage(msg)
	assert.Equal(t, p.Topic, back.Topic)
	assert.Equal(t, "text/plain", back.Props.GetString(PropContentType))
}

func TestMessageClone(t *testing.T) {
	payload := []byte("data")
	msg := &Message{Topic: "t", Payload: payload, QoS: 1,
		CorrelationData: []byte{1}, UserProperties: []StringPair{{Key: "k", Value: "v"}}}

	clone := msg.Clone()
	payload[0] = 'X'
	require.Equal(t, []byte("data"), clone.Payload)
	assert.Equal(t, msg.UserProperties, clone.UserProperties)

	assert.Nil(t, (*Message)(nil).Clone())
}
