package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubackRoundTrip(t *testing.T) {
	t.Run("v311 granted and failure", func(t *testing.T) {
		p := &SubackPacket{PacketID: 1, ReasonCodes: []ReasonCode{
			ReasonSuccess, ReasonGrantedQoS2, ReasonCode(0x80),
		}}
		buf := encodePacket(t, p, Version311)
		decoded := decodePacket(t, buf, Version311).(*SubackPacket)
		assert.Equal(t, p.ReasonCodes, decoded.ReasonCodes)
	})

	t.Run("v5 reason codes", func(t *testing.T) {
		p := &SubackPacket{PacketID: 2, ReasonCodes: []ReasonCode{
			ReasonGrantedQoS1, ReasonNotAuthorized,
		}}
		buf := encodePacket(t, p, Version5)
		decoded := decodePacket(t, buf, Version5).(*SubackPacket)
		assert.Equal(t, p.ReasonCodes, decoded.ReasonCodes)
	})
}

func TestSubackInvalidCode(t *testing.T) {
	// 0x03 is not a granted QoS and not the v3.1.1 failure value.
	buf := []byte{0x90, 0x03, 0x00, 0x01, 0x03}
	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrInvalidSubackCode)
}

func TestSubackEmptyPayload(t *testing.T) {
	buf := []byte{0x90, 0x02, 0x00, 0x01}
	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrNoReasonCodes)
}

func TestUnsubackRoundTrip(t *testing.T) {
	t.Run("v311 bare packet ID", func(t *testing.T) {
		p := &UnsubackPacket{PacketID: 3}
		buf := encodePacket(t, p, Version311)
		assert.Len(t, buf, 4)

		decoded := decodePacket(t, buf, Version311).(*UnsubackPacket)
		assert.Equal(t, uint16(3), decoded.PacketID)
		assert.Empty(t, decoded.ReasonCodes)
	})

	t.Run("v5 per-filter codes", func(t *testing.T) {
		p := &UnsubackPacket{PacketID: 4, ReasonCodes: []ReasonCode{
			ReasonSuccess, ReasonNoSubscriptionExisted,
		}}
		buf := encodePacket(t, p, Version5)
		decoded := decodePacket(t, buf, Version5).(*UnsubackPacket)
		assert.Equal(t, p.ReasonCodes, decoded.ReasonCodes)
	})
}

func TestUnsubackV311RejectsBody(t *testing.T) {
	// Extra byte after the packet ID is malformed under v3.1.1.
	buf := []byte{0xB0, 0x03, 0x00, 0x01, 0x00}
	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrBodyTrailingBytes)

	p := &UnsubackPacket{PacketID: 1, ReasonCodes: []ReasonCode{ReasonSuccess}}
	assert.ErrorIs(t, p.Validate(Version311), ErrUnsubackBodyNotEmpty)
}
