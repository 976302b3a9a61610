package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version ProtocolVersion
		packet  *SubscribePacket
	}{
		{
			"v311 single", Version311,
			&SubscribePacket{PacketID: 1, Subscriptions: []Subscription{
				{TopicFilter: "a/b", QoS: 1},
			}},
		},
		{
			"v311 multiple", Version311,
			&SubscribePacket{PacketID: 2, Subscriptions: []Subscription{
				{TopicFilter: "a/#", QoS: 0},
				{TopicFilter: "b/+", QoS: 2},
			}},
		},
		{
			"v5 options", Version5,
			&SubscribePacket{PacketID: 3, Subscriptions: []Subscription{
				{TopicFilter: "a", QoS: 1, NoLocal: true, RetainAsPublished: true, RetainHandling: 2},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodePacket(t, tt.packet, tt.version)
			decoded := decodePacket(t, buf, tt.version).(*SubscribePacket)
			assert.Equal(t, tt.packet.PacketID, decoded.PacketID)
			assert.Equal(t, tt.packet.Subscriptions, decoded.Subscriptions)
		})
	}
}

func TestSubscribeReservedOptionBits(t *testing.T) {
	// v3.1.1: anything above the QoS bits is reserved.
	buf := encodePacket(t, &SubscribePacket{PacketID: 1,
		Subscriptions: []Subscription{{TopicFilter: "a", QoS: 1}}}, Version311)
	buf[len(buf)-1] |= 0x04

	_, _, err := Decode(buf, Version311)
	assert.ErrorIs(t, err, ErrInvalidSubscribeOption)

	// v5: only bits 6-7 are reserved.
	buf = encodePacket(t, &SubscribePacket{PacketID: 1,
		Subscriptions: []Subscription{{TopicFilter: "a", QoS: 1}}}, Version5)
	buf[len(buf)-1] |= 0x40

	_, _, err = Decode(buf, Version5)
	assert.ErrorIs(t, err, ErrInvalidSubscribeOption)
}

func TestSubscribeValidate(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		p := &SubscribePacket{PacketID: 1}
		assert.ErrorIs(t, p.Validate(Version5), ErrNoTopicFilters)
	})

	t.Run("invalid filter", func(t *testing.T) {
		p := &SubscribePacket{PacketID: 1, Subscriptions: []Subscription{
			{TopicFilter: "a/#/b", QoS: 0},
		}}
		assert.ErrorIs(t, p.Validate(Version5), ErrInvalidTopicFilter)
	})

	t.Run("v311 rejects v5 options", func(t *testing.T) {
		p := &SubscribePacket{PacketID: 1, Subscriptions: []Subscription{
			{TopicFilter: "a", NoLocal: true},
		}}
		assert.ErrorIs(t, p.Validate(Version311), ErrUnsupported)
	})

	t.Run("zero packet ID", func(t *testing.T) {
		p := &SubscribePacket{Subscriptions: []Subscription{{TopicFilter: "a"}}}
		assert.ErrorIs(t, p.Validate(Version5), ErrPacketIDZero)
	})
}

func TestUnsubscribeRoundTrip(t *testing.T) {
	p := &UnsubscribePacket{PacketID: 4, TopicFilters: []string{"a/b", "c/#"}}

	for _, version := range []ProtocolVersion{Version311, Version5} {
		buf := encodePacket(t, p, version)
		decoded := decodePacket(t, buf, version).(*UnsubscribePacket)
		assert.Equal(t, p.PacketID, decoded.PacketID)
		assert.Equal(t, p.TopicFilters, decoded.TopicFilters)
	}
}

func TestUnsubscribeValidate(t *testing.T) {
	p := &UnsubscribePacket{PacketID: 1}
	assert.ErrorIs(t, p.Validate(Version5), ErrNoTopicFilters)

	p = &UnsubscribePacket{PacketID: 1, TopicFilters: []string{"a/#/b"}}
	assert.ErrorIs(t, p.Validate(Version5), ErrInvalidTopicFilter)
}
