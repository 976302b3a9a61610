package mqtt

// Topic alias errors.
var (
	ErrTopicAliasInvalid = &ProtocolViolationError{Detail: "topic alias out of range"}
	ErrTopicAliasUnknown = &ProtocolViolationError{Detail: "topic alias not previously established"}
)

// TopicAliasManager maps topic names to the short integer aliases of
// MQTT v5.0 section 3.3.2.3.4, in both directions: outbound assignment
// up to the peer's Topic Alias Maximum, and inbound resolution up to our
// own advertised maximum.
//
// Owned by one Engine; no internal locking.
type TopicAliasManager struct {
	outboundMax uint16
	inboundMax  uint16
	outbound    map[string]uint16
	inbound     map[uint16]string
	nextAlias   uint16
}

// NewTopicAliasManager creates an alias manager. outboundMax is the
// peer's advertised Topic Alias Maximum, inboundMax our own; zero
// disables the respective direction.
func NewTopicAliasManager(outboundMax, inboundMax uint16) *TopicAliasManager {
	return &TopicAliasManager{
		outboundMax: outboundMax,
		inboundMax:  inboundMax,
		outbound:    make(map[string]uint16),
		inbound:     make(map[uint16]string),
		nextAlias:   1,
	}
}

// Assign returns the alias for an outbound topic and whether the topic
// name must still be included (first use establishes the mapping). An
// alias of zero means aliasing is off or the table is full; send the
// topic name as usual.
func (m *TopicAliasManager) Assign(topic string) (alias uint16, includeTopic bool) {
	if m.outboundMax == 0 || topic == "" {
		return 0, true
	}

	if alias, ok := m.outbound[topic]; ok {
		return alias, false
	}

	if m.nextAlias > m.outboundMax {
		return 0, true
	}

	alias = m.nextAlias
	m.nextAlias++
	m.outbound[topic] = alias
	return alias, true
}

// Resolve maps an inbound (alias, topic) pair to the effective topic
// name, establishing or refreshing the mapping when the topic is
// present.
func (m *TopicAliasManager) Resolve(alias uint16, topic string) (string, error) {
	if alias == 0 || alias > m.inboundMax {
		return "", ErrTopicAliasInvalid
	}

	if topic != "" {
		m.inbound[alias] = topic
		return topic, nil
	}

	topic, ok := m.inbound[alias]
	if !ok {
		return "", ErrTopicAliasUnknown
	}
	return topic, nil
}

// Reset clears both directions, for a fresh connection. Aliases never
// survive reconnection.
func (m *TopicAliasManager) Reset(outboundMax, inboundMax uint16) {
	m.outboundMax = outboundMax
	m.inboundMax = inboundMax
	clear(m.outbound)
	clear(m.inbound)
	m.nextAlias = 1
}
