package mqtt

import (
	"strings"
	"unicode/utf8"
)

// Topic errors. These classify as protocol violations: the bytes parsed,
// the content is illegal.
var (
	ErrInvalidTopicName   = &ProtocolViolationError{Detail: "invalid topic name"}
	ErrInvalidTopicFilter = &ProtocolViolationError{Detail: "invalid topic filter"}
	ErrEmptyTopic         = &ProtocolViolationError{Detail: "topic cannot be empty"}
)

const (
	topicSeparator      = '/'
	singleLevelWildcard = '+'
	multiLevelWildcard  = '#'
)

// ValidateTopicName checks a topic name: non-empty valid UTF-8 with no
// null characters and no wildcards.
func ValidateTopicName(topic string) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if !utf8.ValidString(topic) {
		return ErrInvalidTopicName
	}

	for _, r := range topic {
		if r == 0 || r == singleLevelWildcard || r == multiLevelWildcard {
			return ErrInvalidTopicName
		}
	}
	return nil
}

// ValidateTopicFilter checks a topic filter: wildcards are allowed but
// must occupy whole levels, and the multi-level wildcard must be last.
func ValidateTopicFilter(filter string) error {
	if filter == "" {
		return ErrEmptyTopic
	}
	if !utf8.ValidString(filter) {
		return ErrInvalidTopicFilter
	}
	for _, r := range filter {
		if r == 0 {
			return ErrInvalidTopicFilter
		}
	}

	levels := strings.Split(filter, string(topicSeparator))
	for i, level := range levels {
		if strings.ContainsRune(level, singleLevelWildcard) && level != string(singleLevelWildcard) {
			return ErrInvalidTopicFilter
		}
		if strings.ContainsRune(level, multiLevelWildcard) {
			if level != string(multiLevelWildcard) || i != len(levels)-1 {
				return ErrInvalidTopicFilter
			}
		}
	}
	return nil
}

// TopicMatch reports whether a topic name matches a topic filter.
// Wildcards at the root level never match topics starting with '$'.
func TopicMatch(filter, topic string) bool {
	if filter == "" || topic == "" {
		return false
	}

	if topic[0] == '$' && (filter[0] == singleLevelWildcard || filter[0] == multiLevelWildcard) {
		return false
	}

	return matchLevels(filter, topic)
}

// matchLevels walks both strings level by level without allocating.
func matchLevels(filter, topic string) bool {
	fi, ti := 0, 0

	for fi < len(filter) {
		fstart := fi
		for fi < len(filter) && filter[fi] != topicSeparator {
			fi++
		}
		flevel := filter[fstart:fi]

		if flevel == "#" {
			return true
		}

		if ti >= len(topic) {
			return false
		}

		tstart := ti
		for ti < len(topic) && topic[ti] != topicSeparator {
			ti++
		}
		tlevel := topic[tstart:ti]

		if flevel != "+" && flevel != tlevel {
			return false
		}

		if fi < len(filter) {
			fi++
		}
		if ti < len(topic) {
			ti++
		}
	}

	return ti >= len(topic)
}

// ContainsWildcard reports whether the filter uses # or +.
func ContainsWildcard(filter string) bool {
	return strings.ContainsAny(filter, "#+")
}

// SharedSubscription is a parsed $share/{name}/{filter} subscription.
type SharedSubscription struct {
	ShareName   string
	TopicFilter string
}

// ParseSharedSubscription parses a shared subscription filter. It
// returns (nil, nil) when the filter is not a shared subscription.
func ParseSharedSubscription(filter string) (*SharedSubscription, error) {
	const prefix = "$share/"

	if !strings.HasPrefix(filter, prefix) {
		return nil, nil
	}

	rest := filter[len(prefix):]
	name, topicFilter, ok := strings.Cut(rest, string(topicSeparator))
	if !ok || name == "" || topicFilter == "" {
		return nil, ErrInvalidTopicFilter
	}

	if err := ValidateTopicFilter(topicFilter); err != nil {
		return nil, err
	}

	return &SharedSubscription{ShareName: name, TopicFilter: topicFilter}, nil
}
