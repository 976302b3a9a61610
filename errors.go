package mqtt

import (
	"errors"
	"fmt"
)

// Decode failure classes. Every decode error unwraps to exactly one of
// these sentinels; check with errors.Is().
var (
	// ErrIncomplete signals that the buffer holds a valid prefix of a
	// packet but not all of it. It is a control signal, not a failure:
	// read more bytes and decode again.
	ErrIncomplete = errors.New("mqtt: incomplete packet")

	// ErrMalformed signals that the bytes violate the wire grammar. The
	// connection must be closed; the error is never recoverable.
	ErrMalformed = errors.New("mqtt: malformed packet")

	// ErrUnsupported signals a syntactically valid packet that references
	// a feature the negotiated protocol version does not support.
	ErrUnsupported = errors.New("mqtt: unsupported for protocol version")

	// ErrProtocolViolation signals a packet that decoded successfully but
	// violates a cross-field protocol invariant.
	ErrProtocolViolation = errors.New("mqtt: protocol violation")
)

// Engine errors.
var (
	// ErrPacketIDExhausted is returned when all 65535 packet identifiers
	// are in flight. Recoverable: back off and retry once acks drain.
	ErrPacketIDExhausted = errors.New("mqtt: no available packet identifiers")

	// ErrKeepAliveTimeout is reported when the peer misses the keep-alive
	// deadline. Fatal to the session.
	ErrKeepAliveTimeout = errors.New("mqtt: keep-alive timeout")

	// ErrNotConnected is returned for operations that require an
	// established session.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrAlreadyConnected is returned for a CONNECT attempt on a session
	// that is not in the disconnected phase.
	ErrAlreadyConnected = errors.New("mqtt: already connected")

	// ErrQuotaExceeded is returned when the peer's Receive Maximum quota
	// has no room for another QoS>0 publish.
	ErrQuotaExceeded = errors.New("mqtt: receive quota exceeded")
)

// MalformedError describes a wire grammar violation.
// Extract with errors.As(); unwraps to ErrMalformed.
type MalformedError struct {
	Detail string
}

func (e *MalformedError) Error() string {
	return "mqtt: malformed packet: " + e.Detail
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

func malformedf(format string, args ...any) error {
	return &MalformedError{Detail: fmt.Sprintf(format, args...)}
}

// UnsupportedError describes a feature that the negotiated protocol
// version cannot express. Unwraps to ErrUnsupported.
type UnsupportedError struct {
	Feature string
	Version ProtocolVersion
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("mqtt: %s unsupported in %s", e.Feature, e.Version)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

func unsupported(feature string, version ProtocolVersion) error {
	return &UnsupportedError{Feature: feature, Version: version}
}

// ProtocolViolationError describes a packet that parsed but breaks a
// cross-field invariant. Unwraps to ErrProtocolViolation.
type ProtocolViolationError struct {
	Detail string
}

func (e *ProtocolViolationError) Error() string {
	return "mqtt: protocol violation: " + e.Detail
}

func (e *ProtocolViolationError) Unwrap() error { return ErrProtocolViolation }

func violationf(format string, args ...any) error {
	return &ProtocolViolationError{Detail: fmt.Sprintf(format, args...)}
}

// Grammar-level malformed errors shared by the field codecs. These are
// singletons so callers can match the precise cause with errors.Is()
// while still classifying via ErrMalformed.
var (
	ErrInvalidPacketType  = &MalformedError{Detail: "invalid packet type"}
	ErrInvalidPacketFlags = &MalformedError{Detail: "invalid fixed header flags"}
	ErrVarintTooLarge     = &MalformedError{Detail: "variable byte integer exceeds maximum value"}
	ErrVarintMalformed    = &MalformedError{Detail: "variable byte integer continues past four bytes"}
	ErrInvalidUTF8        = &MalformedError{Detail: "invalid UTF-8 string"}
	ErrStringContainsNull = &MalformedError{Detail: "string contains null character"}
	ErrStringTooLong      = &MalformedError{Detail: "string exceeds 65535 bytes"}
	ErrBinaryTooLong      = &MalformedError{Detail: "binary data exceeds 65535 bytes"}
	ErrBodyTruncated      = &MalformedError{Detail: "body shorter than its field lengths declare"}
	ErrBodyTrailingBytes  = &MalformedError{Detail: "body longer than its field lengths declare"}
)
