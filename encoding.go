package mqtt

import (
	"encoding/binary"
	"io"
	"unicode/utf8"
)

const (
	maxUint16         = 65535
	maxVarint         = 268435455 // 0x0FFFFFFF
	varintContinueBit = 0x80
	varintValueMask   = 0x7F
)

// reader is a cursor over a packet body. All length errors inside a body
// are malformed, never incomplete: the body was already sliced to exactly
// Remaining Length bytes, so a short field means the declared lengths are
// inconsistent.
//
// readBinary and rest return subslices of the underlying buffer without
// copying.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// expectEOF fails if the body has unconsumed bytes after the last field.
func (r *reader) expectEOF() error {
	if r.pos != len(r.buf) {
		return ErrBodyTrailingBytes
	}
	return nil
}

func (r *reader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrBodyTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readUint16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrBodyTruncated
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readUint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrBodyTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) readVarint() (uint32, error) {
	v, n, err := decodeVarint(r.buf[r.pos:])
	if err == ErrIncomplete {
		err = ErrBodyTruncated
	}
	r.pos += n
	return v, err
}

// readString reads a UTF-8 string with 2-byte length prefix. The string
// must be valid UTF-8 and free of embedded NUL; invalid input is rejected,
// never sanitized.
func (r *reader) readString() (string, error) {
	b, err := r.readBinary()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}

	for i := range len(b) {
		if b[i] == 0 {
			return "", ErrStringContainsNull
		}
	}

	return string(b), nil
}

// readBinary reads binary data with 2-byte length prefix. The returned
// slice aliases the packet body; it is not a copy.
func (r *reader) readBinary() ([]byte, error) {
	length, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(length) {
		return nil, ErrBodyTruncated
	}
	b := r.buf[r.pos : r.pos+int(length)]
	r.pos += int(length)
	return b, nil
}

func (r *reader) readStringPair() (StringPair, error) {
	key, err := r.readString()
	if err != nil {
		return StringPair{}, err
	}

	value, err := r.readString()
	if err != nil {
		return StringPair{}, err
	}

	return StringPair{Key: key, Value: value}, nil
}

// rest returns the unconsumed tail of the body without copying and
// advances the cursor to the end.
func (r *reader) rest() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}

// StringPair represents a key-value string pair used in MQTT v5.0 user
// properties.
type StringPair struct {
	Key   string
	Value string
}

// encodeString writes a UTF-8 string with 2-byte length prefix to w.
// Returns the number of bytes written.
func encodeString(w io.Writer, s string) (int, error) {
	if len(s) > maxUint16 {
		return 0, ErrStringTooLong
	}

	if !utf8.ValidString(s) {
		return 0, ErrInvalidUTF8
	}

	for i := range len(s) {
		if s[i] == 0 {
			return 0, ErrStringContainsNull
		}
	}

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))

	n, err := w.Write(lenBuf[:])
	if err != nil {
		return n, err
	}

	n2, err := io.WriteString(w, s)
	return n + n2, err
}

// encodeBinary writes binary data with 2-byte length prefix to w.
// Returns the number of bytes written.
func encodeBinary(w io.Writer, data []byte) (int, error) {
	if len(data) > maxUint16 {
		return 0, ErrBinaryTooLong
	}

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(data)))

	n, err := w.Write(lenBuf[:])
	if err != nil {
		return n, err
	}

	n2, err := w.Write(data)
	return n + n2, err
}

// encodeStringPair writes a string pair (key, value) to w.
func encodeStringPair(w io.Writer, pair StringPair) (int, error) {
	n, err := encodeString(w, pair.Key)
	if err != nil {
		return n, err
	}

	n2, err := encodeString(w, pair.Value)
	return n + n2, err
}

// encodeUint16 writes a big-endian two byte integer to w.
func encodeUint16(w io.Writer, v uint16) (int, error) {
	return w.Write([]byte{byte(v >> 8), byte(v)})
}

// encodeVarint writes a variable byte integer to w.
// Returns the number of bytes written.
func encodeVarint(w io.Writer, value uint32) (int, error) {
	if value > maxVarint {
		return 0, ErrVarintTooLarge
	}

	var buf [4]byte
	n := 0

	for {
		encodedByte := byte(value & varintValueMask)
		value >>= 7

		if value > 0 {
			encodedByte |= varintContinueBit
		}

		buf[n] = encodedByte
		n++

		if value == 0 {
			break
		}
	}

	return w.Write(buf[:n])
}

// decodeVarint reads a variable byte integer from the start of buf.
// Returns ErrIncomplete when buf ends before the terminating byte, and
// ErrVarintMalformed when a fourth byte still carries the continuation
// bit (a 5-byte encoding is a protocol violation).
func decodeVarint(buf []byte) (uint32, int, error) {
	var value uint32
	var multiplier uint32 = 1

	for i := 0; ; i++ {
		if i == 4 {
			return 0, i, ErrVarintMalformed
		}
		if i >= len(buf) {
			return 0, i, ErrIncomplete
		}

		encodedByte := buf[i]
		value += uint32(encodedByte&varintValueMask) * multiplier

		if encodedByte&varintContinueBit == 0 {
			return value, i + 1, nil
		}

		multiplier *= 128
	}
}

// varintSize returns the number of bytes needed to encode a variable byte
// integer.
func varintSize(value uint32) int {
	switch {
	case value < 128:
		return 1
	case value < 16384:
		return 2
	case value < 2097152:
		return 3
	default:
		return 4
	}
}
