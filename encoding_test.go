package mqtt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	tests := []struct {
		value uint32
		size  int
	}{
		{0, 1},
		{1, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{2097151, 3},
		{2097152, 4},
		{268435455, 4},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		n, err := encodeVarint(&buf, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.size, n)
		assert.Equal(t, tt.size, varintSize(tt.value))

		value, consumed, err := decodeVarint(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, tt.value, value)
		assert.Equal(t, tt.size, consumed)
	}
}

func TestVarintTooLarge(t *testing.T) {
	var buf bytes.Buffer
	_, err := encodeVarint(&buf, maxVarint+1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVarintMalformedFiveBytes(t *testing.T) {
	// Four continuation bytes mean a fifth byte would be needed.
	_, _, err := decodeVarint([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	assert.ErrorIs(t, err, ErrVarintMalformed)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVarintIncomplete(t *testing.T) {
	tests := [][]byte{
		{},
		{0x80},
		{0xFF, 0xFF},
		{0xFF, 0xFF, 0xFF},
	}

	for _, buf := range tests {
		_, _, err := decodeVarint(buf)
		assert.ErrorIs(t, err, ErrIncomplete)
	}
}

func TestReadString(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := newReader([]byte{0x00, 0x05, 'h', 'e', 'l', 'l', 'o'})
		s, err := r.readString()
		require.NoError(t, err)
		assert.Equal(t, "hello", s)
		assert.NoError(t, r.expectEOF())
	})

	t.Run("invalid utf8", func(t *testing.T) {
		r := newReader([]byte{0x00, 0x02, 0xC0, 0x00})
		_, err := r.readString()
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("embedded null", func(t *testing.T) {
		r := newReader([]byte{0x00, 0x03, 'a', 0x00, 'b'})
		_, err := r.readString()
		assert.ErrorIs(t, err, ErrStringContainsNull)
	})

	t.Run("truncated", func(t *testing.T) {
		r := newReader([]byte{0x00, 0x05, 'h', 'i'})
		_, err := r.readString()
		assert.ErrorIs(t, err, ErrBodyTruncated)
	})
}

func TestEncodeStringRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer

	_, err := encodeString(&buf, string([]byte{0xC0, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = encodeString(&buf, "a\x00b")
	assert.ErrorIs(t, err, ErrStringContainsNull)

	_, err = encodeString(&buf, string(make([]byte, maxUint16+1)))
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestReadBinaryBorrows(t *testing.T) {
	body := []byte{0x00, 0x03, 1, 2, 3}
	r := newReader(body)

	b, err := r.readBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)

	// The slice aliases the body buffer, not a copy.
	body[2] = 99
	assert.Equal(t, byte(99), b[0])
}

func TestReaderRest(t *testing.T) {
	r := newReader([]byte{1, 2, 3, 4})
	_, err := r.readByte()
	require.NoError(t, err)

	rest := r.rest()
	assert.Equal(t, []byte{2, 3, 4}, rest)
	assert.Equal(t, 0, r.remaining())
	assert.NoError(t, r.expectEOF())
}

func TestExpectEOFTrailing(t *testing.T) {
	r := newReader([]byte{1, 2})
	_, err := r.readByte()
	require.NoError(t, err)
	assert.ErrorIs(t, r.expectEOF(), ErrBodyTrailingBytes)
}

func TestStringPairRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	_, err := encodeStringPair(&buf, StringPair{Key: "k", Value: "v"})
	require.NoError(t, err)

	r := newReader(buf.Bytes())
	pair, err := r.readStringPair()
	require.NoError(t, err)
	assert.Equal(t, StringPair{Key: "k", Value: "v"}, pair)
}
