package mqtt

import (
	"bytes"
	"io"
	"sync"
)

// encodeBufPool recycles the scratch buffers used for the two-pass encode:
// the body is sized and assembled first, then the fixed header with the
// resulting Remaining Length is emitted ahead of it.
var encodeBufPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

func getBuffer() *bytes.Buffer {
	return encodeBufPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	encodeBufPool.Put(buf)
}

// writeWithHeader emits the fixed header for the assembled body, then the
// body itself. Returns the total number of bytes written.
func writeWithHeader(w io.Writer, packetType PacketType, flags byte, body *bytes.Buffer) (int, error) {
	if uint64(body.Len()) > maxVarint {
		return 0, ErrVarintTooLarge
	}

	header := FixedHeader{
		PacketType:      packetType,
		Flags:           flags,
		RemainingLength: uint32(body.Len()),
	}

	total, err := header.encode(w)
	if err != nil {
		return total, err
	}

	n, err := w.Write(body.Bytes())
	return total + n, err
}
