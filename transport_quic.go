package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// ErrTLSRequired is returned when QUIC is used without a TLS
// configuration; QUIC mandates TLS 1.3.
var ErrTLSRequired = errors.New("mqtt: TLS configuration required for QUIC")

// quicALPN is the ALPN token for MQTT over QUIC.
const quicALPN = "mqtt"

// quicConn adapts one bidirectional QUIC stream to net.Conn.
type quicConn struct {
	conn   *quic.Conn
	stream *quic.Stream
}

func (c *quicConn) Read(b []byte) (int, error)  { return c.stream.Read(b) }
func (c *quicConn) Write(b []byte) (int, error) { return c.stream.Write(b) }

func (c *quicConn) Close() error {
	if err := c.stream.Close(); err != nil {
		return err
	}
	return c.conn.CloseWithError(0, "")
}

func (c *quicConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *quicConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *quicConn) SetDeadline(t time.Time) error {
	if err := c.stream.SetReadDeadline(t); err != nil {
		return err
	}
	return c.stream.SetWriteDeadline(t)
}

func (c *quicConn) SetReadDeadline(t time.Time) error {
	return c.stream.SetReadDeadline(t)
}

func (c *quicConn) SetWriteDeadline(t time.Time) error {
	return c.stream.SetWriteDeadline(t)
}

// quicTLSConfig fills in the QUIC requirements: TLS 1.3 and the MQTT
// ALPN token.
func quicTLSConfig(cfg *tls.Config) *tls.Config {
	if cfg == nil {
		return &tls.Config{
			MinVersion: tls.VersionTLS13,
			NextProtos: []string{quicALPN},
		}
	}
	cfg = cfg.Clone()
	if cfg.MinVersion < tls.VersionTLS13 {
		cfg.MinVersion = tls.VersionTLS13
	}
	if len(cfg.NextProtos) == 0 {
		cfg.NextProtos = []string{quicALPN}
	}
	return cfg
}

// QUICDialer connects to MQTT endpoints over QUIC, one bidirectional
// stream per connection.
type QUICDialer struct {
	// TLSConfig is the TLS configuration. Nil uses a TLS 1.3 default
	// with the MQTT ALPN token.
	TLSConfig *tls.Config

	// QUICConfig is the QUIC transport configuration.
	QUICConfig *quic.Config
}

// NewQUICDialer creates a QUIC dialer.
func NewQUICDialer(tlsConfig *tls.Config) *QUICDialer {
	return &QUICDialer{TLSConfig: tlsConfig}
}

// Dial connects to the address and opens the packet stream.
func (d *QUICDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	conn, err := quic.DialAddr(ctx, address, quicTLSConfig(d.TLSConfig), d.QUICConfig)
	if err != nil {
		return nil, err
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "failed to open stream") //nolint:errcheck
		return nil, err
	}

	return &quicConn{conn: conn, stream: stream}, nil
}

// QUICListener accepts MQTT connections over QUIC.
type QUICListener struct {
	listener *quic.Listener
}

// NewQUICListener listens on addr. TLS configuration is mandatory.
func NewQUICListener(addr string, tlsConfig *tls.Config, quicConfig *quic.Config) (*QUICListener, error) {
	if tlsConfig == nil {
		return nil, ErrTLSRequired
	}

	listener, err := quic.ListenAddr(addr, quicTLSConfig(tlsConfig), quicConfig)
	if err != nil {
		return nil, err
	}
	return &QUICListener{listener: listener}, nil
}

// Accept waits for the next connection and its packet stream.
func (l *QUICListener) Accept(ctx context.Context) (net.Conn, error) {
	conn, err := l.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		conn.CloseWithError(0, "failed to accept stream") //nolint:errcheck
		return nil, err
	}

	return &quicConn{conn: conn, stream: stream}, nil
}

// Close closes the listener.
func (l *QUICListener) Close() error {
	return l.listener.Close()
}

// Addr returns the listener's network address.
func (l *QUICListener) Addr() net.Addr {
	return l.listener.Addr()
}
