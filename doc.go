// Package mqtt implements the MQTT wire protocol (versions 3.1.1 and 5.0)
// as a buffer-oriented packet codec and a sans-I/O protocol engine.
//
// The two halves are deliberately decoupled:
//
//   - The wire codec turns byte buffers into typed packets and back. It is
//     stateless and pure: Decode never reads from the network, never blocks,
//     and reports an incomplete buffer with ErrIncomplete so callers can do
//     their own framing.
//
//   - The protocol engine drives one session: connection handshake,
//     keep-alive, and the QoS 0/1/2 acknowledgement flows. Every operation
//     returns the packets to transmit and the application-visible events;
//     the engine performs no I/O and spawns no goroutines.
//
// # Codec
//
// Decode takes a contiguous buffer and the protocol version negotiated for
// the connection:
//
//	pkt, n, err := mqtt.Decode(buf, mqtt.Version5)
//	if errors.Is(err, mqtt.ErrIncomplete) {
//		// read more bytes, try again
//	}
//
// Decoded packets borrow their byte-slice fields (payloads, binary
// properties, passwords) from the input buffer. The packet is only valid as
// long as the buffer is not reused; call Clone on the packet or message to
// take an owned copy before recycling the buffer.
//
// # Engine
//
// An Engine is owned by exactly one connection loop and must not be shared
// between goroutines without external locking:
//
//	e := mqtt.NewEngine(mqtt.Version5)
//	out, events, err := e.Connect(mqtt.ConnectOptions{ClientID: "dev-1", KeepAlive: 30})
//	// transmit out, handle events, then feed inbound packets:
//	out, events, err = e.Deliver(pkt)
//	// and drive time cooperatively:
//	out, events, err = e.Tick(time.Now())
//
// Transport framing over TCP, Unix sockets, WebSocket and QUIC lives in the
// Conn type and its dial helpers; those are optional glue and carry no
// protocol state.
package mqtt
