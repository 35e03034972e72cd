// Package quicgram exposes a QUIC connection's unreliable datagram
// channel as a `gram.PacketConn`. The connection must have been
// established with `EnableDatagrams` on both ends.
package quicgram

import (
	"net"

	"github.com/quic-go/quic-go"
)

// Conn adapts one `quic.Connection`. QUIC datagrams are connected: the
// peer is fixed, so WriteTo ignores its address argument and ReadFrom
// always reports the connection's remote address.
type Conn struct {
	qc quic.Connection
}

func Wrap(qc quic.Connection) *Conn {
	return &Conn{qc: qc}
}

// ReadFrom blocks until a datagram arrives or the connection dies. A
// datagram larger than p is truncated.
func (c *Conn) ReadFrom(p []byte) (int, net.Addr, error) {
	buf, err := c.qc.ReceiveDatagram(c.qc.Context())
	if err != nil {
		return 0, nil, err
	}
	return copy(p, buf), c.qc.RemoteAddr(), nil
}

// WriteTo sends p as one QUIC datagram. Frames above the connection's
// datagram size limit fail here with quic-go's
// `*quic.DatagramTooLargeError`.
func (c *Conn) WriteTo(p []byte, _ net.Addr) (int, error) {
	if err := c.qc.SendDatagram(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) LocalAddr() net.Addr  { return c.qc.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.qc.RemoteAddr() }
