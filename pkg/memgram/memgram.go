// Package memgram is a process-local datagram network for tests and
// examples. It keeps datagram semantics honest: payloads are copied on
// send, oversized reads truncate, and a full inbox drops the datagram
// instead of blocking the sender.
package memgram

import (
	"errors"
	"net"
	"sync"
)

const inboxDepth = 128

var (
	ErrAddrInUse   = errors.New("memgram: address already in use")
	ErrUnknownAddr = errors.New("memgram: no such address")
)

// Addr is a node name on a `Network`.
type Addr string

func (a Addr) Network() string { return "mem" }
func (a Addr) String() string  { return string(a) }

// Network routes datagrams between the conns registered on it.
type Network struct {
	lk    sync.RWMutex
	nodes map[Addr]*Conn
}

func NewNetwork() *Network {
	return &Network{
		nodes: make(map[Addr]*Conn),
	}
}

// Listen registers a conn under name.
func (n *Network) Listen(name string) (*Conn, error) {
	n.lk.Lock()
	defer n.lk.Unlock()

	addr := Addr(name)
	if _, taken := n.nodes[addr]; taken {
		return nil, ErrAddrInUse
	}

	c := &Conn{
		network: n,
		addr:    addr,
		inbox:   make(chan packet, inboxDepth),
		closeCh: make(chan struct{}),
	}
	n.nodes[addr] = c
	return c, nil
}

type packet struct {
	data []byte
	from Addr
}

// Conn is one node of an in-memory datagram network. It satisfies
// `gram.PacketConn`.
type Conn struct {
	network *Network
	addr    Addr

	inbox     chan packet
	closeCh   chan struct{}
	closeOnce sync.Once
}

func (c *Conn) LocalAddr() net.Addr { return c.addr }

// ReadFrom blocks until a datagram arrives or the conn is closed. A
// datagram larger than p is truncated, as on a kernel socket.
func (c *Conn) ReadFrom(p []byte) (int, net.Addr, error) {
	select {
	case <-c.closeCh:
		return 0, nil, net.ErrClosed
	case pkt := <-c.inbox:
		return copy(p, pkt.data), pkt.from, nil
	}
}

// WriteTo delivers p to addr's inbox, or silently drops it when the inbox
// is full. Dropping is deliberate: a full receiver loses datagrams, it
// does not exert backpressure across the network.
func (c *Conn) WriteTo(p []byte, addr net.Addr) (int, error) {
	select {
	case <-c.closeCh:
		return 0, net.ErrClosed
	default:
	}

	c.network.lk.RLock()
	target, ok := c.network.nodes[Addr(addr.String())]
	c.network.lk.RUnlock()
	if !ok {
		return 0, ErrUnknownAddr
	}

	data := make([]byte, len(p))
	copy(data, p)

	select {
	case target.inbox <- packet{data: data, from: c.addr}:
	default:
	}
	return len(p), nil
}

// Close unregisters the conn and interrupts a pending ReadFrom.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.network.lk.Lock()
		delete(c.network.nodes, c.addr)
		c.network.lk.Unlock()
	})
	return nil
}
