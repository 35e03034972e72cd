//go:build unix

// Package unixgram holds the plumbing for Unix datagram sockets: binding,
// connected pairs, and a socketpair helper. The adapter itself never
// binds or unlinks anything, so socket-file cleanup stays with the
// caller.
package unixgram

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listen binds an unconnected datagram socket at path. The caller removes
// the socket file when done.
func Listen(path string) (*net.UnixConn, error) {
	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, fmt.Errorf("unixgram: invalid path: %w", err)
	}
	return net.ListenUnixgram("unixgram", addr)
}

// Dial returns a connected datagram socket from local to remote. local
// may be empty for an unbound (send-only) socket.
func Dial(local, remote string) (*net.UnixConn, error) {
	var laddr *net.UnixAddr
	if local != "" {
		var err error
		laddr, err = net.ResolveUnixAddr("unixgram", local)
		if err != nil {
			return nil, fmt.Errorf("unixgram: invalid local path: %w", err)
		}
	}
	raddr, err := net.ResolveUnixAddr("unixgram", remote)
	if err != nil {
		return nil, fmt.Errorf("unixgram: invalid remote path: %w", err)
	}
	return net.DialUnix("unixgram", laddr, raddr)
}

// PairConn is one end of an anonymous socketpair. The ends are
// pre-connected, so WriteTo ignores its address argument.
type PairConn struct {
	*net.UnixConn
}

func (p PairConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, err := p.UnixConn.Read(b)
	return n, p.UnixConn.RemoteAddr(), err
}

func (p PairConn) WriteTo(b []byte, _ net.Addr) (int, error) {
	return p.UnixConn.Write(b)
}

// Pair returns both ends of an AF_UNIX SOCK_DGRAM socketpair, each usable
// as a `gram.PacketConn`. Handy for talking to a child process or for
// loopback tests without touching the filesystem.
func Pair() (PairConn, PairConn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		return PairConn{}, PairConn{}, fmt.Errorf("unixgram: socketpair: %w", err)
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])

	c0, err := fileConn(fds[0])
	if err != nil {
		unix.Close(fds[1])
		return PairConn{}, PairConn{}, err
	}
	c1, err := fileConn(fds[1])
	if err != nil {
		c0.Close()
		return PairConn{}, PairConn{}, err
	}
	return PairConn{c0}, PairConn{c1}, nil
}

func fileConn(fd int) (*net.UnixConn, error) {
	f := os.NewFile(uintptr(fd), "socketpair")
	defer f.Close()
	conn, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("unixgram: importing socketpair end: %w", err)
	}
	uconn, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("unixgram: unexpected conn type %T", conn)
	}
	return uconn, nil
}
