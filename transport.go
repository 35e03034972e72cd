package gram

import "net"

// PacketConn is the datagram transport the adapter drives. It is the
// message-oriented subset of `net.PacketConn`, so `*net.UnixConn`,
// `*net.UDPConn` and any full `net.PacketConn` satisfy it out of the box;
// `pkg/memgram`, `pkg/quicgram` and `pkg/unixgram` provide more.
//
// One ReadFrom returns one whole datagram, truncated if p is too small.
// One WriteTo sends p as one datagram; frames larger than the transport's
// datagram limit fail here. Connected transports may ignore addr.
//
// Implementations may be blocking (park the goroutine until ready, as the
// `net` package does) or non-blocking: the latter signal "not ready" with
// an error satisfying `IsNotReady`, which the adapter treats as retryable.
type PacketConn interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
}
