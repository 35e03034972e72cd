package gram

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	// ErrBackpressure is returned by `Framed.Send` when the previous frame
	// has not fully drained and the transport refused to take it right now.
	// The rejected value stays with the caller; retry after the transport
	// becomes writable again.
	ErrBackpressure = errors.New("gram: send buffer occupied by an in-flight frame")

	// ErrWouldBlock signals a non-blocking transport that is not ready.
	// Transports may return it (or wrap it) from ReadFrom/WriteTo; the
	// adapter treats it as retryable and never poisons its state on it.
	ErrWouldBlock = errors.New("gram: transport not ready")

	// ErrDetached is returned by every operation after `Framed.Detach`
	// reclaimed the underlying socket.
	ErrDetached = errors.New("gram: adapter detached from its transport")

	// ErrClosed is the cause recorded by `Sender` and `Receiver` pumps
	// when the user closed them.
	ErrClosed = errors.New("gram: closed")

	// ErrShortWrite is returned when the transport reports fewer bytes
	// written than the frame holds. A partial datagram cannot be resent,
	// so this is always fatal to the frame.
	ErrShortWrite = fmt.Errorf("gram: failed to write entire datagram to socket: %w", io.ErrShortWrite)
)

// IsNotReady reports whether err is a retryable "transport not ready"
// condition: `ErrWouldBlock`, a `net.Error` timeout (deadline-driven use of
// real sockets), or EAGAIN from a raw non-blocking descriptor.
func IsNotReady(err error) bool {
	if errors.Is(err, ErrWouldBlock) || errors.Is(err, syscall.EAGAIN) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
