package gram

import (
	"context"
	"io"
	"sync"
)

// RawReceiver is the non-thread-safe, blocking receive half of an
// adapter. `*Framed` satisfies it. Methods MUST NOT be called
// concurrently.
type RawReceiver[In any] interface {
	Recv() (In, error)
	Close() error
}

// Receiver is a thread-safe, buffered wrapper around the receive half of
// an adapter: a single pump goroutine decodes frames into a channel
// consumed via `Recv`.
//
// Close stops the pump even when no datagram ever arrives: when the raw
// half exposes its transport (as `*Framed` does through `Conn`) and that
// transport is an `io.Closer`, the transport is closed to interrupt the
// pending receive. A Receiver therefore owns the socket of the half it
// wraps; don't hand it a socket that must outlive it.
type Receiver[In any] struct {
	raw RawReceiver[In]

	readCh     chan In
	closeCh    chan struct{}
	mainLoopWg sync.WaitGroup

	// handle Close sync.
	err error
	lk  sync.Mutex
}

func NewReceiver[In any](raw RawReceiver[In], bufferSize uint) *Receiver[In] {
	r := &Receiver[In]{
		raw: raw,

		readCh:  make(chan In, bufferSize),
		closeCh: make(chan struct{}),
	}

	r.mainLoopWg.Add(1)
	go r.run()

	return r
}

// Recv returns the next decoded value, already-buffered values first.
// After the pump stopped, it drains the buffer then reports the cause.
func (r *Receiver[In]) Recv(ctx context.Context) (result In, err error) {
	r.lk.Lock()
	if r.err != nil && len(r.readCh) == 0 {
		r.lk.Unlock()
		return result, r.err
	}
	r.lk.Unlock()

	select {
	case <-ctx.Done():
		return result, ctx.Err()
	case elem, ok := <-r.readCh:
		if !ok {
			return result, r.err
		}
		return elem, nil
	}
}

func (r *Receiver[In]) Close() error {
	return r.closeWith(ErrClosed, true)
}

func (r *Receiver[In]) closeWith(cause error, mustWait bool) error {
	r.lk.Lock()
	if r.err != nil {
		r.lk.Unlock()
		return nil
	}
	r.err = cause
	close(r.closeCh)
	err := r.raw.Close()
	r.stopTransport()
	r.lk.Unlock()
	if mustWait {
		r.mainLoopWg.Wait()
	}
	close(r.readCh)
	return err
}

// stopTransport interrupts a pending raw.Recv by closing the underlying
// transport, where the raw half exposes one that can be closed.
func (r *Receiver[In]) stopTransport() {
	rt, ok := r.raw.(interface{ Conn() PacketConn })
	if !ok {
		return
	}
	if closer, ok := rt.Conn().(io.Closer); ok {
		closer.Close()
	}
}

func (r *Receiver[In]) run() {
	defer r.mainLoopWg.Done()
	for {
		msg, err := r.raw.Recv()
		if err != nil {
			_ = r.closeWith(err, false)
			return
		}

		select {
		case <-r.closeCh:
			return
		case r.readCh <- msg:
		}
	}
}
