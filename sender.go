package gram

import (
	"context"
	"sync"
)

// RawSender is the non-thread-safe, blocking send half of an adapter.
// `*Framed` satisfies it. Methods MUST NOT be called concurrently.
type RawSender[Out any] interface {
	Send(Out) error
	Flush() error
	Close() error
}

// Sender is a thread-safe, buffered wrapper around the send half of an
// adapter: `Send` enqueues, a single pump goroutine encodes and flushes
// one frame per message, so frames never interleave. It is meant for
// blocking transports; non-blocking callers drive a `Framed` directly.
type Sender[Out any] struct {
	raw RawSender[Out]

	writeCh    chan Out
	closeCh    chan struct{}
	mainLoopWg sync.WaitGroup

	// handle Close sync.
	writer sync.WaitGroup
	err    error
	lk     sync.Mutex
}

func NewSender[Out any](raw RawSender[Out], bufferSize uint) *Sender[Out] {
	w := &Sender[Out]{
		raw: raw,

		writeCh: make(chan Out, bufferSize),
		closeCh: make(chan struct{}),
	}

	w.mainLoopWg.Add(1)
	go w.run()

	return w
}

func (w *Sender[Out]) Send(ctx context.Context, msg Out) error {
	w.lk.Lock()
	if w.err != nil {
		w.lk.Unlock()
		return w.err
	}
	w.writer.Add(1)
	defer w.writer.Done()
	w.lk.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.closeCh:
		return w.err
	case w.writeCh <- msg:
	}

	return nil
}

// Close stops accepting messages, lets the pump drain what was already
// enqueued, and closes the raw half only after the pump goroutine has
// exited, so the non-thread-safe raw half is never touched from two
// goroutines. The first cause wins; a Close after an error or a previous
// Close just waits for the pump and returns nil.
func (w *Sender[Out]) Close() error {
	first := w.closeWith(ErrClosed)
	w.mainLoopWg.Wait()
	if !first {
		return nil
	}
	return w.raw.Close()
}

// closeWith records the cause and seals writeCh. It reports whether this
// call was the one that closed the Sender; whoever it was owns the
// raw.Close, and must only do it once the pump is no longer running.
func (w *Sender[Out]) closeWith(cause error) bool {
	w.lk.Lock()
	defer w.lk.Unlock()
	if w.err != nil {
		return false
	}
	w.err = cause
	close(w.closeCh)
	w.writer.Wait()
	close(w.writeCh)
	return true
}

func (w *Sender[Out]) run() {
	defer w.mainLoopWg.Done()
	for {
		msg, ok := <-w.writeCh
		if !ok {
			return
		}

		err := w.raw.Send(msg)
		if err == nil {
			err = w.raw.Flush()
		}
		if err != nil {
			// already running on the pump goroutine: closing raw
			// here cannot race with the drain loop
			if w.closeWith(err) {
				w.raw.Close()
			}
			return
		}
	}
}
