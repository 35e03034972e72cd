package gram

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/hashicorp/go-metrics"
)

const (
	// recvBufferSize bounds a frame: a datagram larger than this is
	// truncated by the transport before the codec ever sees it.
	recvBufferSize = 64 << 10

	// sendBufferSize is only the initial capacity; the send buffer grows
	// with whatever the codec appends.
	sendBufferSize = 8 << 10
)

// Framed adapts a datagram transport into a typed message stream: `Recv`
// yields decoded `In` values, `Send`+`Flush` drive encoded `Out` values to
// their destinations, one datagram per frame in both directions.
//
// A Framed holds no locks. `Recv` must not be called concurrently with
// `Recv`, nor `Send`/`Flush`/`Close` concurrently with each other; the
// intended drive model is one goroutine per direction (or wrap the halves
// in a `Sender`/`Receiver` pump). The adapter owns the transport for the
// duration of its use; reclaim it with `Detach`.
type Framed[In, Out any] struct {
	conn  PacketConn
	codec Codec[In, Out]

	// rd is overwritten on every receive and never escapes a decode call.
	rd []byte

	// wr holds at most one pending, not-yet-fully-sent frame; non-empty
	// wr means a frame is in flight and no new frame may be started.
	wr      []byte
	outAddr net.Addr

	// recvErr is the sticky decode failure poisoning the receive side.
	recvErr  error
	detached bool

	logger  *slog.Logger
	msink   metrics.MetricSink
	mLabels []metrics.Label
}

// New wraps conn with codec. The adapter allocates a fixed 64 KiB receive
// buffer and an 8 KiB-initial-capacity growable send buffer; it does not
// bind, configure, or close the socket itself.
func New[In, Out any](conn PacketConn, codec Codec[In, Out], opts ...Option) (*Framed[In, Out], error) {
	var cfg config
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("gram: invalid options: %w", err)
		}
	}

	f := &Framed[In, Out]{
		conn:    conn,
		codec:   codec,
		rd:      make([]byte, recvBufferSize),
		wr:      make([]byte, 0, sendBufferSize),
		msink:   cfg.metricSink,
		mLabels: cfg.metricLabels,
	}

	if cfg.logHandler == nil {
		f.logger = slog.Default()
	} else {
		f.logger = slog.New(cfg.logHandler)
	}

	if f.msink == nil {
		f.msink = metrics.Default()
	}

	return f, nil
}

// Recv receives one datagram and decodes it into one value, reporting the
// transport's view of where it came from through the codec.
//
// Transport errors propagate as-is and do not poison the adapter: a
// not-ready error from a non-blocking transport simply means "call again
// when readable". A decode error is final; every subsequent Recv returns
// it without touching the socket.
func (f *Framed[In, Out]) Recv() (msg In, err error) {
	if f.detached {
		return msg, ErrDetached
	}
	if f.recvErr != nil {
		return msg, f.recvErr
	}

	n, src, err := f.conn.ReadFrom(f.rd)
	if err != nil {
		if !IsNotReady(err) {
			f.msink.IncrCounterWithLabels(
				MetricGramFrameInErrorCount,
				1.0,
				append(f.mLabels, LabelError.M("transport")),
			)
		}
		return msg, err
	}

	f.logger.Debug("received datagram", "bytes", n, "from", src)

	msg, err = f.codec.Decode(src, f.rd[:n])
	if err != nil {
		f.recvErr = fmt.Errorf("gram: decode: %w", err)
		f.msink.IncrCounterWithLabels(
			MetricGramFrameInErrorCount,
			1.0,
			append(f.mLabels, LabelError.M("decode")),
		)
		return msg, f.recvErr
	}

	f.msink.IncrCounterWithLabels(MetricGramFrameInBytes, float32(n), f.mLabels)
	return msg, nil
}

// Send encodes msg into the send buffer and records its destination.
//
// If a previous frame still occupies the buffer, Send first tries to
// drain it; if the transport is not ready, Send returns `ErrBackpressure`
// and msg stays with the caller, unconsumed. Exactly one frame occupies
// the buffer between a successful Send and full drain. An encode error
// commits nothing.
func (f *Framed[In, Out]) Send(msg Out) error {
	if f.detached {
		return ErrDetached
	}

	if len(f.wr) > 0 {
		err := f.Flush()
		if IsNotReady(err) {
			f.msink.IncrCounterWithLabels(
				MetricGramFrameRejectedCount,
				1.0,
				f.mLabels,
			)
			return ErrBackpressure
		}
		if err != nil {
			return err
		}
	}

	data, dst, err := f.codec.Encode(msg, f.wr[:0])
	if err != nil {
		return fmt.Errorf("gram: encode: %w", err)
	}

	f.wr = data
	f.outAddr = dst
	return nil
}

// Flush drives the pending frame to the transport. An empty buffer
// reports done immediately. A not-ready transport error is returned as-is
// with the frame kept for a later retry; any other completed or failed
// send attempt clears the buffer, since a datagram is all-or-nothing and
// there is no partial resend. A short write is fatal and satisfies
// `errors.Is(err, io.ErrShortWrite)`.
func (f *Framed[In, Out]) Flush() error {
	if f.detached {
		return ErrDetached
	}
	if len(f.wr) == 0 {
		return nil
	}

	f.logger.Debug("flushing frame", "bytes", len(f.wr), "to", f.outAddr)

	frame := len(f.wr)
	n, err := f.conn.WriteTo(f.wr, f.outAddr)
	if err != nil {
		if IsNotReady(err) {
			return err
		}
		f.clearSendBuffer()
		f.msink.IncrCounterWithLabels(
			MetricGramFrameOutErrorCount,
			1.0,
			append(f.mLabels, LabelError.M("transport")),
		)
		return err
	}

	f.clearSendBuffer()
	if n < frame {
		f.msink.IncrCounterWithLabels(
			MetricGramFrameOutErrorCount,
			1.0,
			append(f.mLabels, LabelError.M("short_write")),
		)
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, frame)
	}

	f.msink.IncrCounterWithLabels(MetricGramFrameOutBytes, float32(n), f.mLabels)
	return nil
}

// Close drains any pending frame to completion. There is no close
// handshake with a connectionless transport and the socket itself is left
// open: the caller still owns its lifecycle (see `Detach`).
func (f *Framed[In, Out]) Close() error {
	if f.detached {
		return ErrDetached
	}
	return f.Flush()
}

// Conn returns the underlying transport for inspection, or nil once
// `Detach` reclaimed it. Callers writing to or reading from it directly
// will corrupt the datagram stream.
func (f *Framed[In, Out]) Conn() PacketConn {
	return f.conn
}

// Detach consumes the adapter and hands back exclusive ownership of the
// transport. A buffered-but-unsent frame is dropped, which datagram
// semantics already permit at any point. Every later call on the adapter
// returns `ErrDetached`.
func (f *Framed[In, Out]) Detach() PacketConn {
	conn := f.conn
	f.conn = nil
	f.detached = true
	f.clearSendBuffer()
	return conn
}

func (f *Framed[In, Out]) clearSendBuffer() {
	f.wr = f.wr[:0]
	f.outAddr = nil
}
