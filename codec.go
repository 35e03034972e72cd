package gram

import "net"

// Codec translates between raw datagram bytes (+ peer address) and typed
// application values. Implementations own no socket resources; they are
// mutated only by Decode/Encode calls and live as long as the adapter.
type Codec[In, Out any] interface {
	// Decode is given exactly the bytes of one received datagram and the
	// address it came from, and must produce one decoded value or fail.
	// The whole buffer is one unit: trailing unconsumed bytes are a decode
	// error wherever the format can detect them. `data` aliases the
	// adapter's receive buffer and MUST NOT be retained after the call.
	//
	// A decode error permanently fails the receive side of the adapter.
	// Datagram boundaries make resynchronization meaningless, so the error
	// is surfaced rather than skipped.
	Decode(src net.Addr, data []byte) (In, error)

	// Encode appends the serialized form of msg to buf and returns the
	// resulting slice together with the address the datagram should be
	// sent to. buf always arrives with length zero; the codec fully
	// controls addressing, and dst may be nil for connected transports.
	Encode(msg Out, buf []byte) (data []byte, dst net.Addr, err error)
}

// Message pairs a payload with a peer address: the source on receive, the
// destination on send. The codecs in `pkg/codec` all carry their payloads
// inside a Message so applications see "value + peer" without inventing
// per-codec envelope types.
type Message[T any] struct {
	// Addr is nil when sending over a connected transport.
	Addr net.Addr
	Body T
}
