// Package gram turns a connectionless, datagram-oriented socket into a
// typed, bidirectional stream of application-level messages.
//
// The central piece is `Framed`, an adapter sitting between a datagram
// transport (a Unix datagram socket, a UDP socket, a QUIC connection's
// datagram channel, ...) and application code which wants to produce and
// consume whole messages paired with peer addresses, without ever touching
// raw buffers or partial I/O.
//
// ## How it works
//
// A `Framed` composes three things: a `PacketConn` (the transport), a
// `Codec` (how bytes become values and back), and two internal buffers it
// owns exclusively. Inbound, each datagram is received into a reused buffer
// and handed, together with its source address, to `Codec.Decode`; the
// decoded value is yielded to the caller. Outbound, `Codec.Encode`
// serializes a value into the send buffer and computes the destination
// address; the adapter then drives that buffer to the transport.
//
// One datagram is always exactly one frame. The adapter buffers at most one
// outgoing frame at a time: while a frame is in flight, `Framed.Send`
// rejects new values with `ErrBackpressure` instead of queueing them, so
// memory stays bounded and the caller gets an explicit, synchronous signal
// to retry.
//
// ## Design Principles
//
// > `gram` is **transport-agnostic**, **codec-driven**, and **minimalist**.
//
// The adapter defines no wire format of its own: addressing and encoding
// belong entirely to the `Codec`. It provides no reliability, ordering,
// retransmission, or fragmentation either; datagram transports guarantee
// none of those, and APIs MUST NOT model an *infallible* network. Users
// MUST be ready to handle loss and errors themselves.
//
// Concrete codecs (raw bytes, JSON, CBOR, msgpack, protobuf) live in
// `pkg/codec`; ready-made transports live in `pkg/memgram` (in-process),
// `pkg/quicgram` (QUIC datagrams) and `pkg/unixgram` (Unix datagram
// sockets).
package gram
