// Package codec provides ready-made `gram.Codec` implementations, one
// constructor per encoding.
//
// All of them carry their payload in a `gram.Message`: on decode, the
// message is stamped with the datagram's source address; on encode, the
// message's address is the destination (nil for connected transports).
package codec

import "errors"

var (
	// ErrTrailingBytes reports a datagram holding more bytes than one
	// encoded message. One datagram is one frame; leftovers mean the
	// peer speaks a different framing and decoding must fail.
	ErrTrailingBytes = errors.New("codec: trailing bytes after message")
)
