package codec

import (
	"bytes"
	"fmt"
	"net"

	"github.com/brickmesh/gram"
	"github.com/vmihailenco/msgpack/v4"
)

type msgpackCodec[T any] struct{}

// Msgpack encodes payloads as MessagePack. msgpack happily stops at the
// first complete value, so Decode checks for leftovers itself.
func Msgpack[T any]() gram.Codec[gram.Message[T], gram.Message[T]] {
	return msgpackCodec[T]{}
}

func (msgpackCodec[T]) Decode(src net.Addr, data []byte) (gram.Message[T], error) {
	var body T
	rd := bytes.NewReader(data)
	if err := msgpack.NewDecoder(rd).Decode(&body); err != nil {
		return gram.Message[T]{}, fmt.Errorf("could not decode msgpack: %w", err)
	}
	if rd.Len() > 0 {
		return gram.Message[T]{}, fmt.Errorf("%w: %d left", ErrTrailingBytes, rd.Len())
	}
	return gram.Message[T]{Addr: src, Body: body}, nil
}

func (msgpackCodec[T]) Encode(msg gram.Message[T], buf []byte) ([]byte, net.Addr, error) {
	data, err := msgpack.Marshal(msg.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("could not encode msgpack: %w", err)
	}
	return append(buf, data...), msg.Addr, nil
}
