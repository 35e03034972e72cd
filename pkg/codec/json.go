package codec

import (
	"encoding/json"
	"net"

	"github.com/brickmesh/gram"
)

type jsonCodec[T any] struct{}

// JSON encodes payloads with `encoding/json`. `json.Unmarshal` already
// rejects trailing data, which keeps the one-datagram-one-message rule.
func JSON[T any]() gram.Codec[gram.Message[T], gram.Message[T]] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Decode(src net.Addr, data []byte) (gram.Message[T], error) {
	var body T
	if err := json.Unmarshal(data, &body); err != nil {
		return gram.Message[T]{}, err
	}
	return gram.Message[T]{Addr: src, Body: body}, nil
}

func (jsonCodec[T]) Encode(msg gram.Message[T], buf []byte) ([]byte, net.Addr, error) {
	data, err := json.Marshal(msg.Body)
	if err != nil {
		return nil, nil, err
	}
	return append(buf, data...), msg.Addr, nil
}
