package codec

import (
	"net"

	"github.com/brickmesh/gram"
	"github.com/fxamacker/cbor/v2"
)

type cborCodec[T any] struct {
	em cbor.EncMode
}

// CBOR encodes payloads as canonical CBOR. cbor reports
// `*cbor.ExtraneousDataError` when a datagram holds more than one
// message.
func CBOR[T any]() gram.Codec[gram.Message[T], gram.Message[T]] {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		// the options are constant, this cannot happen
		panic(err)
	}
	return cborCodec[T]{em: em}
}

func (c cborCodec[T]) Decode(src net.Addr, data []byte) (gram.Message[T], error) {
	var body T
	if err := cbor.Unmarshal(data, &body); err != nil {
		return gram.Message[T]{}, err
	}
	return gram.Message[T]{Addr: src, Body: body}, nil
}

func (c cborCodec[T]) Encode(msg gram.Message[T], buf []byte) ([]byte, net.Addr, error) {
	data, err := c.em.Marshal(msg.Body)
	if err != nil {
		return nil, nil, err
	}
	return append(buf, data...), msg.Addr, nil
}
