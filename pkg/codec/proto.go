package codec

import (
	"net"

	"github.com/brickmesh/gram"
	"google.golang.org/protobuf/proto"
)

type protoCodec[Msg proto.Message] struct{}

// Proto encodes protobuf payloads. Msg must be a pointer-to-generated
// type; Decode allocates a fresh message per datagram.
func Proto[Msg proto.Message]() gram.Codec[gram.Message[Msg], gram.Message[Msg]] {
	return protoCodec[Msg]{}
}

func (protoCodec[Msg]) Decode(src net.Addr, data []byte) (gram.Message[Msg], error) {
	var zero Msg
	allocated := zero.ProtoReflect().New().Interface().(Msg)
	if err := proto.Unmarshal(data, allocated); err != nil {
		return gram.Message[Msg]{}, err
	}
	return gram.Message[Msg]{Addr: src, Body: allocated}, nil
}

func (protoCodec[Msg]) Encode(msg gram.Message[Msg], buf []byte) ([]byte, net.Addr, error) {
	data, err := proto.MarshalOptions{}.MarshalAppend(buf, msg.Body)
	if err != nil {
		return nil, nil, err
	}
	return data, msg.Addr, nil
}
