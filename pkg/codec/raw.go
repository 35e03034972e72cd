package codec

import (
	"net"

	"github.com/brickmesh/gram"
)

type rawCodec struct{}

// Raw passes payload bytes through untouched. Decode copies them out of
// the adapter's receive buffer, so the returned message owns its bytes.
func Raw() gram.Codec[gram.Message[[]byte], gram.Message[[]byte]] {
	return rawCodec{}
}

func (rawCodec) Decode(src net.Addr, data []byte) (gram.Message[[]byte], error) {
	body := make([]byte, len(data))
	copy(body, data)
	return gram.Message[[]byte]{Addr: src, Body: body}, nil
}

func (rawCodec) Encode(msg gram.Message[[]byte], buf []byte) ([]byte, net.Addr, error) {
	return append(buf, msg.Body...), msg.Addr, nil
}
