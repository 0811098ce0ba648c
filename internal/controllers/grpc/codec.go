package grpc

import (
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype the run service is spoken in
// (application/grpc+msgpack).
const CodecName = "msgpack"

func init() {
	encoding.RegisterCodec(codec{})
}

// codec marshals the run service messages with msgpack.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

func (codec) Name() string {
	return CodecName
}
