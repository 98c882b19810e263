package analysis

import (
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of the msgpack codec.
const CodecName = "msgpack"

func init() { //nolint:gochecknoinits // gRPC looks codecs up in a process-wide registry.
	encoding.RegisterCodec(codec{})
}

// codec marshals messages with msgpack.
type codec struct{}

// Marshal implements encoding.Codec.
func (codec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal implements encoding.Codec.
func (codec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Name implements encoding.Codec.
func (codec) Name() string {
	return CodecName
}
