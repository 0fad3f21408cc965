// Package grpc is the RPC transport: the same command/query UseCase pair
// the REST transport in internal/adapters/http/in dispatches onto, wired
// onto a hand-registered grpc.ServiceDesc instead of a generated one. There
// is no .proto in this tree; the wire messages are the same mmodel structs
// REST already carries, marshaled with the json codec registered below
// rather than protobuf.
package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

// jsonCodec replaces grpc-go's default proto codec so request/response
// structs can be plain Go structs instead of generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
