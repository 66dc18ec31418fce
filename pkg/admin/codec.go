package admin

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a grpc/encoding.Codec marshaling messages as JSON
// instead of protobuf wire bytes, since this environment has no
// protoc step to generate real protobuf stubs from.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Registering the codec lets a grpc.ClientConn select it per call via
// grpc.CallContentSubtype("json"); the server instead forces it
// unconditionally with grpc.ForceServerCodec.
func init() {
	encoding.RegisterCodec(jsonCodec{})
}
