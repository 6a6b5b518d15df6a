// Package rpc declares the connect procedures, messages, handler interfaces
// and clients of the savetrack.v1 services. Messages are plain Go structs
// carried by a JSON codec.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

const (
	codecNameJSON            = "json"
	codecNameJSONCharsetUTF8 = codecNameJSON + "; charset=utf-8"
)

// jsonCodec marshals messages with encoding/json. It is registered under the
// names connect uses for its protobuf JSON codec, so the wire content type
// stays application/json.
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON configures a handler or client to use the JSON codec. Clients
// send plain application/json.
func WithJSON() connect.Option {
	return connect.WithOptions(
		connect.WithCodec(jsonCodec{name: codecNameJSONCharsetUTF8}),
		connect.WithCodec(jsonCodec{name: codecNameJSON}),
	)
}
