// Package rpc carries the Connect plumbing shared by the server and its clients.
//
// Messages are plain Go structs encoded as JSON, so handlers and clients must
// be built with HandlerOptions (handlers) or ClientOptions (clients).
package rpc

import (
	"connectrpc.com/connect"
	"github.com/goccy/go-json"
)

const (
	codecJSON        = "json"
	codecJSONCharset = "json; charset=utf-8"
)

// jsonCodec implements connect.Codec over goccy/go-json.
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string { return c.name }

func (c jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// HandlerOptions registers the JSON codec under both content-type spellings,
// replacing the protobuf JSON codec.
func HandlerOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: codecJSON}),
		connect.WithCodec(jsonCodec{name: codecJSONCharset}),
	}
}

// ClientOptions makes a Connect client speak the JSON codec.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{connect.WithCodec(jsonCodec{name: codecJSON})}
}
