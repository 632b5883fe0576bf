// ABOUTME: Payload codec between the gRPC Any wire form and the bus object form
// ABOUTME: Base64-packs opaque typed bytes so they traverse the JSON bus unchanged

package codec

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/types/known/anypb"
)

// Object is the bus representation of an opaque typed payload. The payload
// body is never decoded; it rides as base64 text inside a JSON object.
type Object struct {
	ObjectType string `json:"objectType"`
	Value      string `json:"value"`
	SourceId   string `json:"sourceId,omitempty"`
}

// ToBus converts a wire payload into its bus object form. A nil payload
// yields a zero Object so that events without data stay publishable.
func ToBus(wire *anypb.Any) Object {
	if wire == nil {
		return Object{}
	}
	return Object{
		ObjectType: wire.TypeUrl,
		Value:      base64.StdEncoding.EncodeToString(wire.Value),
	}
}

// FromBus converts a bus object back into its wire payload form. The
// round-trip FromBus(ToBus(x)) is bitwise identical to x.
func FromBus(obj Object) (*anypb.Any, error) {
	if obj.ObjectType == "" && obj.Value == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(obj.Value)
	if err != nil {
		return nil, fmt.Errorf("decoding payload value: %w", err)
	}
	return &anypb.Any{
		TypeUrl: obj.ObjectType,
		Value:   raw,
	}, nil
}
