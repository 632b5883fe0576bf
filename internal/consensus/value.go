// ABOUTME: Tagged value handling for replicated state machine inputs
// ABOUTME: Exactly-one-variant validation plus JSON and proto conversions

package consensus

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// ErrInvalidValue rejects values without a legal variant tag.
var ErrInvalidValue = errors.New("value must have exactly one variant set")

// normalizeValue substitutes the null value for an unset input and rejects
// values whose variant tag is missing.
func normalizeValue(v *structpb.Value) (*structpb.Value, error) {
	if v == nil {
		return structpb.NewNullValue(), nil
	}
	if v.Kind == nil {
		return nil, ErrInvalidValue
	}
	return v, nil
}

// encodeValue serializes a tagged value to the JSON form replicated through
// the raft log.
func encodeValue(v *structpb.Value) (json.RawMessage, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("serializing value: %w", err)
	}
	return data, nil
}

// stateToProto converts a state machine snapshot into its gRPC form.
func stateToProto(state map[string]any) (*tnc.State, error) {
	entries := make(map[string]*structpb.Value, len(state))
	for key, v := range state {
		sv, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("converting state entry %q: %w", key, err)
		}
		entries[key] = sv
	}
	return &tnc.State{Entries: entries}, nil
}
