// ABOUTME: Tests for the payload codec between wire Any and bus object forms
// ABOUTME: Covers bitwise round-trips, nil payloads, and malformed base64

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/anypb"
)

func TestToBus_PacksTypeUrlAndBase64(t *testing.T) {
	wire := &anypb.Any{
		TypeUrl: "type.googleapis.com/flowpro.icc.ftf.FtfStatus",
		Value:   []byte{0x08, 0x01, 0x10, 0x0b},
	}

	obj := ToBus(wire)

	assert.Equal(t, "type.googleapis.com/flowpro.icc.ftf.FtfStatus", obj.ObjectType)
	assert.Equal(t, "CAEQCw==", obj.Value)
	assert.Empty(t, obj.SourceId)
}

func TestRoundTrip_IsBitwiseIdentical(t *testing.T) {
	cases := []struct {
		name  string
		wire  *anypb.Any
	}{
		{
			name: "small payload",
			wire: &anypb.Any{TypeUrl: "type.googleapis.com/flowpro.icc.ftf.Add", Value: []byte{0x2a, 0x02}},
		},
		{
			name: "empty value",
			wire: &anypb.Any{TypeUrl: "type.googleapis.com/google.protobuf.Empty", Value: []byte{}},
		},
		{
			name: "binary payload",
			wire: &anypb.Any{TypeUrl: "x", Value: []byte{0x00, 0xff, 0x7f, 0x80, 0x01}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			back, err := FromBus(ToBus(tc.wire))
			require.NoError(t, err)
			require.NotNil(t, back)
			assert.Equal(t, tc.wire.TypeUrl, back.TypeUrl)
			assert.Equal(t, tc.wire.Value, back.Value)
		})
	}
}

func TestToBus_NilPayload(t *testing.T) {
	obj := ToBus(nil)
	assert.Empty(t, obj.ObjectType)
	assert.Empty(t, obj.Value)

	back, err := FromBus(obj)
	require.NoError(t, err)
	assert.Nil(t, back)
}

func TestFromBus_MalformedBase64(t *testing.T) {
	_, err := FromBus(Object{ObjectType: "x", Value: "not-base64!!!"})
	assert.Error(t, err)
}

func TestFromBus_PreservesSourceIdIndependence(t *testing.T) {
	// The source id travels beside the payload and never affects the bytes.
	obj := Object{ObjectType: "x", Value: "CAE=", SourceId: "agent-1"}
	back, err := FromBus(obj)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x01}, back.Value)
}
