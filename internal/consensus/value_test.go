// ABOUTME: Tests for tagged value normalization and state conversions
// ABOUTME: Null substitution, missing variant tags, proto round-trips

package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestNormalizeValue_UnsetBecomesNull(t *testing.T) {
	v, err := normalizeValue(nil)
	require.NoError(t, err)
	_, isNull := v.Kind.(*structpb.Value_NullValue)
	assert.True(t, isNull)
}

func TestNormalizeValue_MissingVariantTagRejected(t *testing.T) {
	_, err := normalizeValue(&structpb.Value{})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestNormalizeValue_TaggedValuePassesThrough(t *testing.T) {
	v, err := normalizeValue(structpb.NewNumberValue(42))
	require.NoError(t, err)
	assert.Equal(t, float64(42), v.GetNumberValue())
}

func TestEncodeValue(t *testing.T) {
	raw, err := encodeValue(structpb.NewNumberValue(42))
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(raw))

	raw, err = encodeValue(structpb.NewNullValue())
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(raw))

	raw, err = encodeValue(structpb.NewStringValue("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `"x"`, string(raw))
}

func TestStateToProto(t *testing.T) {
	state := map[string]any{
		"foo":  float64(42),
		"bar":  "text",
		"nil":  nil,
		"list": []any{float64(1), float64(2)},
	}

	out, err := stateToProto(state)
	require.NoError(t, err)
	require.Len(t, out.Entries, 4)
	assert.Equal(t, float64(42), out.Entries["foo"].GetNumberValue())
	assert.Equal(t, "text", out.Entries["bar"].GetStringValue())
	_, isNull := out.Entries["nil"].Kind.(*structpb.Value_NullValue)
	assert.True(t, isNull)
	assert.Len(t, out.Entries["list"].GetListValue().Values, 2)
}
