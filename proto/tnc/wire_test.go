// ABOUTME: Contract tests for the tnc wire codec
// ABOUTME: Round-trips every message and pins golden protobuf wire bytes

package tnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func roundTrip(t *testing.T, in, out wireMessage) {
	t.Helper()
	data, err := Codec{}.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, Codec{}.Unmarshal(data, out))
}

func testAny(t *testing.T) *anypb.Any {
	t.Helper()
	return &anypb.Any{
		TypeUrl: "type.googleapis.com/flowpro.icc.ftf.FtfStatus",
		Value:   []byte{0x08, 0x01, 0x10, 0x0b},
	}
}

// The wire bytes are standard protobuf: field 1, length-delimited, "r".
// Stubs generated from the shipped .proto must decode them unchanged.
func TestWire_GoldenBytes(t *testing.T) {
	data, err := (&PushRoute{Route: "r"}).marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x01, 'r'}, data)

	data, err = (&RouteEventAck{RoutingCount: 2}).marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x02}, data)

	data, err = (&RequestRoute{Route: "r", Policy: PolicyNext}).marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x01, 'r', 0x10, 0x03}, data)

	// Proto3 zero values are omitted entirely.
	data, err = (&PushRoute{}).marshal()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWire_EmbeddedAnyMatchesProtoMarshal(t *testing.T) {
	payload := testAny(t)
	data, err := (&PushEvent{Route: "r", Data: payload}).marshal()
	require.NoError(t, err)

	inner, err := proto.Marshal(payload)
	require.NoError(t, err)
	// field 1 "r", then field 2 length-delimited carrying the Any bytes.
	want := append([]byte{0x0a, 0x01, 'r', 0x12, byte(len(inner))}, inner...)
	assert.Equal(t, want, data)
}

func TestWire_RoutingMessagesRoundTrip(t *testing.T) {
	payload := testAny(t)

	in := &RequestEvent{Route: "flowpro.icc.ftf.Add", RequestId: 7, Data: payload}
	out := new(RequestEvent)
	roundTrip(t, in, out)
	assert.Equal(t, in.Route, out.Route)
	assert.Equal(t, in.RequestId, out.RequestId)
	assert.Equal(t, payload.TypeUrl, out.Data.TypeUrl)
	assert.Equal(t, payload.Value, out.Data.Value)

	resp := new(ResponseEvent)
	roundTrip(t, &ResponseEvent{Route: "r", RequestId: 9, Data: payload}, resp)
	assert.Equal(t, uint32(9), resp.RequestId)
}

func TestWire_CommunicationMessagesRoundTrip(t *testing.T) {
	payload := testAny(t)

	ch := new(ChannelEvent)
	roundTrip(t, &ChannelEvent{Id: "status", Data: payload, SourceId: "agent-1"}, ch)
	assert.Equal(t, "status", ch.Id)
	assert.Equal(t, "agent-1", ch.SourceId)
	assert.Equal(t, payload.Value, ch.Data.Value)

	ret := new(ReturnEvent)
	roundTrip(t, &ReturnEvent{CorrelationId: "c1", Error: "boom", SourceId: "a", SequenceNumber: 3}, ret)
	assert.Equal(t, "c1", ret.CorrelationId)
	assert.Equal(t, "boom", ret.Error)
	assert.Equal(t, int32(3), ret.SequenceNumber)
	assert.Nil(t, ret.Data)

	call := new(CallEvent)
	roundTrip(t, &CallEvent{Operation: "add", Data: payload, SourceId: "a", CorrelationId: "c2"}, call)
	assert.Equal(t, "add", call.Operation)
	assert.Equal(t, "c2", call.CorrelationId)
}

func TestWire_CommunicationOptionsPresence(t *testing.T) {
	// Absent fields stay nil; present fields survive even at zero values.
	empty := ""
	notFailFast := false
	in := &CommunicationOptions{Username: &empty, NotFailFastIfOffline: &notFailFast}
	out := new(CommunicationOptions)
	roundTrip(t, in, out)

	require.NotNil(t, out.Username)
	assert.Empty(t, *out.Username)
	require.NotNil(t, out.NotFailFastIfOffline)
	assert.False(t, *out.NotFailFastIfOffline)
	assert.Nil(t, out.Url)
	assert.Nil(t, out.VerifyServerCert)
}

func TestWire_LifecycleMessagesRoundTrip(t *testing.T) {
	in := &AgentLifecycleEvent{
		Identity: &AgentIdentity{Id: "a", Name: "AGV agent 1", Role: "TNC Agent"},
		Change:   LifecycleLeave,
		Local:    true,
	}
	out := new(AgentLifecycleEvent)
	roundTrip(t, in, out)

	require.NotNil(t, out.Identity)
	assert.Equal(t, "AGV agent 1", out.Identity.Name)
	assert.Equal(t, LifecycleLeave, out.Change)
	assert.True(t, out.Local)

	sel := new(AgentSelector)
	roundTrip(t, &AgentSelector{IdentityName: "/^AGV.*$/"}, sel)
	assert.Equal(t, "/^AGV.*$/", sel.IdentityName)
}

func TestWire_ConsensusMessagesRoundTrip(t *testing.T) {
	in := &ProposeInput{Id: "n1", Operation: RaftDelete, Key: "foo", Value: structpb.NewNumberValue(42)}
	out := new(ProposeInput)
	roundTrip(t, in, out)
	assert.Equal(t, "n1", out.Id)
	assert.Equal(t, RaftDelete, out.Operation)
	assert.Equal(t, "foo", out.Key)
	assert.Equal(t, float64(42), out.Value.GetNumberValue())

	state := new(State)
	roundTrip(t, &State{Entries: map[string]*structpb.Value{
		"foo": structpb.NewNumberValue(42),
		"bar": structpb.NewStringValue("x"),
	}}, state)
	require.Len(t, state.Entries, 2)
	assert.Equal(t, float64(42), state.Entries["foo"].GetNumberValue())
	assert.Equal(t, "x", state.Entries["bar"].GetStringValue())

	conf := new(ClusterConfiguration)
	roundTrip(t, &ClusterConfiguration{Ids: []string{"a", "b", "c"}}, conf)
	assert.Equal(t, []string{"a", "b", "c"}, conf.Ids)
}

func TestWire_EmptyMessages(t *testing.T) {
	for _, m := range []wireMessage{&EventAck{}, &ConsensusAck{}} {
		data, err := m.marshal()
		require.NoError(t, err)
		assert.Empty(t, data)
		require.NoError(t, m.unmarshal(nil))
	}
}

func TestWire_UnknownFieldsSkipped(t *testing.T) {
	// Field 15 varint is not part of PushRoute; decoding must skip it.
	data := []byte{0x0a, 0x01, 'r', 0x78, 0x2a}
	m := new(PushRoute)
	require.NoError(t, m.unmarshal(data))
	assert.Equal(t, "r", m.Route)
}

func TestCodec_ProtoMessagePassthrough(t *testing.T) {
	payload := testAny(t)

	data, err := Codec{}.Marshal(payload)
	require.NoError(t, err)
	out := new(anypb.Any)
	require.NoError(t, Codec{}.Unmarshal(data, out))
	assert.Equal(t, payload.TypeUrl, out.TypeUrl)
}

func TestCodec_RejectsForeignTypes(t *testing.T) {
	_, err := Codec{}.Marshal(42)
	assert.Error(t, err)
	assert.Error(t, Codec{}.Unmarshal(nil, 42))
}

func TestCodec_Name(t *testing.T) {
	assert.Equal(t, "proto", Codec{}.Name())
}
