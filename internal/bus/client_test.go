// ABOUTME: Tests for bus client pieces that run without a broker connection
// ABOUTME: Identity event decoding, inbound call responders, TLS assembly

package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpro/tnc-gateway/internal/codec"
)

func codecObject(objectType, value string) codec.Object {
	return codec.Object{ObjectType: objectType, Value: value}
}

func newTestClient() *Client {
	return New(Options{
		Url:       "mqtt://localhost:1883",
		Namespace: "tnc",
		Identity:  Identity{Id: "local-agent", Name: "FlowPro Agent", Role: "TNC Agent"},
	}, nil)
}

func TestIdentityEvent_Join(t *testing.T) {
	c := newTestClient()

	ev, ok := c.identityEvent(message{
		topic:   "tnc/identity/remote-1",
		payload: []byte(`{"id":"remote-1","name":"AGV agent 1","role":"TNC Agent"}`),
	})

	require.True(t, ok)
	assert.Equal(t, AgentJoin, ev.Change)
	assert.Equal(t, "remote-1", ev.Identity.Id)
	assert.Equal(t, "AGV agent 1", ev.Identity.Name)
	assert.False(t, ev.Local)
}

func TestIdentityEvent_EmptyPayloadIsLeave(t *testing.T) {
	c := newTestClient()

	ev, ok := c.identityEvent(message{topic: "tnc/identity/remote-1", payload: nil})

	require.True(t, ok)
	assert.Equal(t, AgentLeave, ev.Change)
	assert.Equal(t, "remote-1", ev.Identity.Id)
}

func TestIdentityEvent_LocalFlag(t *testing.T) {
	c := newTestClient()

	ev, ok := c.identityEvent(message{
		topic:   "tnc/identity/local-agent",
		payload: []byte(`{"id":"local-agent","name":"FlowPro Agent","role":"TNC Agent"}`),
	})

	require.True(t, ok)
	assert.True(t, ev.Local)
}

func TestIdentityEvent_MalformedPayloadSkipped(t *testing.T) {
	c := newTestClient()

	_, ok := c.identityEvent(message{topic: "tnc/identity/x", payload: []byte("{broken")})
	assert.False(t, ok)
}

func TestInboundCall_CarriesCallFields(t *testing.T) {
	c := newTestClient()
	// Not started, so nothing is published; this checks the fields the
	// inbound call event carries and that a responder is bound.
	ev := c.inboundCall("add", callEnvelope{
		ObjectType:    "type.googleapis.com/flowpro.icc.ftf.Add",
		Value:         "CAE=",
		SourceId:      "remote-1",
		CorrelationId: "corr-1",
		ReplyTo:       "tnc/return/corr-1",
	})

	assert.Equal(t, "add", ev.Operation)
	assert.Equal(t, "remote-1", ev.SourceId)
	assert.Equal(t, "corr-1", ev.CorrelationId)
	require.NotNil(t, ev.Respond)
}

func TestBuildTLSConfig(t *testing.T) {
	cfg, err := buildTLSConfig("", "", true)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = buildTLSConfig("", "", false)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.InsecureSkipVerify)

	_, err = buildTLSConfig("-----BEGIN CERTIFICATE-----\nnot a cert\n-----END CERTIFICATE-----", "-----BEGIN KEY-----\nnope\n-----END KEY-----", true)
	assert.Error(t, err)
}

func TestPublishBeforeStart(t *testing.T) {
	c := newTestClient()
	err := c.PublishChannel("status", codecObject("t", "CAE="))
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestObserveBeforeStart(t *testing.T) {
	c := newTestClient()
	_, _, err := c.ObserveChannel("status")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStopIsIdempotent(t *testing.T) {
	c := newTestClient()
	c.Stop()
	c.Stop()

	err := c.PublishChannel("status", codecObject("t", "CAE="))
	assert.ErrorIs(t, err, ErrStopped)
}

func TestObserveOnlineAfterStop(t *testing.T) {
	c := newTestClient()
	c.Stop()

	ch, cancel := c.ObserveOnline()
	defer cancel()

	_, open := <-ch
	assert.False(t, open)
}
