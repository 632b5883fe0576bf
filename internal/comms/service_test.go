// ABOUTME: Tests for CommunicationService validation and unavailability mapping
// ABOUTME: Id validation, missing bus, silent late returns, idempotent completes

package comms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/internal/bus"
	"github.com/flowpro/tnc-gateway/proto/tnc"
)

func newTestService() *Service {
	manager := NewManager(testBusConfig(), nil)
	return NewService(manager, NewSinkRegistry(nil), nil, nil)
}

func TestPublishChannel_InvalidId(t *testing.T) {
	svc := newTestService()

	for _, id := range []string{"", "a/b", "a#b", "a+b", "a\x00b"} {
		_, err := svc.PublishChannel(context.Background(), &tnc.ChannelEvent{Id: id})
		require.Error(t, err, "id %q", id)
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.InvalidArgument, st.Code())
	}
}

func TestPublishChannel_BusNotConfigured(t *testing.T) {
	svc := newTestService()

	_, err := svc.PublishChannel(context.Background(), &tnc.ChannelEvent{Id: "status"})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Unavailable, st.Code())
}

func TestPublishReturn_MissingSinkAcksSilently(t *testing.T) {
	svc := newTestService()

	ack, err := svc.PublishReturn(context.Background(), &tnc.ReturnEvent{CorrelationId: "late"})
	require.NoError(t, err)
	assert.NotNil(t, ack)
}

func TestPublishComplete_IsIdempotent(t *testing.T) {
	svc := newTestService()
	svc.sinks.Register("owner", "corr-1", func(bus.ReturnPayload) error { return nil })

	for i := 0; i < 3; i++ {
		ack, err := svc.PublishComplete(context.Background(), &tnc.CompleteEvent{CorrelationId: "corr-1"})
		require.NoError(t, err)
		assert.NotNil(t, ack)
	}
	assert.False(t, svc.sinks.Has("corr-1"))
}

func TestConfigure_AppliesOptions(t *testing.T) {
	svc := newTestService()

	namespace := "prod"
	_, err := svc.Configure(context.Background(), &tnc.CommunicationOptions{Namespace: &namespace})
	require.NoError(t, err)
	assert.Equal(t, "prod", svc.manager.Config().Namespace)
}

func TestConfigure_IdenticalOptionsIsIdempotent(t *testing.T) {
	svc := newTestService()
	before := svc.manager.Config()

	_, err := svc.Configure(context.Background(), &tnc.CommunicationOptions{})
	require.NoError(t, err)
	assert.Equal(t, before, svc.manager.Config())
}
