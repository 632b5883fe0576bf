// ABOUTME: Tests for the RoutingService facade error mapping and request flow
// ABOUTME: Unavailable on empty routes, cancellation cascades, respond acks

package routing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/proto/tnc"
)

func TestService_Push_AcksRoutingCount(t *testing.T) {
	engine := NewEngine(nil)
	svc := NewService(engine, nil, nil)

	engine.RegisterPush("r", &recordingPushSink{})
	engine.RegisterPush("r", &recordingPushSink{})

	ack, err := svc.Push(context.Background(), &tnc.PushEvent{Route: "r"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), ack.RoutingCount)
}

func TestService_Request_NoRegistrationIsUnavailable(t *testing.T) {
	svc := NewService(NewEngine(nil), nil, nil)

	_, err := svc.Request(context.Background(), &tnc.RequestEvent{Route: "r"})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Unavailable, st.Code())
	assert.Equal(t, "No registration available", st.Message())
}

func TestService_Request_RespondCompletesUnary(t *testing.T) {
	engine := NewEngine(nil)
	svc := NewService(engine, nil, nil)

	sink := &syncRequestSink{}
	_, err := engine.RegisterRequest("add", tnc.PolicyFirst, sink)
	require.NoError(t, err)

	done := make(chan struct{})
	var resp *tnc.ResponseEvent
	var reqErr error
	go func() {
		defer close(done)
		resp, reqErr = svc.Request(context.Background(), &tnc.RequestEvent{Route: "add", Data: payload(42, 2)})
	}()

	// The responder answers once the dispatched event lands.
	ev := sink.await(t)
	ack, err := svc.Respond(context.Background(), &tnc.ResponseEvent{
		Route:     ev.Route,
		RequestId: ev.RequestId,
		Data:      payload(44),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), ack.RoutingCount)

	<-done
	require.NoError(t, reqErr)
	assert.Equal(t, []byte{44}, resp.Data.Value)
	assert.Zero(t, resp.RequestId)
}

func TestService_Request_CancelledWhenRegistrationLeaves(t *testing.T) {
	engine := NewEngine(nil)
	svc := NewService(engine, nil, nil)

	sink := &syncRequestSink{}
	id, err := engine.RegisterRequest("add", tnc.PolicySingle, sink)
	require.NoError(t, err)

	done := make(chan struct{})
	var reqErr error
	go func() {
		defer close(done)
		_, reqErr = svc.Request(context.Background(), &tnc.RequestEvent{Route: "add"})
	}()

	ev := sink.await(t)
	engine.UnregisterRequest("add", id)

	<-done
	require.Error(t, reqErr)
	st, ok := status.FromError(reqErr)
	require.True(t, ok)
	assert.Equal(t, codes.Canceled, st.Code())
	assert.Equal(t, "Correlated registration deregistered before response", st.Message())

	// A late respond for the cancelled request is a caller bug.
	_, err = svc.Respond(context.Background(), &tnc.ResponseEvent{Route: "add", RequestId: ev.RequestId})
	require.Error(t, err)
	st, ok = status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "Response event discarded as no correlated registration exists", st.Message())
}

func TestService_Respond_RequesterGoneAcksZero(t *testing.T) {
	engine := NewEngine(nil)
	svc := NewService(engine, nil, nil)

	sink := &syncRequestSink{}
	_, err := engine.RegisterRequest("r", tnc.PolicyFirst, sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	pending, err := engine.Dispatch(ctx, &tnc.RequestEvent{Route: "r"})
	require.NoError(t, err)
	cancel()

	ack, err := svc.Respond(context.Background(), &tnc.ResponseEvent{Route: "r", RequestId: pending.RequestId})
	require.NoError(t, err)
	assert.Equal(t, int32(0), ack.RoutingCount)
}

// syncRequestSink hands dispatched events to the test goroutine.
type syncRequestSink struct {
	mu     sync.Mutex
	events []*tnc.RequestEvent
}

func (s *syncRequestSink) Send(ev *tnc.RequestEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *syncRequestSink) await(t *testing.T) *tnc.RequestEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		if len(s.events) > 0 {
			ev := s.events[len(s.events)-1]
			s.mu.Unlock()
			return ev
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no request event dispatched")
	return nil
}
