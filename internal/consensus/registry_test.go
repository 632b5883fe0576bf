// ABOUTME: Tests for the raft node registry and connection state machine
// ABOUTME: Unknown ids, transitional rejections, state transitions

package consensus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/flowpro/tnc-gateway/internal/raft"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(t.TempDir(), func() raft.BusClient { return nil }, nil, nil)
}

func TestCreate_ReturnsFreshUuid(t *testing.T) {
	r := newTestRegistry(t)

	id := r.Create("cluster-1", true)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	state, err := r.State(id)
	require.NoError(t, err)
	assert.Equal(t, StateCreated, state)
}

func TestUnknownNode(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.State("no-such-node")
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = r.Controller("no-such-node")
	assert.ErrorIs(t, err, ErrUnknownNode)

	err = r.Stop("no-such-node")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestController_RequiresConnected(t *testing.T) {
	r := newTestRegistry(t)
	id := r.Create("cluster-1", true)

	_, err := r.Controller(id)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateCreated, stateErr.State)
	assert.Equal(t, "Raft node is currently created", stateErr.Error())
}

func TestStop_RequiresConnected(t *testing.T) {
	r := newTestRegistry(t)
	id := r.Create("cluster-1", true)

	err := r.Stop(id)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestStateErrorTranslation(t *testing.T) {
	err := translateErr(&StateError{State: StateConnecting})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Contains(t, err.Error(), "currently connecting")

	err = translateErr(ErrUnknownNode)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
