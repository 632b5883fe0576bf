// ABOUTME: Tests for the response sink registry
// ABOUTME: Covers registration, late responses, idempotent release, owner sweeps

package comms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpro/tnc-gateway/internal/bus"
)

func TestSinkRegistry_RespondInvokesResponder(t *testing.T) {
	r := NewSinkRegistry(nil)

	var got []bus.ReturnPayload
	r.Register("owner-1", "corr-1", func(p bus.ReturnPayload) error {
		got = append(got, p)
		return nil
	})

	found, err := r.Respond("corr-1", bus.ReturnPayload{Error: "boom"})
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "boom", got[0].Error)

	// Multiple returns per correlation are allowed until Complete.
	found, err = r.Respond("corr-1", bus.ReturnPayload{})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got, 2)
}

func TestSinkRegistry_MissingSinkIsSilent(t *testing.T) {
	r := NewSinkRegistry(nil)

	found, err := r.Respond("nope", bus.ReturnPayload{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSinkRegistry_ReleaseIsIdempotent(t *testing.T) {
	r := NewSinkRegistry(nil)
	r.Register("owner-1", "corr-1", func(bus.ReturnPayload) error { return nil })

	r.Release("corr-1")
	r.Release("corr-1")

	assert.False(t, r.Has("corr-1"))
	assert.Equal(t, 0, r.Len())
}

func TestSinkRegistry_ReleaseOwnerSweepsOnlyItsSinks(t *testing.T) {
	r := NewSinkRegistry(nil)
	r.Register("owner-1", "corr-1", func(bus.ReturnPayload) error { return nil })
	r.Register("owner-1", "corr-2", func(bus.ReturnPayload) error { return nil })
	r.Register("owner-2", "corr-3", func(bus.ReturnPayload) error { return nil })

	r.ReleaseOwner("owner-1")

	assert.False(t, r.Has("corr-1"))
	assert.False(t, r.Has("corr-2"))
	assert.True(t, r.Has("corr-3"))
}
