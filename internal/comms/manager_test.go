// ABOUTME: Tests for the bus lifecycle manager
// ABOUTME: Autostart suppression, presence-aware merging, identity changes

package comms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpro/tnc-gateway/internal/config"
)

func testBusConfig() config.BusConfig {
	return config.BusConfig{
		Namespace:         "tnc",
		IdentityName:      "FlowPro Agent",
		IdentityId:        "agent-1",
		VerifyServerCert:  true,
		FailFastIfOffline: true,
	}
}

func TestManager_AutostartSuppressedWithoutUrl(t *testing.T) {
	m := NewManager(testBusConfig(), nil)

	require.NoError(t, m.Start(context.Background()))
	assert.Nil(t, m.Client())
}

func TestManager_ConfigureMergesAbsentFieldsKeepPriorValues(t *testing.T) {
	m := NewManager(testBusConfig(), nil)

	namespace := "prod"
	require.NoError(t, m.Configure(context.Background(), config.Options{Namespace: &namespace}))

	cfg := m.Config()
	assert.Equal(t, "prod", cfg.Namespace)
	assert.Equal(t, "FlowPro Agent", cfg.IdentityName)
	assert.Equal(t, "agent-1", cfg.IdentityId)
	assert.True(t, cfg.FailFastIfOffline)
}

func TestManager_ConfigureTriStateFailFast(t *testing.T) {
	m := NewManager(testBusConfig(), nil)

	// Unset keeps the default.
	require.NoError(t, m.Configure(context.Background(), config.Options{}))
	assert.True(t, m.Config().FailFastIfOffline)

	// Explicit true flips fail-fast off.
	notFailFast := true
	require.NoError(t, m.Configure(context.Background(), config.Options{NotFailFastIfOffline: &notFailFast}))
	assert.False(t, m.Config().FailFastIfOffline)

	// Explicit false flips it back on.
	notFailFast = false
	require.NoError(t, m.Configure(context.Background(), config.Options{NotFailFastIfOffline: &notFailFast}))
	assert.True(t, m.Config().FailFastIfOffline)
}

func TestManager_ConfigureWithUrlStartsClient(t *testing.T) {
	m := NewManager(testBusConfig(), nil)
	defer m.Stop()

	url := "mqtt://localhost:1883"
	require.NoError(t, m.Configure(context.Background(), config.Options{Url: &url}))
	assert.NotNil(t, m.Client())
}

func TestManager_ConfigureIdentityChangeSwapsClient(t *testing.T) {
	m := NewManager(testBusConfig(), nil)
	defer m.Stop()

	url := "mqtt://localhost:1883"
	require.NoError(t, m.Configure(context.Background(), config.Options{Url: &url}))
	old := m.Client()
	require.NotNil(t, old)

	id := "agent-2"
	require.NoError(t, m.Configure(context.Background(), config.Options{IdentityId: &id}))
	replacement := m.Client()
	require.NotNil(t, replacement)
	assert.NotSame(t, old, replacement)
	assert.Equal(t, "agent-2", replacement.Identity().Id)

	// The retired client rejects further use.
	_, _, err := old.ObserveChannel("status")
	assert.Error(t, err)
}
