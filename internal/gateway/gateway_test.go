// ABOUTME: Tests for gateway construction and the HTTP health surface
// ABOUTME: Health always OK, readiness reports the bus state

package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpro/tnc-gateway/internal/config"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	cfg := config.Default()
	cfg.Consensus.DbFolder = t.TempDir()
	gw, err := New(cfg, nil)
	require.NoError(t, err)
	return gw
}

func TestHandleHealth(t *testing.T) {
	gw := newTestGateway(t)

	rec := httptest.NewRecorder()
	gw.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleReady_BusDown(t *testing.T) {
	gw := newTestGateway(t)

	rec := httptest.NewRecorder()
	gw.handleReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready (bus down)", rec.Body.String())
}

func TestNew_RegistersAllFourServices(t *testing.T) {
	gw := newTestGateway(t)

	info := gw.grpcServer.GetServiceInfo()
	assert.Contains(t, info, "tnc.RoutingService")
	assert.Contains(t, info, "tnc.CommunicationService")
	assert.Contains(t, info, "tnc.LifecycleService")
	assert.Contains(t, info, "tnc.ConsensusService")
}
