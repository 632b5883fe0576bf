// ABOUTME: Bus lifecycle manager: holds the live client and applies reconfiguration
// ABOUTME: Configure stops the client, merges options, and starts a replacement

package comms

import (
	"context"
	"log/slog"
	"sync"

	"github.com/flowpro/tnc-gateway/internal/bus"
	"github.com/flowpro/tnc-gateway/internal/config"
)

// Manager owns the bus client for the whole gateway. Services fetch the
// current client per call; a reconfiguration swaps the client atomically and
// every stream anchored to the old one ends cleanly when it stops.
type Manager struct {
	mu      sync.Mutex
	cfg     config.BusConfig
	client  *bus.Client
	stopped bool
	logger  *slog.Logger
}

// NewManager creates a manager with the initial bus configuration. The bus
// stays down until Start (and only starts when a URL is configured).
func NewManager(cfg config.BusConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger.With("component", "bus-manager"),
	}
}

// Start brings the bus up if a connection URL is configured. An empty URL
// suppresses autostart; Configure can supply one later.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.client != nil {
		return nil
	}
	if m.cfg.Url == "" {
		m.logger.Info("bus autostart suppressed: no connection url configured")
		return nil
	}
	return m.startLocked(ctx)
}

// startLocked creates and starts a client for the current configuration.
func (m *Manager) startLocked(ctx context.Context) error {
	client := bus.New(bus.Options{
		Url:       m.cfg.Url,
		Namespace: m.cfg.Namespace,
		Identity: bus.Identity{
			Id:   m.cfg.IdentityId,
			Name: m.cfg.IdentityName,
			Role: config.DefaultRole,
		},
		Username:          m.cfg.Username,
		Password:          m.cfg.Password,
		TlsCert:           m.cfg.TlsCert,
		TlsKey:            m.cfg.TlsKey,
		VerifyServerCert:  m.cfg.VerifyServerCert,
		FailFastIfOffline: m.cfg.FailFastIfOffline,
	}, m.logger)
	if err := client.Start(ctx); err != nil {
		return err
	}
	m.client = client
	return nil
}

// Client returns the live bus client, or nil while the bus is down.
func (m *Manager) Client() *bus.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// Config returns the current effective bus configuration.
func (m *Manager) Config() config.BusConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Configure stops the running client, merges the options into the live
// configuration, and starts a replacement. Every observation and publish
// stream anchored to the old client ends cleanly. An identity change retires
// the old identity's presence advertisement with the old client.
func (m *Manager) Configure(ctx context.Context, opts config.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return bus.ErrStopped
	}

	merged, identityChanged := m.cfg.Merge(opts)
	if m.client != nil {
		m.client.Stop()
		m.client = nil
	}
	m.cfg = merged

	if merged.Url == "" {
		m.logger.Info("bus reconfigured without connection url; staying down")
		return nil
	}
	if err := m.startLocked(ctx); err != nil {
		return err
	}
	m.logger.Info("bus reconfigured",
		"identity_changed", identityChanged,
		"namespace", merged.Namespace,
		"agent_id", merged.IdentityId,
	)
	return nil
}

// Stop tears the bus down for good.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.client != nil {
		m.client.Stop()
		m.client = nil
	}
}
