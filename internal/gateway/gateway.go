// ABOUTME: Gateway orchestrator that coordinates the gRPC and HTTP servers
// ABOUTME: Wires routing, bus bridge, lifecycle, and consensus services together

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/flowpro/tnc-gateway/internal/comms"
	"github.com/flowpro/tnc-gateway/internal/config"
	"github.com/flowpro/tnc-gateway/internal/consensus"
	"github.com/flowpro/tnc-gateway/internal/lifecycle"
	"github.com/flowpro/tnc-gateway/internal/observability"
	"github.com/flowpro/tnc-gateway/internal/raft"
	"github.com/flowpro/tnc-gateway/internal/routing"
	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Gateway owns the tnc-gateway server components: the gRPC server exposing
// the four services and the HTTP server for health and metrics.
type Gateway struct {
	config     *config.Config
	busManager *comms.Manager
	engine     *routing.Engine
	sinks      *comms.SinkRegistry
	consensus  *consensus.Registry
	grpcServer *grpc.Server
	httpServer *http.Server
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a gateway instance from the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	promReg := prometheus.NewRegistry()
	metrics := observability.New(promReg)

	busManager := comms.NewManager(cfg.Bus, logger)
	engine := routing.NewEngine(logger)
	sinks := comms.NewSinkRegistry(metrics)

	clientSource := func() raft.BusClient {
		if client := busManager.Client(); client != nil {
			return client
		}
		return nil
	}
	consensusReg := consensus.NewRegistry(cfg.Consensus.DbFolder, clientSource, metrics, logger)

	grpcServer := grpc.NewServer(
		// The tnc message types carry their own protobuf wire codec; the
		// bytes on the wire match the shipped .proto contract, so stubs
		// generated from it interoperate.
		grpc.ForceServerCodec(tnc.Codec{}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    15 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)

	gw := &Gateway{
		config:     cfg,
		busManager: busManager,
		engine:     engine,
		sinks:      sinks,
		consensus:  consensusReg,
		grpcServer: grpcServer,
		metrics:    metrics,
		logger:     logger.With("component", "gateway"),
	}

	tnc.RegisterRoutingServiceServer(grpcServer, routing.NewService(engine, metrics, logger))
	tnc.RegisterCommunicationServiceServer(grpcServer, comms.NewService(busManager, sinks, metrics, logger))
	tnc.RegisterLifecycleServiceServer(grpcServer, lifecycle.NewService(busManager, logger))
	tnc.RegisterConsensusServiceServer(grpcServer, consensus.NewService(consensusReg, logger))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	gw.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HttpPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Run starts the gateway and blocks until the context is canceled or a
// server fails. The bus autostarts only when a connection URL is configured.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("starting tnc-gateway",
		"version", Version,
		"grpc_port", g.config.Server.GrpcPort,
		"http_port", g.config.Server.HttpPort,
		"namespace", g.config.Bus.Namespace,
		"agent_id", g.config.Bus.IdentityId,
		"agent_name", g.config.Bus.IdentityName,
	)

	if err := g.busManager.Start(ctx); err != nil {
		return fmt.Errorf("starting bus: %w", err)
	}

	grpcLn, err := net.Listen("tcp", fmt.Sprintf(":%d", g.config.Server.GrpcPort))
	if err != nil {
		return fmt.Errorf("listening on gRPC port: %w", err)
	}
	httpLn, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		_ = grpcLn.Close()
		return fmt.Errorf("listening on HTTP port: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		g.logger.Info("gRPC server listening", "addr", grpcLn.Addr().String())
		if err := g.grpcServer.Serve(grpcLn); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		g.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := g.httpServer.Serve(httpLn); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout. The
// original context is already canceled by the time this runs.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the servers, halts every connected raft node in parallel,
// and tears the bus down. Raft databases stay on disk.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		g.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		g.grpcServer.Stop()
	}

	if err := g.consensus.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("consensus shutdown: %w", err))
	}
	g.busManager.Stop()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK while the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady reports readiness with the current bus state in the body. The
// gateway is serviceable without the bus; routing and consensus creation
// work regardless.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	busState := "down"
	if client := g.busManager.Client(); client != nil {
		if client.Online() {
			busState = "online"
		} else {
			busState = "offline"
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (bus %s)", busState)
}
