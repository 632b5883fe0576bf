// ABOUTME: Entry point for the tnc-gateway per-agent server
// ABOUTME: Serves the four gRPC surfaces; -v prints version, -a extracts protos

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/flowpro/tnc-gateway/internal/assets"
	"github.com/flowpro/tnc-gateway/internal/config"
	"github.com/flowpro/tnc-gateway/internal/gateway"
)

const banner = `
 _                                _
| |_ _ __   ___       __ _  __ _| |_ _____      ____ _ _   _
| __| '_ \ / __|____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| |_| | | | (_|_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
 \__|_| |_|\___|     \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                     |___/                             |___/
`

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v", "--version":
			fmt.Println(gateway.Version)
			return
		case "-a", "--assets":
			if err := runAssets(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "-h", "--help":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown argument: %s\n", arg)
			printUsage()
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tnc-gateway [flag]")
	fmt.Println()
	fmt.Println("Without flags the gateway server starts.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -v, --version   Print the version and exit")
	fmt.Println("  -a, --assets    Write the gRPC .proto contract files to the working directory and exit")
}

// runAssets writes the four .proto contract files to the working directory.
func runAssets() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	if err := assets.WriteAll(cwd); err != nil {
		return err
	}
	names, err := assets.ProtoFiles()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("TNC_GATEWAY_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", gateway.Version)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("gRPC:      :%d\n", cfg.Server.GrpcPort)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      :%d\n", cfg.Server.HttpPort)
	green.Print("    ▶ ")
	fmt.Printf("Namespace: %s\n", cfg.Bus.Namespace)
	green.Print("    ▶ ")
	fmt.Printf("Agent:     %s (%s)\n", cfg.Bus.IdentityName, cfg.Bus.IdentityId)
	if cfg.Bus.Url != "" {
		green.Print("    ▶ ")
		fmt.Printf("Bus:       %s\n", cfg.Bus.Url)
	}
	fmt.Println()

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
