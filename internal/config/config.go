// ABOUTME: Configuration loading for tnc-gateway: defaults, YAML file, env vars
// ABOUTME: Environment wins over file; ${VAR} patterns in YAML are expanded

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Environment variable names. Each is optional; see Default for the
// fallback values.
const (
	EnvGrpcPort          = "TNC_GATEWAY_GRPC_PORT"
	EnvHttpPort          = "TNC_GATEWAY_HTTP_PORT"
	EnvBusUrl            = "TNC_GATEWAY_BUS_URL"
	EnvNamespace         = "TNC_GATEWAY_NAMESPACE"
	EnvAgentName         = "TNC_GATEWAY_AGENT_NAME"
	EnvAgentId           = "TNC_GATEWAY_AGENT_ID"
	EnvBusUsername       = "TNC_GATEWAY_BUS_USERNAME"
	EnvBusPassword       = "TNC_GATEWAY_BUS_PASSWORD"
	EnvTlsCert           = "TNC_GATEWAY_TLS_CERT"
	EnvTlsKey            = "TNC_GATEWAY_TLS_KEY"
	EnvVerifyServerCert  = "TNC_GATEWAY_VERIFY_SERVER_CERT"
	EnvFailFastIfOffline = "TNC_GATEWAY_FAIL_FAST_IF_OFFLINE"
	EnvConsensusDbFolder = "TNC_GATEWAY_CONSENSUS_DB_FOLDER"
	EnvLogLevel          = "TNC_GATEWAY_LOG_LEVEL"
	EnvLogFormat         = "TNC_GATEWAY_LOG_FORMAT"
)

// Config is the complete tnc-gateway configuration.
type Config struct {
	Server    ServerConfig  `yaml:"server"`
	Bus       BusConfig     `yaml:"bus"`
	Consensus RaftConfig    `yaml:"consensus"`
	Logging   LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the local listener ports.
type ServerConfig struct {
	GrpcPort int `yaml:"grpc_port"`
	HttpPort int `yaml:"http_port"`
}

// BusConfig holds the bus connection parameters and agent identity.
type BusConfig struct {
	Url               string `yaml:"url"`
	Namespace         string `yaml:"namespace"`
	IdentityName      string `yaml:"identity_name"`
	IdentityId        string `yaml:"identity_id"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	TlsCert           string `yaml:"tls_cert"`
	TlsKey            string `yaml:"tls_key"`
	VerifyServerCert  bool   `yaml:"verify_server_cert"`
	FailFastIfOffline bool   `yaml:"fail_fast_if_offline"`
}

// RaftConfig holds consensus persistence settings.
type RaftConfig struct {
	DbFolder string `yaml:"db_folder"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultGrpcPort is the local gRPC listen port when nothing overrides it.
const DefaultGrpcPort = 50060

// DefaultRole is the agent role advertised for lifecycle tracking.
const DefaultRole = "TNC Agent"

// Default returns the built-in configuration. The identity id is freshly
// random; persist it externally for a stable identity across restarts.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			GrpcPort: DefaultGrpcPort,
			HttpPort: DefaultGrpcPort + 1,
		},
		Bus: BusConfig{
			Namespace:         "tnc",
			IdentityName:      "FlowPro Agent",
			IdentityId:        uuid.NewString(),
			VerifyServerCert:  true,
			FailFastIfOffline: true,
		},
		Consensus: RaftConfig{
			DbFolder: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the effective configuration: defaults, then the optional YAML
// file at path (empty path skips the file), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvGrpcPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvGrpcPort, v, err)
		}
		cfg.Server.GrpcPort = port
		cfg.Server.HttpPort = port + 1
	}
	if v := os.Getenv(EnvHttpPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvHttpPort, v, err)
		}
		cfg.Server.HttpPort = port
	}
	if v := os.Getenv(EnvBusUrl); v != "" {
		cfg.Bus.Url = v
	}
	if v := os.Getenv(EnvNamespace); v != "" {
		cfg.Bus.Namespace = v
	}
	if v := os.Getenv(EnvAgentName); v != "" {
		cfg.Bus.IdentityName = v
	}
	if v := os.Getenv(EnvAgentId); v != "" {
		cfg.Bus.IdentityId = v
	}
	if v := os.Getenv(EnvBusUsername); v != "" {
		cfg.Bus.Username = v
	}
	if v := os.Getenv(EnvBusPassword); v != "" {
		cfg.Bus.Password = v
	}
	if v := os.Getenv(EnvTlsCert); v != "" {
		cfg.Bus.TlsCert = v
	}
	if v := os.Getenv(EnvTlsKey); v != "" {
		cfg.Bus.TlsKey = v
	}
	if v := os.Getenv(EnvVerifyServerCert); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvVerifyServerCert, v, err)
		}
		cfg.Bus.VerifyServerCert = b
	}
	if v := os.Getenv(EnvFailFastIfOffline); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvFailFastIfOffline, v, err)
		}
		cfg.Bus.FailFastIfOffline = b
	}
	if v := os.Getenv(EnvConsensusDbFolder); v != "" {
		cfg.Consensus.DbFolder = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate checks the configuration for internally inconsistent values.
// An empty bus URL is valid: the bus stays down until Configure provides one.
func (c *Config) Validate() error {
	if c.Server.GrpcPort <= 0 || c.Server.GrpcPort > 65535 {
		return fmt.Errorf("grpc port %d out of range", c.Server.GrpcPort)
	}
	if c.Server.HttpPort <= 0 || c.Server.HttpPort > 65535 {
		return fmt.Errorf("http port %d out of range", c.Server.HttpPort)
	}
	if c.Bus.Url != "" {
		u, err := url.Parse(c.Bus.Url)
		if err != nil {
			return fmt.Errorf("parsing bus url: %w", err)
		}
		switch u.Scheme {
		case "mqtt", "mqtts", "tcp", "ssl", "ws", "wss":
		default:
			return fmt.Errorf("unsupported bus url scheme %q", u.Scheme)
		}
	}
	if (c.Bus.TlsCert == "") != (c.Bus.TlsKey == "") {
		return fmt.Errorf("bus tls cert and key must be set together")
	}
	if c.Bus.IdentityId == "" {
		return fmt.Errorf("agent identity id must not be empty")
	}
	return nil
}

// Options carries a presence-tracked partial bus configuration. Nil fields
// are absent and keep the prior value on merge. NotFailFastIfOffline is
// deliberately tri-state: unset, explicitly true, explicitly false.
type Options struct {
	Url                  *string
	Namespace            *string
	IdentityName         *string
	IdentityId           *string
	Username             *string
	Password             *string
	TlsCert              *string
	TlsKey               *string
	VerifyServerCert     *bool
	NotFailFastIfOffline *bool
}

// Merge overlays present option fields onto a BusConfig, returning the
// merged copy and whether the agent identity changed.
func (b BusConfig) Merge(o Options) (BusConfig, bool) {
	merged := b
	if o.Url != nil {
		merged.Url = *o.Url
	}
	if o.Namespace != nil {
		merged.Namespace = *o.Namespace
	}
	if o.IdentityName != nil {
		merged.IdentityName = *o.IdentityName
	}
	if o.IdentityId != nil {
		merged.IdentityId = *o.IdentityId
	}
	if o.Username != nil {
		merged.Username = *o.Username
	}
	if o.Password != nil {
		merged.Password = *o.Password
	}
	if o.TlsCert != nil {
		merged.TlsCert = *o.TlsCert
	}
	if o.TlsKey != nil {
		merged.TlsKey = *o.TlsKey
	}
	if o.VerifyServerCert != nil {
		merged.VerifyServerCert = *o.VerifyServerCert
	}
	if o.NotFailFastIfOffline != nil {
		merged.FailFastIfOffline = !*o.NotFailFastIfOffline
	}
	identityChanged := merged.IdentityId != b.IdentityId || merged.IdentityName != b.IdentityName
	return merged, identityChanged
}
