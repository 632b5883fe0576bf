// ABOUTME: Tests for configuration loading, env overlay, validation, merging
// ABOUTME: Covers defaults, YAML expansion, and presence-aware option merges

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 50060, cfg.Server.GrpcPort)
	assert.Equal(t, 50061, cfg.Server.HttpPort)
	assert.Equal(t, "tnc", cfg.Bus.Namespace)
	assert.Equal(t, "FlowPro Agent", cfg.Bus.IdentityName)
	assert.True(t, cfg.Bus.VerifyServerCert)
	assert.True(t, cfg.Bus.FailFastIfOffline)
	assert.Equal(t, ".", cfg.Consensus.DbFolder)
	assert.Empty(t, cfg.Bus.Url)

	_, err := uuid.Parse(cfg.Bus.IdentityId)
	assert.NoError(t, err, "default identity id must be a uuid")
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv(EnvGrpcPort, "50070")
	t.Setenv(EnvBusUrl, "mqtt://broker:1883")
	t.Setenv(EnvNamespace, "prod")
	t.Setenv(EnvAgentName, "AGV agent 1")
	t.Setenv(EnvFailFastIfOffline, "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50070, cfg.Server.GrpcPort)
	assert.Equal(t, 50071, cfg.Server.HttpPort)
	assert.Equal(t, "mqtt://broker:1883", cfg.Bus.Url)
	assert.Equal(t, "prod", cfg.Bus.Namespace)
	assert.Equal(t, "AGV agent 1", cfg.Bus.IdentityName)
	assert.False(t, cfg.Bus.FailFastIfOffline)
}

func TestLoad_YamlFileWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_BUS_HOST", "broker.example.org")

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	content := `
bus:
  url: mqtt://${TEST_BUS_HOST}:1883
  namespace: staging
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mqtt://broker.example.org:1883", cfg.Bus.Url)
	assert.Equal(t, "staging", cfg.Bus.Namespace)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus:\n  namespace: from-file\n"), 0644))
	t.Setenv(EnvNamespace, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bus.Namespace)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"mqtt url", func(c *Config) { c.Bus.Url = "mqtt://h:1883" }, false},
		{"mqtts url", func(c *Config) { c.Bus.Url = "mqtts://h:8883" }, false},
		{"wss url", func(c *Config) { c.Bus.Url = "wss://h/mqtt" }, false},
		{"http url rejected", func(c *Config) { c.Bus.Url = "http://h" }, true},
		{"grpc port range", func(c *Config) { c.Server.GrpcPort = 70000 }, true},
		{"cert without key", func(c *Config) { c.Bus.TlsCert = "cert.pem" }, true},
		{"cert with key", func(c *Config) { c.Bus.TlsCert = "cert.pem"; c.Bus.TlsKey = "key.pem" }, false},
		{"empty identity id", func(c *Config) { c.Bus.IdentityId = "" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMerge_AbsentFieldsKeepPriorValues(t *testing.T) {
	base := Default().Bus

	merged, identityChanged := base.Merge(Options{})

	assert.Equal(t, base, merged)
	assert.False(t, identityChanged)
}

func TestMerge_PresentFieldsOverride(t *testing.T) {
	base := Default().Bus
	url := "mqtts://broker:8883"
	username := "user"

	merged, identityChanged := base.Merge(Options{Url: &url, Username: &username})

	assert.Equal(t, url, merged.Url)
	assert.Equal(t, "user", merged.Username)
	assert.False(t, identityChanged)
	assert.Equal(t, base.IdentityId, merged.IdentityId)
}

func TestMerge_IdentityChangeDetected(t *testing.T) {
	base := Default().Bus

	newName := "renamed agent"
	_, identityChanged := base.Merge(Options{IdentityName: &newName})
	assert.True(t, identityChanged)

	newId := uuid.NewString()
	_, identityChanged = base.Merge(Options{IdentityId: &newId})
	assert.True(t, identityChanged)
}

func TestMerge_EmptyStringIsAnOverride(t *testing.T) {
	base := Default().Bus
	base.Username = "user"

	empty := ""
	merged, _ := base.Merge(Options{Username: &empty})
	assert.Empty(t, merged.Username)
}
