package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:3000", c.BackendURL)
	assert.Equal(t, TransportHTTP, c.Transport)
	assert.Equal(t, StoreSQLite, c.TokenStore)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := Load(nil, noEnv)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), *cfg))
}

func TestLoad_Flags(t *testing.T) {
	args := []string{"-t", "grpc", "-g", "auth.internal:7000", "-s", "redis", "-r", "cache:6380", "-rp", "secret", "-rt", "3s", "-m", ":9100", "whoami"}

	cfg, err := Load(args, noEnv)
	require.NoError(t, err)

	want := defaults()
	want.Transport = TransportGRPC
	want.GRPCAddr = "auth.internal:7000"
	want.TokenStore = StoreRedis
	want.RedisAddr = "cache:6380"
	want.RedisPassword = "secret"
	want.RequestTimeout = 3 * time.Second
	want.MetricsAddr = ":9100"
	assert.Empty(t, cmp.Diff(want, *cfg))
}

func TestLoad_EnvOverridesJSON_FlagOverridesEnv(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{"backend_url": "http://localhost:8001"})
	env := func(k string) string {
		if k == BackendURLEnv {
			return "http://127.0.0.1:8002"
		}
		return ""
	}

	cfg, err := Load([]string{"-c", path}, env)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8002", cfg.BackendURL)

	cfg, err = Load([]string{"-c", path, "-b", "http://localhost:8003"}, env)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8003", cfg.BackendURL)
}

func TestLoad_BadFlagValue(t *testing.T) {
	_, err := Load([]string{"-rt", "soon"}, noEnv)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown transport", func(c *Config) { c.Transport = "smtp" }, false},
		{"unknown store", func(c *Config) { c.TokenStore = "s3" }, false},
		{"bad backend url", func(c *Config) { c.BackendURL = "not a url" }, false},
		{"grpc without addr", func(c *Config) { c.Transport = TransportGRPC; c.GRPCAddr = "" }, false},
		{"grpc ignores backend url", func(c *Config) { c.Transport = TransportGRPC; c.BackendURL = "" }, true},
		{"redis without addr", func(c *Config) { c.TokenStore = StoreRedis; c.RedisAddr = "" }, false},
		{"memory needs nothing", func(c *Config) { c.TokenStore = StoreMemory; c.DatabaseDSN = "" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
