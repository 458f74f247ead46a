package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/proseplay/proseplay/annotation"
	"github.com/stretchr/testify/require"
)

func TestExtractHostPort(t *testing.T) {
	type tc struct {
		name      string
		addr      string
		wantHost  string
		wantPort  string
		wantError bool
	}

	tests := []tc{
		{
			name:     "with_scheme_host_and_port",
			addr:     "http://localhost:8080",
			wantHost: "localhost",
			wantPort: "8080",
		},
		{
			name:     "with_scheme_only_host",
			addr:     "http://localhost",
			wantHost: "localhost",
			wantPort: "",
		},
		{
			name:     "ipv4_with_scheme",
			addr:     "http://0.0.0.0:8080",
			wantHost: "0.0.0.0",
			wantPort: "8080",
		},
		{
			name:     "domain_with_scheme",
			addr:     "http://example.com:443",
			wantHost: "example.com",
			wantPort: "443",
		},
		{
			name:     "ipv6_with_scheme_host_and_port",
			addr:     "http://[::1]:9090",
			wantHost: "::1",
			wantPort: "9090",
		},
		{
			name:     "ipv6_with_scheme_only_host",
			addr:     "http://[::1]",
			wantHost: "::1",
			wantPort: "",
		},
		{
			name:     "no_scheme_host_and_port",
			addr:     "localhost:8080",
			wantHost: "localhost",
			wantPort: "8080",
		},
		{
			name:     "no_scheme_ipv6",
			addr:     "[::1]:9090",
			wantHost: "::1",
			wantPort: "9090",
		},
		{
			name:      "invalid_url_missing_host",
			addr:      "http://:8080",
			wantError: true,
		},
		{
			name:      "garbage_string",
			addr:      "not a url",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{HTTPServerAddress: tt.addr}
			host, port, err := cfg.ExtractHostPort()

			if tt.wantError {
				require.Error(t, err, "expected error for addr=%q", tt.addr)
				return
			}

			require.NoError(t, err, "unexpected error for addr=%q", tt.addr)
			require.Equal(t, tt.wantHost, host, "wrong host for addr=%q", tt.addr)
			require.Equal(t, tt.wantPort, port, "wrong port for addr=%q", tt.addr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	env := "ENVIRONMENT=production\n" +
		"HTTP_SERVER_ADDRESS=0.0.0.0:9000\n" +
		"SESSION_TTL=2h\n" +
		"ALLOWED_ORIGINS=http://a.test, http://b.test\n" +
		"MAX_TEXT_LENGTH=500\n" +
		"MAX_WARNINGS=8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "0.0.0.0:9000", cfg.HTTPServerAddress)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	require.Equal(t, 500, cfg.MaxTextLength)
	require.Equal(t, 8, cfg.MaxWarnings)
	require.Equal(t, "debug", cfg.LogLevel)

	// defaults
	require.Equal(t, "localhost:6379", cfg.RedisAddress)
	require.Equal(t, 300*time.Millisecond, cfg.DefaultTransition)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Empty(t, cfg.AllowedOrigins)
	require.Equal(t, annotation.DefaultMaxWarnings, cfg.MaxWarnings)
}

func TestListenAddress(t *testing.T) {
	cfg := Config{HTTPServerAddress: "http://localhost"}
	addr, err := cfg.ListenAddress()
	require.NoError(t, err)
	require.Equal(t, "localhost:80", addr)

	cfg.HTTPServerAddress = "0.0.0.0:8080"
	addr, err = cfg.ListenAddress()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", addr)

	cfg.HTTPServerAddress = "http://:8080"
	_, err = cfg.ListenAddress()
	require.Error(t, err)
}
