package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/server"
	"github.com/mutantautomate/mutant/pkg/errors"
)

func parse(t *testing.T, args ...string) (server.Config, error) {
	t.Helper()
	cmd := NewCommand(&appcontext.Mock{})
	require.NoError(t, cmd.ParseFlags(args))
	return parseConfig(cmd)
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("HTTP_HOST", "")
	t.Setenv(APIKeyEnv, "")

	cfg, err := parse(t)
	require.NoError(t, err)

	want := server.DefaultConfig()
	assert.Equal(t, want.Host, cfg.Host)
	assert.Equal(t, want.Port, cfg.Port)
	assert.Equal(t, want.PathPrefix, cfg.PathPrefix)
	assert.Equal(t, want.RateLimit, cfg.RateLimit)
	assert.Equal(t, want.AuthHeader, cfg.AuthHeader)
	assert.False(t, cfg.AuthEnabled)
	assert.Zero(t, cfg.WriteTimeout)
}

func TestParseConfigFlags(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("HTTP_HOST", "")
	t.Setenv(APIKeyEnv, "")

	cfg, err := parse(t,
		"--port", "3000",
		"--host", "0.0.0.0",
		"--cors-origins", "https://a.example,https://b.example",
		"--auth", "--api-key", "secret",
		"--rate-limit", "0",
		"--prefix", "/v2",
	)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, "/v2", cfg.PathPrefix)
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv(APIKeyEnv, "from-env")

	cfg, err := parse(t, "--port", "3000", "--auth")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestParseConfigInvalid(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv(APIKeyEnv, "")

	tests := []struct {
		name string
		env  string
		args []string
	}{
		{"bad env port", "http", nil},
		{"port out of range", "", []string{"--port", "70000"}},
		{"negative rate limit", "", []string{"--rate-limit", "-1"}},
		{"auth without key", "", []string{"--auth"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTP_PORT", tt.env)
			_, err := parse(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeUntilCancelled(t *testing.T) {
	mock := &appcontext.Mock{
		ClientWithOptionsFunc: func(opts ...mutant.Option) (mutant.Client, error) {
			return mutant.New(append([]mutant.Option{mutant.WithRetries(0)}, opts...)...)
		},
	}

	cfg := server.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, mock, cfg) }()

	url := fmt.Sprintf("http://%s/health", cfg.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
