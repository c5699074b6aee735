package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant/pkg/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(tag("outer"), tag("inner"))(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := Logger(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/mutate", nil))

	out := buf.String()
	assert.Contains(t, out, `"message":"inside"`)
	assert.Contains(t, out, `"path":"/api/v1/mutate"`)
	assert.Contains(t, out, `"status":418`)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(RequestIDHeader)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()
	h := Recovery(&logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestResponseWriterPassesFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	var f http.Flusher = rw
	f.Flush()
	assert.True(t, rec.Flushed)

	_, _, err := rw.Hijack()
	assert.Error(t, err)
}

func TestCORS(t *testing.T) {
	t.Run("allow all", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowAll = true
		w := httptest.NewRecorder()
		CORS(cfg)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowedOrigins = []string{"https://viewer.example"}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://viewer.example")
		w := httptest.NewRecorder()
		CORS(cfg)(okHandler()).ServeHTTP(w, req)
		assert.Equal(t, "https://viewer.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowedOrigins = []string{"https://viewer.example"}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		CORS(cfg)(okHandler()).ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
		w := httptest.NewRecorder()
		CORS(DefaultCORSConfig())(next).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, called)
		assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE"))
	})
}

func TestAuth(t *testing.T) {
	logger := zerolog.Nop()
	cfg := DefaultAuthConfig()
	cfg.Enabled = true
	cfg.APIKey = "secret"
	h := Auth(cfg, &logger)(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		status int
	}{
		{"missing key", "/api/v1/state", "", "", http.StatusUnauthorized},
		{"wrong key", "/api/v1/state", "X-API-Key", "nope", http.StatusUnauthorized},
		{"header key", "/api/v1/state", "X-API-Key", "secret", http.StatusOK},
		{"bearer key", "/api/v1/state", "Authorization", "Bearer secret", http.StatusOK},
		{"raw authorization", "/api/v1/state", "Authorization", "secret", http.StatusOK},
		{"public path", "/api/v1/health", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	logger := zerolog.Nop()
	w := httptest.NewRecorder()
	Auth(DefaultAuthConfig(), &logger)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(2, &logger)
	h := RateLimit(rl)(okHandler())

	do := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1000", ""))
	require.Equal(t, http.StatusOK, do("10.0.0.1:1001", ""))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002", ""))

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000", ""))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1003", "192.168.1.7, 10.0.0.1"))
	assert.Equal(t, 3, rl.Visitors())
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(10, &logger)
	rl.Allow("10.0.0.1")
	require.Equal(t, 1, rl.Visitors())

	rl.evict(rl.visitors["10.0.0.1"].lastSeen.Add(rl.idle + 1))
	assert.Equal(t, 0, rl.Visitors())
}
