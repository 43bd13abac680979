package rest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// mockLogger is a test logger that captures log messages
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func newMockLogger() *mockLogger {
	return &mockLogger{
		messages: make([]string, 0),
	}
}

func (m *mockLogger) Debug(msg string, args ...any) { m.log("DEBUG", msg, args...) }
func (m *mockLogger) Info(msg string, args ...any)  { m.log("INFO", msg, args...) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.log("WARN", msg, args...) }
func (m *mockLogger) Error(msg string, args ...any) { m.log("ERROR", msg, args...) }
func (m *mockLogger) Fatal(msg string, args ...any) { m.log("FATAL", msg, args...) }

func (m *mockLogger) log(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	formatted := fmt.Sprintf("[%s] %s", level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		formatted += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	m.messages = append(m.messages, formatted)
}

func (m *mockLogger) getOutput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.messages, "\n")
}

func TestLoggingMiddlewareWithDifferentStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Accepted", http.StatusAccepted},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
		{"InternalServerError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newMockLogger()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			wrapped := LoggingMiddleware(logger)(handler)
			req := httptest.NewRequest(http.MethodGet, "/api/queue/status", nil)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			require.Equal(t, tt.statusCode, w.Code)
			out := logger.getOutput()
			require.Contains(t, out, "HTTP request")
			require.Contains(t, out, "/api/queue/status")
			require.Contains(t, out, fmt.Sprintf("status=%d", tt.statusCode))
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := newMockLogger()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	wrapped := RecoveryMiddleware(logger)(handler)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	out := logger.getOutput()
	require.Contains(t, out, "[ERROR] Panic recovered")
	require.Contains(t, out, "something went wrong")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("assigns new id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, seen)
	})

	t.Run("keeps caller id", func(t *testing.T) {
		callerID := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, callerID)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, callerID, w.Header().Get(RequestIDHeader))
		require.Equal(t, callerID, seen)
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "not a uuid\n")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.NotEqual(t, "not a uuid\n", seen)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
	})
}

func TestMaxBytesMiddleware(t *testing.T) {
	handler := MaxBytesMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too long")))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestChainMiddlewareWithPanic(t *testing.T) {
	logger := newMockLogger()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	wrapped := ChainMiddleware(
		handler,
		RequestIDMiddleware,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/transform", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
	require.Contains(t, logger.getOutput(), "Panic recovered")
}
