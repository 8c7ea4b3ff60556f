package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jknack0/streamer-poc/pkg/logger"
)

func newObservedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{Logger: zap.New(core)}, logs
}

func TestRequestIDMiddleware(t *testing.T) {
	log, logs := newObservedLogger()

	var ctxID string
	handler := RequestID(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/polls/p1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	headerID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, headerID)
	assert.Equal(t, headerID, ctxID)

	entries := logs.FilterMessage("Request received").All()
	require.Len(t, entries, 1)
	assert.Equal(t, headerID, entries[0].ContextMap()["request_id"])
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestCORSAllowedOrigin(t *testing.T) {
	log, logs := newObservedLogger()

	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"http://localhost:5173"}

	handler := CORS(config, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/polls/p1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, logs.FilterMessage("CORS origin not allowed").All())
}

func TestCORSRejectedOrigin(t *testing.T) {
	log, logs := newObservedLogger()

	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"http://localhost:5173"}

	handler := CORS(config, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/polls/p1", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	entries := logs.FilterMessage("CORS origin not allowed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http://evil.example", entries[0].ContextMap()["origin"])
}

func TestCORSPreflight(t *testing.T) {
	log, _ := newObservedLogger()

	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"*"}

	handler := CORS(config, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight should not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/polls/p1/votes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
