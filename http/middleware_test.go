package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	bluelisthttp "github.com/sagarc03/bluelist/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendMiddleware_AttachesBackend(t *testing.T) {
	var attached bool
	handler := bluelisthttp.BackendMiddleware(new(MockStore), 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, attached = bluelisthttp.BackendFromContext(r.Context())
		_, hasDeadline := r.Context().Deadline()
		assert.False(t, hasDeadline)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, attached)
}

func TestBackendMiddleware_AppliesTimeout(t *testing.T) {
	handler := bluelisthttp.BackendMiddleware(new(MockStore), time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestBackendFromContext_Missing(t *testing.T) {
	_, ok := bluelisthttp.BackendFromContext(context.Background())
	assert.False(t, ok)
}

func TestMaxBodySize(t *testing.T) {
	read := func(limit int64, body string) error {
		var readErr error
		handler := bluelisthttp.MaxBodySize(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		return readErr
	}

	assert.NoError(t, read(0, strings.Repeat("x", 1024)))
	assert.NoError(t, read(16, "short"))

	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, read(4, "longer than four"), &tooLarge)
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.RequestID(bluelisthttp.RequestLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items?x=1", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/items", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["response_bytes"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestRequestLog_KeepsWriterInterfaces(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var flusher bool
	handler := bluelisthttp.RequestLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		flusher = ok
		_, _ = w.Write([]byte("chunk"))
		if ok {
			f.Flush()
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.True(t, flusher, "wrapped writer must still implement http.Flusher")
	assert.True(t, rec.Flushed)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, float64(len("chunk")), entry["response_bytes"])
}
