package errors

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/internal/middleware"
)

func TestProblemDetailsMarshalFlattensExtensions(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "missing", "/api/x").
		WithExtension("error_code", "NO_DATA").
		WithTraceID("abc-123")

	encoded, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &doc))

	assert.Equal(t, TypeNotFound, doc["type"])
	assert.Equal(t, "Not Found", doc["title"])
	assert.Equal(t, float64(404), doc["status"])
	assert.Equal(t, "NO_DATA", doc["error_code"])
	assert.Equal(t, "abc-123", doc["trace_id"])
	assert.NotContains(t, doc, "Extensions")
}

func TestAPIErrorInterface(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad request")
	assert.Equal(t, "bad request", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestHandleErrorCarriesRequestID(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleError(w, r, New(http.StatusNotFound, "NO_DATA", "no claim data loaded"))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/claims/analysis", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(rec, req)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "req-42", doc["trace_id"])
}

func TestHandleErrorMapsSentinels(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewErrorHandler(logger, false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"api error", New(http.StatusUnprocessableEntity, "NO_FEATURES", "no usable columns"), http.StatusUnprocessableEntity, "NO_FEATURES"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "Request Timeout"},
		{"generic", assertErr("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
