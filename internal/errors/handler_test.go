package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franfh599/dashboard-autos/internal/infrastructure"
	"github.com/franfh599/dashboard-autos/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	h := NewErrorHandler(logger, true)
	assert.True(t, h.includeStack)
	assert.NotNil(t, h.logger)

	assert.NotNil(t, NewErrorHandler(nil, false).logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout, ""},
		{"canceled", fmt.Errorf("load: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout, ""},
		{"api validation", ErrValidation("top", "top must be at least 1"), http.StatusBadRequest, TypeValidation, "VALIDATION_FAILED"},
		{"api payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "PAYLOAD_TOO_LARGE"},
		{"api rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit, "RATE_LIMIT_EXCEEDED"},
		{"app validation", NewAppValidationError("brand is required"), http.StatusBadRequest, TypeValidation, "VALIDATION"},
		{"app not found", NewNotFoundError("brand LADA", nil), http.StatusNotFound, TypeDataNotFound, "NOT_FOUND"},
		{"app no data", NewNoDataError("no dataset source configured"), http.StatusConflict, TypeNoData, "NO_DATA"},
		{"app parsing", NewParsingError("read x.parquet", nil), http.StatusUnprocessableEntity, TypeDataCorrupted, "PARSING"},
		{"app network", NewNetworkError("fetch dataset", nil), http.StatusBadGateway, TypeSourceUnreachable, "NETWORK"},
		{"app storage", NewStorageError("create output directory", nil), http.StatusInternalServerError, TypeInternal, "STORAGE"},
		{"app export", NewExportError("xlsx", errors.New("zip: write error")), http.StatusInternalServerError, TypeExportFailed, "EXPORT_FAILED"},
		{"app config", NewConfigError("load config", nil), http.StatusInternalServerError, TypeInternal, "CONFIG"},
		{"wrapped app error", fmt.Errorf("macro: %w", NewNoDataError("none")), http.StatusConflict, TypeNoData, "NO_DATA"},
		{"plain error", errors.New("something went wrong"), http.StatusInternalServerError, TypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/market/macro", nil)

			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/market/macro", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")

			testutil.AssertLogContains(t, logHandler, slog.LevelError, "request failed")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()

	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
}

func TestErrorHandler_Extensions(t *testing.T) {
	h := NewErrorHandler(nil, true)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/market/deep-dive", nil)
	r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-123"))

	err := NewNotFoundError("brand LADA", nil).WithContext("brand", "LADA")
	h.HandleError(w, r, err)

	body := decodeProblem(t, w)
	assert.Equal(t, "trace-123", body["trace_id"])
	assert.Contains(t, body, "stack")
	assert.Equal(t, map[string]interface{}{"brand": "LADA"}, body["context"])
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	h := NewErrorHandler(nil, false)
	r := httptest.NewRequest(http.MethodGet, "/api/market/yoy", nil)

	problem := h.ErrorToProblem(ErrValidation("years", "invalid year"), r)

	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Equal(t, "Bad Request", problem.Title)
	assert.Equal(t, ValidationError{Field: "years", Message: "invalid year"}, problem.Extensions["details"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)
	w := httptest.NewRecorder()

	h.HandlePanic(w, httptest.NewRequest(http.MethodPost, "/api/market/dataset/reload", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "nil map", body["panic"])
	testutil.AssertLogContains(t, logHandler, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/market/macro", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method DELETE is not allowed for this endpoint", decodeProblem(t, w)["detail"])
}

func TestProblemDetailsJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeNoData, "Conflict", "", "").
		WithExtension("error_code", "NO_DATA")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "NO_DATA", body["error_code"])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
}
