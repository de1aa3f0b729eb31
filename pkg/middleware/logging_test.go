package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogger_PropagatesRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var seen *logrus.Entry
	h := WithLogger(logger, "X-Request-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Logger(r.Context(), nil)
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/hris/sync/directory", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	require.NotNil(t, seen)
	assert.Equal(t, "req-42", seen.Data["request-id"])

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "request completed", last.Message)
	assert.Equal(t, http.StatusAccepted, last.Data["status-code"])
}

func TestWithLogger_RecoversPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := WithLogger(logger, "X-Request-ID")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "INTERNAL_SERVER_ERROR")
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLogger_Fallback(t *testing.T) {
	logger, _ := test.NewNullLogger()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, logger, Logger(req.Context(), logger).Logger)
}
