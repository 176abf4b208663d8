package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovererWritesErrorEnvelope(t *testing.T) {
	panicking := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/analytics/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code, "faults stay inside the response contract")
	var env Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeInternalError, env.Error.Code)
	assert.Equal(t, "boom", env.Error.Message)
	assert.False(t, env.Meta.Timestamp.IsZero())
}

func TestRecovererPassesThroughNormally(t *testing.T) {
	handler := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, r, map[string]string{"status": "ok"})
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/health", nil))

	var env Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
}
