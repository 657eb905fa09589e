package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()

	Created(rec, map[string]string{"no": "20240101000000000001"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "20240101000000000001", body.Data["no"])
}

func TestErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()

	ErrorWithCode(rec, http.StatusServiceUnavailable, "PLAN_NO_UNAVAILABLE", "try again", errors.New("exhausted"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "PLAN_NO_UNAVAILABLE", body.Code)
	assert.Equal(t, "try again", body.Message)
	assert.Equal(t, "exhausted", body.Error)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	CORSMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/installments", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
