package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

func TestJSONEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/grades", nil)
	c.Set("request_id", "req-abc123")

	JSON(c, http.StatusOK, gin.H{"ok": true}, nil)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Equal(t, "req-abc123", envelope.RequestID)
	require.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
}

func TestErrorEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/grades", nil)
	c.Set("request_id", "req-abc123")

	Error(c, appErrors.ErrNotFound)

	require.Equal(t, http.StatusNotFound, recorder.Code)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Equal(t, "req-abc123", envelope.RequestID)
	require.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}
