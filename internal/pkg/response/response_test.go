package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessAndErrorResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, map[string]string{"username": "johnsmith"})
	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	require.Equal(t, "success", body["status"])
	require.Equal(t, "johnsmith", body["data"].(map[string]any)["username"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, 400, "bad request", "BAD_REQ")
	require.Equal(t, 400, w.Code)
	body = decode(t, w)
	require.Equal(t, "error", body["status"])
	require.Equal(t, "bad request", body["error"])
	require.Equal(t, "BAD_REQ", body["code"])
	require.NotContains(t, body, "details")
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Created(c, gin.H{"id": "1"})
	require.Equal(t, 201, w.Code)
	require.Equal(t, "success", decode(t, w)["status"])
}

func TestErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ErrorWithDetails(c, 429, "slow down", gin.H{"retryAfter": "60s"}, "RATE_LIMITED")
	require.Equal(t, 429, w.Code)
	body := decode(t, w)
	require.Equal(t, "RATE_LIMITED", body["code"])
	require.Equal(t, "60s", body["details"].(map[string]any)["retryAfter"])
}

func TestBindJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	BindJSONError(c, errors.New("unexpected EOF"))
	require.Equal(t, 400, w.Code)
	require.Equal(t, "INVALID_JSON", decode(t, w)["code"])
}
