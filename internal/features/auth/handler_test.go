package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xyz-asif/promptshare/internal/pkg/jwt"
)

func setupRouter(t *testing.T, store *memStore, verifier TokenVerifier) (*gin.Engine, *jwt.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := newTestService(store)
	jwtCfg := jwt.DefaultConfig("test-secret", 1)
	noLimit := func(c *gin.Context) { c.Next() }

	r := gin.New()
	Mount(r.Group("/api/v1"), NewHandler(svc, verifier, jwtCfg), NewAuthMiddleware(svc, jwtCfg), noLimit)
	return r, jwtCfg
}

func postSignIn(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGoogleSignIn_NewUser(t *testing.T) {
	store := newMemStore()
	r, jwtCfg := setupRouter(t, store, stubVerifier{profile: &Profile{
		Subject: "g1", Email: "jana@example.com", Name: "Müller Čechová", Picture: "https://example.com/p.jpg",
	}})

	w := postSignIn(r, `{"idToken":"header.payload.sig"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["isNewUser"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "mullercechova", user["username"])
	assert.Equal(t, "https://example.com/p.jpg", user["image"])

	claims, err := jwt.ValidateToken(data["accessToken"].(string), jwtCfg)
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.UserID)
	assert.Equal(t, "mullercechova", claims.Username)
}

func TestGoogleSignIn_ReturningUser(t *testing.T) {
	store := newMemStore(&User{Email: "jana@example.com", Username: "janacech1"})
	r, _ := setupRouter(t, store, stubVerifier{profile: &Profile{Email: "jana@example.com", Name: "Jana"}})

	w := postSignIn(r, `{"idToken":"t"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["isNewUser"])
	assert.Equal(t, "janacech1", data["user"].(map[string]any)["username"])
}

func TestGoogleSignIn_BadBody(t *testing.T) {
	r, _ := setupRouter(t, newMemStore(), stubVerifier{})

	w := postSignIn(r, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", decodeBody(t, w)["code"])
}

func TestGoogleSignIn_InvalidToken(t *testing.T) {
	r, _ := setupRouter(t, newMemStore(), stubVerifier{err: ErrInvalidIDToken})

	w := postSignIn(r, `{"idToken":"forged"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_ID_TOKEN", decodeBody(t, w)["code"])
}

func TestGoogleSignIn_MissingEmail(t *testing.T) {
	r, _ := setupRouter(t, newMemStore(), stubVerifier{profile: &Profile{Subject: "g1", Name: "John"}})

	w := postSignIn(r, `{"idToken":"t"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMAIL_REQUIRED", decodeBody(t, w)["code"])
}

func TestGoogleSignIn_StoreFailureDeniesSignIn(t *testing.T) {
	store := newMemStore()
	store.existsErr = errStoreDown
	r, _ := setupRouter(t, store, stubVerifier{profile: &Profile{Email: "x@example.com", Name: "John Smith"}})

	w := postSignIn(r, `{"idToken":"t"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "SIGNIN_DENIED", body["code"])
	assert.NotContains(t, body, "data")
}

func TestGetSession(t *testing.T) {
	u := &User{Email: "jana@example.com", Username: "janacech1", DisplayName: "Jana", Image: "https://example.com/j.jpg"}
	r, jwtCfg := setupRouter(t, newMemStore(u), stubVerifier{})
	token, err := jwt.GenerateToken(u.ID.Hex(), u.Email, u.Username, jwtCfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, u.ID.Hex(), data["id"])
	assert.Equal(t, "Jana", data["name"])
	assert.Equal(t, "https://example.com/j.jpg", data["image"])
}

func TestGetSession_Unauthorized(t *testing.T) {
	r, jwtCfg := setupRouter(t, newMemStore(), stubVerifier{})
	orphan, err := jwt.GenerateToken("65f1a2b3c4d5e6f708192a3b", "gone@example.com", "gonegone", jwtCfg)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "AUTH_REQUIRED"},
		{"wrong scheme", "Basic abc", "INVALID_AUTH_FORMAT"},
		{"garbage token", "Bearer abc", "INVALID_TOKEN"},
		{"unknown user", "Bearer " + orphan, "USER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeBody(t, w)["code"])
		})
	}
}

func TestGetUserByUsername(t *testing.T) {
	u := &User{Email: "jana@example.com", Username: "janacech1", DisplayName: "Jana"}
	r, _ := setupRouter(t, newMemStore(u), stubVerifier{})

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/users/janacech1", http.StatusOK},
		{"/api/v1/users/nobody123", http.StatusNotFound},
		{"/api/v1/users/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.status, w.Code, tt.path)
	}
}
