package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := signToken(secret, "juan", time.Now().Add(time.Hour))
	require.NoError(t, err)

	username, err := parseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "juan", username)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := signToken([]byte("secret-a"), "juan", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = parseToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := signToken(secret, "juan", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = parseToken(secret, token)
	assert.Error(t, err)
}

func TestSignedInTracksSessions(t *testing.T) {
	s := NewService(nil, "test-secret", time.Hour, zap.NewNop())
	assert.False(t, s.SignedIn())

	s.mu.Lock()
	s.sessions["juan"] = time.Now().Add(time.Hour)
	s.mu.Unlock()
	assert.True(t, s.SignedIn())

	s.Logout("juan")
	assert.False(t, s.SignedIn())
}

func TestSignedInPrunesExpiredSessions(t *testing.T) {
	s := NewService(nil, "test-secret", time.Hour, zap.NewNop())

	s.mu.Lock()
	s.sessions["juan"] = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	assert.False(t, s.SignedIn())

	s.mu.Lock()
	_, still := s.sessions["juan"]
	s.mu.Unlock()
	assert.False(t, still)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewService(nil, "test-secret", time.Hour, zap.NewNop())
	token, err := signToken(s.secret, "juan", time.Now().Add(time.Hour))
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", Middleware(s), func(c *gin.Context) {
		c.String(http.StatusOK, Identity(c))
	})

	// Valid token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "juan", w.Body.String())

	// Missing header
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
