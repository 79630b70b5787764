package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/helpers"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *helpers.SessionStore, *helpers.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions := helpers.NewSessionStore(rdb, time.Hour)
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)

	r := gin.New()
	r.GET("/whoami", Auth(sessions, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r, sessions, jwt
}

func get(r *gin.Engine, header, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	r, sessions, jwt := newAuthRouter(t)

	token, _, err := jwt.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(t.Context(), "uid-1", "sid-1", "a@b.co", "Alice"))

	w := get(r, "Bearer "+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-1", w.Body.String())
}

func TestAuthAcceptsCookie(t *testing.T) {
	r, sessions, jwt := newAuthRouter(t)

	token, _, err := jwt.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(t.Context(), "uid-1", "sid-1", "a@b.co", "Alice"))

	w := get(r, "", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := get(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := get(r, "Bearer not.a.jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	r, sessions, jwt := newAuthRouter(t)

	token, _, err := jwt.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(t.Context(), "uid-1", "sid-1", "a@b.co", "Alice"))
	require.NoError(t, sessions.Revoke(t.Context(), "uid-1"))

	w := get(r, "Bearer "+token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsSupersededSession(t *testing.T) {
	r, sessions, jwt := newAuthRouter(t)

	token, _, err := jwt.GenerateAccessToken("uid-1", "sid-1")
	require.NoError(t, err)
	require.NoError(t, sessions.Save(t.Context(), "uid-1", "sid-1", "a@b.co", "Alice"))
	require.NoError(t, sessions.Save(t.Context(), "uid-1", "sid-2", "a@b.co", "Alice"))

	w := get(r, "Bearer "+token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
