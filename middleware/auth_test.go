package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("64f000000000000000000001")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", claims.UserID)

	// Tokens expire seven days out.
	expected := time.Now().Add(TokenTTL)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &Claims{
		UserID: "64f000000000000000000001",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &Claims{
		UserID: "64f000000000000000000001",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func authedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware())
	router.GET("/me", func(c *gin.Context) {
		c.JSON(200, gin.H{"userId": c.GetString("userId")})
	})
	return router
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := authedRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := authedRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareSetsUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := authedRouter()

	token, err := GenerateToken("64f000000000000000000001")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "64f000000000000000000001")
}

func TestMiddlewareAcceptsQueryToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	router := authedRouter()

	token, err := GenerateToken("64f000000000000000000002")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "64f000000000000000000002")
}
