package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"estudio/internal/apierror"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = serve(r, http.MethodGet, "/", nil)
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "a fresh id is generated when none is sent")
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	r := gin.New()
	r.Use(RateLimiter(rdb, 3, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	}
	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, mr.TTL(keys[0]) > 0, "window key expires")
}

func TestRateLimiter_FailsOpenWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	r := gin.New()
	r.Use(RateLimiter(rdb, 1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", JWTAuth(testSecret), RequireRole("administrador"), func(c *gin.Context) {
		c.String(http.StatusOK, ActorID(c).String())
	})

	sign := func(secret, userID, rol string, exp time.Duration) string {
		claims := JWTClaims{
			UserID: userID, Username: "u", Rol: rol, Tipo: TokenAccess,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp))},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	bearer := func(tok string) map[string]string { return map[string]string{"Authorization": "Bearer " + tok} }
	id := uuid.NewString()

	w := serve(r, http.MethodGet, "/admin", bearer(sign(testSecret, id, "administrador", time.Hour)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", bearer(sign(testSecret, id, "operador", time.Hour))).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", bearer(sign("otro_secreto", id, "administrador", time.Hour))).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", bearer(sign(testSecret, id, "administrador", -time.Minute))).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", nil).Code)

	refresh := JWTClaims{
		UserID: id, Username: "u", Rol: "administrador", Tipo: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", bearer(tok)).Code, "refresh tokens are not access tokens")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	abierto := gin.New()
	abierto.Use(CORS(nil))
	abierto.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(abierto, http.MethodGet, "/", map[string]string{"Origin": "http://cualquiera.test"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	r := gin.New()
	r.Use(CORS([]string{"https://estudio.test"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w = serve(r, http.MethodOptions, "/", map[string]string{"Origin": "https://estudio.test"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://estudio.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	w = serve(r, http.MethodGet, "/", map[string]string{"Origin": "https://otro.test"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/conflicto", func(c *gin.Context) { _ = c.Error(apierror.Conflict("Caja ocupada", nil)) })
	r.GET("/interno", func(c *gin.Context) { _ = c.Error(errors.New("pq: relation does not exist")) })

	w := serve(r, http.MethodGet, "/conflicto", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Caja ocupada")

	w = serve(r, http.MethodGet, "/interno", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}
