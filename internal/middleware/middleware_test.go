package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/auth"
	"github.com/SergeiKhy/utm-tracker/internal/middleware"
	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func doRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestRateLimiter_Middleware проверяет работу rate limiter middleware
func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Создаём rate limiter с лимитом 5 запросов в секунду и burst 5
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Первые 5 запросов должны пройти (в пределах burst лимита)
	for i := 0; i < 5; i++ {
		w := doRequest(router, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Следующий запрос должен быть ограничен
	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, 1, rl.Visitors())
}

// TestRateLimiter_PrincipalKey лимиты пользователей независимы
func TestRateLimiter_PrincipalKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	router := gin.New()
	router.Use(middleware.RequireJWT(issuer), rl.MiddlewareWithKey(middleware.PrincipalKey))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	token1, err := issuer.Sign(models.Principal{UserID: 1, Role: models.RoleUser})
	require.NoError(t, err)
	token2, err := issuer.Sign(models.Principal{UserID: 2, Role: models.RoleUser})
	require.NoError(t, err)

	request := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return doRequest(router, req).Code
	}

	// Пользователь 1 - первые 2 запроса успешны
	assert.Equal(t, http.StatusOK, request(token1))
	assert.Equal(t, http.StatusOK, request(token1))
	assert.Equal(t, http.StatusTooManyRequests, request(token1))

	// Пользователь 2 - запрос успешен (другой ключ)
	assert.Equal(t, http.StatusOK, request(token2))
}

// TestAPIKey_Middleware проверяет аутентификацию по API ключу
func TestAPIKey_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequireAPIKey(map[string]string{
		"test-key-1": "collector",
		"test-key-2": "backfill",
	}))
	router.POST("/clicks", func(c *gin.Context) {
		name, _ := middleware.APIKeyName(c)
		c.JSON(http.StatusOK, gin.H{"client": name})
	})

	// Запрос без API ключа должен быть отклонён
	w := doRequest(router, httptest.NewRequest(http.MethodPost, "/clicks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_api_key")

	// Запрос с невалидным API ключом должен быть отклонён
	req := httptest.NewRequest(http.MethodPost, "/clicks", nil)
	req.Header.Set("X-API-Key", "invalid-key")
	w = doRequest(router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_api_key")

	// Запрос с валидным API ключом должен пройти
	req = httptest.NewRequest(http.MethodPost, "/clicks", nil)
	req.Header.Set("X-API-Key", "test-key-2")
	w = doRequest(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"client":"backfill"`)

	// Ключ в query параметре
	w = doRequest(router, httptest.NewRequest(http.MethodPost, "/clicks?api_key=test-key-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Bearer зарезервирован под JWT и ключом не считается
	req = httptest.NewRequest(http.MethodPost, "/clicks", nil)
	req.Header.Set("Authorization", "Bearer test-key-1")
	w = doRequest(router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRequireJWT проверяет bearer аутентификацию и роль администратора
func TestRequireJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := auth.NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/", middleware.RequireJWT(issuer))
	api.GET("/me", func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, p)
	})
	api.GET("/admin", middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userToken, err := issuer.Sign(models.Principal{UserID: 7, Role: models.RoleUser})
	require.NoError(t, err)
	adminToken, err := issuer.Sign(models.Principal{UserID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	forged, err := other.Sign(models.Principal{UserID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	get := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return doRequest(router, req)
	}

	assert.Equal(t, http.StatusUnauthorized, get("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get("/me", "Token "+userToken).Code)
	assert.Equal(t, http.StatusUnauthorized, get("/me", "Bearer "+forged).Code)

	w := get("/me", "Bearer "+userToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"user"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, get("/admin", "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusNoContent, get("/admin", "Bearer "+adminToken).Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(zap.NewNop()))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	generated := w.Header().Get(middleware.RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w = doRequest(router, req)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}
