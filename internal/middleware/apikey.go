package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
	apiKeyQuery  = "api_key"

	ctxAPIKeyName = "api_key_name"
)

// APIKeyConfig конфигурация аутентификации сервисных клиентов (приём кликов)
type APIKeyConfig struct {
	// ValidKeys карта валидных API ключей к их описаниям
	ValidKeys map[string]string
	// HeaderName имя заголовка для API ключа (по умолчанию: X-API-Key)
	HeaderName string
}

// APIKey middleware для аутентификации по API ключу
type APIKey struct {
	config APIKeyConfig
}

// NewAPIKey создаёт новый API key middleware
func NewAPIKey(config APIKeyConfig) *APIKey {
	if config.HeaderName == "" {
		config.HeaderName = apiKeyHeader
	}
	return &APIKey{config: config}
}

// Middleware возвращает Gin middleware handler. Ключ берётся из заголовка,
// затем из query параметра api_key. Authorization зарезервирован под JWT.
func (ak *APIKey) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(ak.config.HeaderName)
		if apiKey == "" {
			apiKey = c.Query(apiKeyQuery)
		}

		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_api_key",
				"message": "Требуется API ключ. Передайте его через заголовок X-API-Key или query параметр api_key",
			})
			return
		}

		keyName, ok := ak.lookup(apiKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_api_key",
				"message": "Невалидный API ключ",
			})
			return
		}

		c.Set(ctxAPIKeyName, keyName)
		c.Next()
	}
}

// lookup сравнение за постоянное время, перебираются все ключи
func (ak *APIKey) lookup(apiKey string) (string, bool) {
	var keyName string
	found := false
	for validKey, name := range ak.config.ValidKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(validKey)) == 1 {
			keyName = name
			found = true
		}
	}
	return keyName, found
}

// RequireAPIKey хелпер для роутов, доступных только по API ключу
func RequireAPIKey(validKeys map[string]string) gin.HandlerFunc {
	return NewAPIKey(APIKeyConfig{ValidKeys: validKeys}).Middleware()
}

// APIKeyName имя клиента, прошедшего проверку ключа
func APIKeyName(c *gin.Context) (string, bool) {
	name, exists := c.Get(ctxAPIKeyName)
	if !exists {
		return "", false
	}
	s, ok := name.(string)
	return s, ok
}
