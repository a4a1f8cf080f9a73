package middleware

import (
	"net/http"
	"strings"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/gin-gonic/gin"
)

const ctxPrincipal = "principal"

// TokenParser проверяет bearer токен и возвращает вызывающего
type TokenParser interface {
	Parse(token string) (models.Principal, error)
}

// RequireJWT пропускает запрос только с валидным Authorization: Bearer <jwt>
func RequireJWT(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Требуется заголовок Authorization: Bearer <token>",
			})
			return
		}

		principal, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Невалидный или просроченный токен",
			})
			return
		}

		c.Set(ctxPrincipal, principal)
		c.Next()
	}
}

// RequireAdmin ставится после RequireJWT
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok || !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Доступно только администратору",
			})
			return
		}
		c.Next()
	}
}

// PrincipalFromContext вызывающий, установленный RequireJWT
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(ctxPrincipal)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
