package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SergeiKhy/utm-tracker/internal/middleware"
	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// principal вызывающий из JWT. Роуты без RequireJWT сюда не попадают.
func principal(c *gin.Context) models.Principal {
	p, _ := middleware.PrincipalFromContext(c)
	return p
}

// pathID разбирает :id, при ошибке сам отвечает 400
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

// filterUserID необязательный query параметр filter_user_id
func filterUserID(c *gin.Context) (*int64, bool) {
	raw := c.Query("filter_user_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: "filter_user_id must be an integer",
		})
		return nil, false
	}
	return &id, true
}

func bindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("Invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
	})
}

// respondError переводит ошибки сервиса в HTTP статус
func respondError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_url", Message: "Destination must be an absolute http(s) URL"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Message: err.Error()})
	case errors.Is(err, service.ErrUnknownCatalog):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown_catalog", Message: "Unknown catalog"})
	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Link not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "User not found"})
	case errors.Is(err, service.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Entry not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "Access denied"})
	case errors.Is(err, service.ErrSlugExhausted):
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "slug_exhausted", Message: "Could not allocate a unique slug, retry later"})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: msg})
	}
}
