package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        Pinger
	cache     Pinger
	processor service.ClickProcessor
}

func NewHealthHandler(db, cache Pinger, processor service.ClickProcessor) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, processor: processor}
}

// Check godoc
// @Summary Health check
// @Description Database and cache reachability, click queue usage
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/v1/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		}
	}
	// Без кэша редирект читает из БД, поэтому статус не меняется
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			body["cache"] = err.Error()
		}
	}
	if h.processor != nil {
		body["click_queue"] = h.processor.QueueStats()
	}

	c.JSON(status, body)
}
