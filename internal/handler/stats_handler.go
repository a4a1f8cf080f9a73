package handler

import (
	"net/http"

	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsHandler статистика для дашборда. Сервис возвращает nil при отсутствии
// данных или недоступной БД, клиент получает JSON null.
type StatsHandler struct {
	service service.StatsService
	logger  *zap.Logger
}

func NewStatsHandler(service service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{service: service, logger: logger}
}

// LinkStats godoc
// @Summary Click statistics of a link
// @Description Breakdowns by country, device, browser, OS and day plus the 20 most recent clicks
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link ID"
// @Success 200 {object} models.LinkStats
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/links/{id}/stats [get]
func (h *StatsHandler) LinkStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	stats, err := h.service.LinkStats(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GlobalStats godoc
// @Summary Aggregated statistics
// @Description Statistics across own links, or all links for an admin
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param filter_user_id query int false "Owner filter, admin only"
// @Success 200 {object} models.GlobalStats
// @Router /api/v1/stats [get]
func (h *StatsHandler) GlobalStats(c *gin.Context) {
	filter, ok := filterUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.GlobalStats(c.Request.Context(), principal(c), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
