package handler

import (
	"net/http"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ClickHandler struct {
	service service.ClickService
	logger  *zap.Logger
}

func NewClickHandler(service service.ClickService, logger *zap.Logger) *ClickHandler {
	return &ClickHandler{service: service, logger: logger}
}

// RecordClick godoc
// @Summary Record a click
// @Description Store a click event for a link and increment its counter, bypassing the redirect
// @Tags clicks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.RecordClickInput true "Click"
// @Success 201 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/clicks [post]
func (h *ClickHandler) RecordClick(c *gin.Context) {
	var input models.RecordClickInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, h.logger, err)
		return
	}

	click, err := h.service.RecordInput(c.Request.Context(), &input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to record click")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": click.ID})
}

// ListClicks godoc
// @Summary List click events of a link
// @Tags clicks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link ID"
// @Success 200 {array} models.Click
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id}/clicks [get]
func (h *ClickHandler) ListClicks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	clicks, err := h.service.ListByLink(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list clicks")
		return
	}

	c.JSON(http.StatusOK, clicks)
}
