package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service        service.LinkService
	clickProcessor service.ClickProcessor
	logger         *zap.Logger
}

func NewLinkHandler(service service.LinkService, clickProcessor service.ClickProcessor, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service:        service,
		clickProcessor: clickProcessor,
		logger:         logger,
	}
}

// CreateLink godoc
// @Summary Create a UTM link
// @Description Build the UTM URL from catalog names or explicit utm_* values and assign a short slug
// @Tags links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateLinkInput true "Link creation request"
// @Success 201 {object} models.Link
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var input models.CreateLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, h.logger, err)
		return
	}

	link, err := h.service.CreateLink(c.Request.Context(), principal(c), &input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create link")
		return
	}

	c.JSON(http.StatusCreated, link)
}

// ListLinks godoc
// @Summary List UTM links
// @Description Own links, or every link (optionally filtered) for an admin
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param filter_user_id query int false "Owner filter, admin only"
// @Success 200 {array} models.Link
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	filter, ok := filterUserID(c)
	if !ok {
		return
	}

	links, err := h.service.ListLinks(c.Request.Context(), principal(c), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list links")
		return
	}

	c.JSON(http.StatusOK, links)
}

// GetLink godoc
// @Summary Get a UTM link
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link ID"
// @Success 200 {object} models.Link
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	link, err := h.service.GetLink(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get link")
		return
	}

	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary Delete a UTM link
// @Description Delete a link with its click events
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param id path int true "Link ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLink(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

// CleanupTestData godoc
// @Summary Delete test data
// @Description Delete links and personal catalog entries containing "test" (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/admin/cleanup-test-data [post]
func (h *LinkHandler) CleanupTestData(c *gin.Context) {
	result, err := h.service.CleanupTestData(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to clean up test data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"deleted":         result.DeletedLinks,
		"deleted_entries": result.DeletedEntries,
	})
}

// Resolve godoc
// @Summary Resolve a slug
// @Description Look up a link by slug without recording a click
// @Tags links
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} models.Link
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/resolve/{slug} [get]
func (h *LinkHandler) Resolve(c *gin.Context) {
	link, err := h.service.ResolveSlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to resolve slug")
		return
	}

	c.JSON(http.StatusOK, link)
}

// Redirect godoc
// @Summary Redirect to the generated UTM URL
// @Description 301 to the full generated URL, click attribution runs in the background
// @Tags links
// @Produce plain
// @Param slug path string true "Slug"
// @Success 301 {object} nil
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /s/{slug} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	slug := c.Param("slug")

	link, err := h.service.ResolveSlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.String(http.StatusNotFound, "Link not found")
			return
		}
		h.logger.Error("Failed to resolve slug", zap.String("slug", slug), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Redirect(http.StatusMovedPermanently, link.GeneratedURL)

	// Атрибуция после ответа, ошибки до клиента не доходят
	event := &models.ClickEvent{
		LinkID:     link.ID,
		Slug:       slug,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Referer:    c.Request.Referer(),
		ReceivedAt: time.Now(),
	}
	if err := h.clickProcessor.RecordClick(c.Request.Context(), event); err != nil {
		h.logger.Debug("Failed to record click (non-blocking)", zap.String("slug", slug), zap.Error(err))
	}
}
