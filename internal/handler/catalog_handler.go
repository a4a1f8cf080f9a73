package handler

import (
	"net/http"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(service service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

// List godoc
// @Summary List catalog entries
// @Description System entries plus the caller's own
// @Tags catalogs
// @Produce json
// @Security BearerAuth
// @Param kind path string true "socials, content_types, objectives, audiences or channels"
// @Success 200 {array} models.CatalogEntry
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/catalogs/{kind} [get]
func (h *CatalogHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), principal(c), models.CatalogKind(c.Param("kind")))
	if err != nil {
		respondError(c, h.logger, err, "Failed to list catalog")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Create godoc
// @Summary Get or create a catalog entry
// @Tags catalogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Catalog kind"
// @Param request body models.CreateCatalogEntryInput true "Entry"
// @Success 200 {object} models.CatalogEntry
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/catalogs/{kind} [post]
func (h *CatalogHandler) Create(c *gin.Context) {
	var input models.CreateCatalogEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, h.logger, err)
		return
	}

	entry, err := h.service.Create(c.Request.Context(), principal(c), models.CatalogKind(c.Param("kind")), &input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create catalog entry")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Seed godoc
// @Summary Create missing system catalog entries
// @Tags catalogs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /api/v1/catalogs/seed [post]
func (h *CatalogHandler) Seed(c *gin.Context) {
	created, err := h.service.SeedDefaults(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to seed catalogs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}
