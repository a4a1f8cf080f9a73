package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var exportHeader = []string{
	"id", "slug", "short_url", "destination_url", "generated_url",
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"click_count", "user_name", "user_email", "created_at",
}

type ExportHandler struct {
	service service.LinkService
	logger  *zap.Logger
}

func NewExportHandler(service service.LinkService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{service: service, logger: logger}
}

// LinksCSV godoc
// @Summary Export links as CSV
// @Description Own links, or every link for an admin, with owner name and email
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string
// @Router /api/v1/export/links.csv [get]
func (h *ExportHandler) LinksCSV(c *gin.Context) {
	rows, err := h.service.ExportLinks(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to export links")
		return
	}

	records := lo.Map(rows, func(r *models.LinkWithOwner, _ int) []string {
		return []string{
			strconv.FormatInt(r.ID, 10),
			r.Slug,
			r.ShortURL,
			r.DestinationURL,
			r.GeneratedURL,
			r.UTMSource,
			r.UTMMedium,
			r.UTMCampaign,
			r.UTMTerm,
			r.UTMContent,
			strconv.FormatInt(r.ClickCount, 10),
			r.UserName,
			r.UserEmail,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
	})

	filename := fmt.Sprintf("utm-links-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	// WriteAll сбрасывает буфер и возвращает первую ошибку записи
	if err := w.WriteAll(append([][]string{exportHeader}, records...)); err != nil {
		h.logger.Error("Failed to write CSV", zap.Error(err))
	}
}
