package handler

import (
	"net/http"

	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	service service.UserService
	logger  *zap.Logger
}

func NewUserHandler(service service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, users)
}
