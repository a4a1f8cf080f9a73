package handler

import (
	"github.com/SergeiKhy/utm-tracker/internal/middleware"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services сервисный слой, который обслуживает роутер
type Services struct {
	Links     service.LinkService
	Clicks    service.ClickService
	Stats     service.StatsService
	Catalogs  service.CatalogService
	Users     service.UserService
	Processor service.ClickProcessor
}

// RouterDeps аутентификация и инфраструктура HTTP слоя
type RouterDeps struct {
	Tokens      middleware.TokenParser
	APIKeys     map[string]string
	RateLimiter *middleware.RateLimiter
	DB          Pinger
	Cache       Pinger
}

func NewRouter(svc Services, deps RouterDeps, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	linkHandler := NewLinkHandler(svc.Links, svc.Processor, logger)
	clickHandler := NewClickHandler(svc.Clicks, logger)
	statsHandler := NewStatsHandler(svc.Stats, logger)
	catalogHandler := NewCatalogHandler(svc.Catalogs, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	exportHandler := NewExportHandler(svc.Links, logger)
	healthHandler := NewHealthHandler(deps.DB, deps.Cache, svc.Processor)

	// Редирект - без аутентификации, лимит по IP
	router.GET("/s/:slug", deps.RateLimiter.Middleware(), linkHandler.Redirect)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.GET("/resolve/:slug", deps.RateLimiter.Middleware(), linkHandler.Resolve)

		// Приём кликов от внешних сборщиков, по API ключу
		v1.POST("/clicks", deps.RateLimiter.Middleware(), middleware.RequireAPIKey(deps.APIKeys), clickHandler.RecordClick)

		// Дашборд - JWT, лимит по пользователю
		api := v1.Group("", middleware.RequireJWT(deps.Tokens), deps.RateLimiter.MiddlewareWithKey(middleware.PrincipalKey))
		{
			api.GET("/me", userHandler.Me)

			api.GET("/links", linkHandler.ListLinks)
			api.POST("/links", linkHandler.CreateLink)
			api.GET("/links/:id", linkHandler.GetLink)
			api.DELETE("/links/:id", linkHandler.DeleteLink)
			api.GET("/links/:id/stats", statsHandler.LinkStats)
			api.GET("/links/:id/clicks", clickHandler.ListClicks)

			api.GET("/stats", statsHandler.GlobalStats)
			api.GET("/export/links.csv", exportHandler.LinksCSV)

			api.GET("/catalogs/:kind", catalogHandler.List)
			api.POST("/catalogs/:kind", catalogHandler.Create)
			api.POST("/catalogs/seed", middleware.RequireAdmin(), catalogHandler.Seed)

			api.GET("/users", middleware.RequireAdmin(), userHandler.List)
			api.POST("/admin/cleanup-test-data", middleware.RequireAdmin(), linkHandler.CleanupTestData)
		}
	}

	return router
}
