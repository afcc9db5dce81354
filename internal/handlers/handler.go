package handlers

import (
	"pondwatch/internal/logger"
	"pondwatch/internal/realtime"
	"pondwatch/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services, the live-update hub and logging.
type Handler struct {
	services *service.Service
	hub      *realtime.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *realtime.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live view stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerPondRoutes(api)
		h.registerControlRoutes(api)
		h.registerNotificationRoutes(api)
	}
}

func (h *Handler) registerPondRoutes(api *gin.RouterGroup) {
	api.GET("/status", h.getStatus)

	readings := api.Group("/readings")
	{
		readings.POST("", h.ingestReading)
		readings.GET("/hourly", h.getHourlyHistory)
	}
}

func (h *Handler) registerControlRoutes(api *gin.RouterGroup) {
	control := api.Group("/control")
	{
		control.GET("", h.getControl)
		control.PATCH("", h.patchControl)
	}
}

func (h *Handler) registerNotificationRoutes(api *gin.RouterGroup) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.listNotifications)
		notifications.GET("/summary", h.notificationSummary)
		notifications.POST("/:id/read", h.markNotificationRead)
		notifications.POST("/read-all", h.markAllNotificationsRead)
		notifications.DELETE("/:id", h.deleteNotification)
		notifications.DELETE("", h.clearNotifications)
	}
}
