package handlers

import (
	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds the dashboard router.
func (h *Handler) InitRoutes() *gin.Engine {
	router := h.newRouter()

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.registerAPIRoutes(router)

	// Dashboard push over WebSocket (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

// InitDeviceRoutes builds the router of the simulated device backend.
func (h *Handler) InitDeviceRoutes() *gin.Engine {
	router := h.newRouter()
	router.GET("/status", h.deviceStatus)
	router.GET("/history", h.deviceHistory)
	return router
}

func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware, h.accessLogMiddleware)
	router.GET("/health", h.health)
	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/dashboard", h.getDashboard)
		api.GET("/status", h.getStatus)
		api.POST("/refresh", h.refresh)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/history")
	{
		history.GET("", h.getHistory)
		history.GET("/table", h.getHistoryTable)
	}
}
