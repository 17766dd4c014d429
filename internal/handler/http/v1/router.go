package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check доступен без ключа
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("")
	protected.Use(APIKeyAuthMiddleware(h.cfg, h.logger))

	protected.GET("/session", h.getSession)
	protected.GET("/verification", h.getVerification)
	protected.GET("/stream", h.stream)

	// Координаты устройства и маршрут
	protected.GET("/location", h.getLocation)
	protected.POST("/location/fix", h.pushFix)
	protected.GET("/route", h.getRoute)

	incidents := protected.Group("/incidents")
	{
		incidents.POST("", h.reportIncident)
		incidents.GET("/current", h.currentIncident)
		incidents.PUT("/current/status", h.changeStatus)
		incidents.POST("/:id/track", h.trackIncident)
	}
	protected.GET("/inbox", h.getInbox)

	chatRoutes := protected.Group("/chat")
	{
		chatRoutes.GET("/messages", h.chatHistory)
		chatRoutes.POST("/messages", h.sendMessage)
	}
}
