package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("")
	protected.Use(APIKeyAuthMiddleware(h.cfg, h.logger))

	reports := protected.Group("/reports")
	{
		reports.POST("/:id/match", h.matchReport)
		reports.GET("/:id/matches", h.listMatches)
	}

	protected.POST("/matching/sweep", h.sweep)
}
