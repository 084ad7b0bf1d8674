package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/middleware"
	"carsource_backend/internal/services"
	"carsource_backend/pkg/apperrors"
)

type PresenceHandler struct {
	BaseHandler
	presenceService services.PresenceService
}

func NewPresenceHandler(base BaseHandler, presenceService services.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		BaseHandler:     base,
		presenceService: presenceService,
	}
}

func (h *PresenceHandler) RegisterRoutes(r *gin.RouterGroup) {
	presence := r.Group("/presence", middleware.AuthMiddleware())
	{
		presence.POST("/heartbeat", h.Heartbeat)
		presence.GET("/:user_id", h.Status)
	}
}

// Heartbeat records that the caller is online. Clients post it
// periodically while a tab is open.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.presenceService.Heartbeat(c.Request.Context(), userID); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PresenceHandler) Status(c *gin.Context) {
	if _, _, ok := h.CurrentUser(c); !ok {
		return
	}

	targetID := c.Param("user_id")
	online, err := h.presenceService.IsOnline(c.Request.Context(), targetID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	lastSeen, err := h.presenceService.LastSeen(c.Request.Context(), targetID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   targetID,
		"online":    online,
		"last_seen": lastSeen,
	})
}
