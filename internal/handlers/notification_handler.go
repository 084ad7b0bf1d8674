package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/middleware"
	"carsource_backend/internal/services"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         base,
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications", middleware.AuthMiddleware())
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/:id/read", h.MarkAsRead)
		notifications.POST("/read", h.MarkMultipleAsRead)
		notifications.POST("/read-all", h.MarkAllAsRead)
		notifications.DELETE("/:id", h.Delete)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkMultipleAsRead(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.MarkReadRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.notificationService.MarkMultipleAsRead(c.Request.Context(), userID, req.IDs); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
