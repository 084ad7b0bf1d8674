package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/middleware"
	"carsource_backend/internal/models"
	"carsource_backend/internal/services"
	"carsource_backend/pkg/apperrors"
)

// AdminHandler backs the admin dashboard.
type AdminHandler struct {
	BaseHandler
	orderService        services.OrderService
	notificationService services.NotificationService
}

func NewAdminHandler(base BaseHandler, orderService services.OrderService, notificationService services.NotificationService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:         base,
		orderService:        orderService,
		notificationService: notificationService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin",
		middleware.AuthMiddleware(),
		middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/orders", h.ListOrders)
		admin.GET("/stats", h.Stats)
	}
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	limit, offset := h.ParsePagination(c)

	resp, err := h.orderService.ListForUser(c.Request.Context(), userID, role, limit, offset)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	counts, err := h.orderService.StatusCounts(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	unread, err := h.notificationService.UnreadTotal(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders_by_status":     counts,
		"unread_notifications": unread,
	})
}
