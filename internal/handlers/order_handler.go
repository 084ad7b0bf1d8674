package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/middleware"
	"carsource_backend/internal/models"
	"carsource_backend/internal/services"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

type OrderHandler struct {
	BaseHandler
	orderService services.OrderService
}

func NewOrderHandler(base BaseHandler, orderService services.OrderService) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  base,
		orderService: orderService,
	}
}

func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders", middleware.AuthMiddleware())
	{
		orders.POST("", middleware.RequireRoles(models.UserRoleCustomer), h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PATCH("/:id/status", h.UpdateStatus)
		orders.POST("/:id/advisor",
			middleware.RequireRoles(models.UserRoleAdmin), h.AssignAdvisor)
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) List(c *gin.Context) {
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

func (h *OrderHandler) Get(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"),
		userID, role, models.OrderStatus(req.Status))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) AssignAdvisor(c *gin.Context) {
	var req dto.AssignAdvisorRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.orderService.AssignAdvisor(c.Request.Context(), c.Param("id"), req.AdvisorID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
