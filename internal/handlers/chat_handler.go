package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/middleware"
	"carsource_backend/internal/services"
	"carsource_backend/internal/services/dto"
	"carsource_backend/pkg/apperrors"
)

type ChatHandler struct {
	BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/orders/:id/messages", middleware.AuthMiddleware())
	{
		chat.GET("", h.History)
		chat.POST("", h.SendText)
		chat.POST("/image", h.SendImage)
	}
}

// History returns the order chat, oldest first. An optional "since"
// query parameter (RFC 3339) returns only messages created after it.
func (h *ChatHandler) History(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("since must be an RFC 3339 timestamp"))
			return
		}
		since = parsed
	}

	resp, err := h.chatService.History(c.Request.Context(), c.Param("id"), userID, since)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) SendText(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.chatService.SendText(c.Request.Context(), c.Param("id"), userID, req.Body)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ChatHandler) SendImage(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("An image file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	resp, err := h.chatService.SendImage(c.Request.Context(), c.Param("id"), userID,
		c.PostForm("body"), file, fileHeader.Size)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
