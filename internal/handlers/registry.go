package handlers

import "github.com/gin-gonic/gin"

// AppHandlers groups every HTTP handler for route registration.
type AppHandlers struct {
	Auth          *AuthHandler
	Orders        *OrderHandler
	Chat          *ChatHandler
	Notifications *NotificationHandler
	Presence      *PresenceHandler
	Admin         *AdminHandler
	Files         *FileHandler
}

func (h *AppHandlers) RegisterAll(r *gin.RouterGroup) {
	h.Auth.RegisterRoutes(r)
	h.Orders.RegisterRoutes(r)
	h.Chat.RegisterRoutes(r)
	h.Notifications.RegisterRoutes(r)
	h.Presence.RegisterRoutes(r)
	h.Admin.RegisterRoutes(r)
	if h.Files != nil {
		h.Files.RegisterRoutes(r)
	}
}
