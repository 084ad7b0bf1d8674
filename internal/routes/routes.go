package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carsource_backend/internal/handlers"
	"carsource_backend/internal/middleware"
	"carsource_backend/ws"
)

// RegisterRoutes mounts the API, the websocket endpoint and the
// operational endpoints on the engine.
func RegisterRoutes(engine *gin.Engine, appHandlers *handlers.AppHandlers, hub *ws.Hub) {
	engine.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(),
		gin.Recovery(),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.GET("/ws", ws.ServeWS(hub))

	api := engine.Group("/api/v1")
	appHandlers.RegisterAll(api)
}
