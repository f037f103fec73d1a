package routes

import (
	"time"

	"estatepro/handlers"
	"estatepro/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterMeetingRoutes registers the professional's meeting endpoints.
func RegisterMeetingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	meetings := api.Group("/meetings")
	{
		meetings.GET("", hb.ListMeetingsHandler)
		meetings.GET("/:requestID/windows/:index/slots", hb.GetSlotsHandler)
		meetings.POST("/:requestID/decision", hb.DecideHandler)
	}
}

// RegisterInboxRoutes registers the direct-request inbox endpoints.
func RegisterInboxRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	inbox := api.Group("/inbox")
	{
		inbox.GET("", hb.ListInboxHandler)
		inbox.POST("/:requestID/respond", hb.RespondToRequestHandler)
	}
}

// RegisterRequestRoutes registers the requester's matching and scheduling endpoints.
func RegisterRequestRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	requests := api.Group("/requests")
	{
		requests.POST("/match", hb.MatchHandler)
		requests.GET("/sessions/:sessionID", hb.GetSessionHandler)
		requests.PUT("/sessions/:sessionID/rank", hb.RankHandler)
		requests.POST("/sessions/:sessionID/schedule", hb.ScheduleHandler)
		requests.POST("/direct", hb.DirectRequestHandler)
	}
}

// RegisterHealthRoutes registers the public health and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoutes(r, hb)

	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	RegisterMeetingRoutes(api, hb)
	RegisterInboxRoutes(api, hb)
	RegisterRequestRoutes(api, hb)
}
