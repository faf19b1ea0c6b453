package routes

import (
	"net/http"
	"time"

	"wandr/handlers"
	"wandr/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFeedRoutes registers the recommendation feed endpoints.
func RegisterFeedRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/feed")
	{
		api.POST("", hb.GetFeedHandler)
		api.POST("/more", hb.LoadMoreHandler)
		api.POST("/refresh", hb.RefreshHandler)
		api.POST("/block", hb.BlockVenueHandler)
		api.DELETE("/block/:providerID", hb.UnblockVenueHandler)
	}
}

// RegisterScheduleRoutes registers calendar conflict endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/schedule")
	{
		api.POST("/check", hb.CheckConflictHandler)
		api.POST("/events", hb.CreateEventHandler)
		api.DELETE("/events/:eventID", hb.DeleteEventHandler)
	}
}

// RegisterFeedbackRoutes registers the feedback submission endpoint.
func RegisterFeedbackRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/feedback")
	{
		api.POST("", hb.SubmitFeedbackHandler)
	}
}

// RegisterProfileRoutes registers the stored-profile endpoints.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/profiles")
	{
		api.PUT("", hb.UpsertProfileHandler)
		api.GET("/:id", hb.GetProfileHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Hi, I'm Wandr",
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterFeedRoutes(r, hb)
	RegisterScheduleRoutes(r, hb)
	RegisterFeedbackRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterHealthRoute(r)
}
