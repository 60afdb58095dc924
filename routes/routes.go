package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nbowman189/vitruvian/controllers"
	"github.com/nbowman189/vitruvian/middlewares"
	"github.com/nbowman189/vitruvian/pkg/logger"
)

func SetupRouter(log *logger.Logger, coach *controllers.CoachController, alerts *controllers.AlertController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	// Public blog reads
	r.GET("/blog", controllers.ListPosts)
	r.GET("/blog/:slug", controllers.GetPost)

	// Everything below requires a session
	private := r.Group("/")
	private.Use(middlewares.AuthMiddleware())
	{
		private.POST("/blog", controllers.CreatePost)
		private.PUT("/blog/:slug", controllers.UpdatePost)
		private.DELETE("/blog/:slug", controllers.DeletePost)

		metrics := private.Group("/metrics")
		{
			metrics.POST("/checkins", controllers.UpsertCheckIn)
			metrics.GET("/checkins", controllers.ListCheckIns)
			metrics.GET("/trend", controllers.GetTrend)
		}

		behaviors := private.Group("/behaviors")
		{
			behaviors.POST("", controllers.CreateBehavior)
			behaviors.GET("", controllers.ListBehaviors)
			behaviors.PUT("/:id/active", controllers.ArchiveBehavior)
			behaviors.POST("/:id/logs", controllers.LogBehavior)
			behaviors.GET("/day", controllers.GetBehaviorDay)
			behaviors.GET("/stats", controllers.GetBehaviorStats)
		}

		coachGroup := private.Group("/coach")
		{
			coachGroup.POST("/message", coach.SendMessage)
			coachGroup.GET("/history", coach.GetHistory)
			coachGroup.POST("/reset", coach.Reset)
		}

		private.GET("/alerts", alerts.ListAlerts)
		private.GET("/ws", alerts.Websocket)
	}

	return r
}
