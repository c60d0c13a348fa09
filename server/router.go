package server

import (
	"time"

	httpHandler "linkedin-publisher/interfaces/http"
	"linkedin-publisher/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultAllowOrigins covers local tooling that talks to the bridge.
var DefaultAllowOrigins = []string{"http://localhost:4200", "http://localhost:3000", "http://127.0.0.1:3000"}

func InitiateRouter(
	healthHandler httpHandler.IHealthHandler,
	linkedInHandler httpHandler.ILinkedInHandler,
	secretKey string,
	allowOrigins []string,
) *gin.Engine {
	if len(allowOrigins) == 0 {
		allowOrigins = DefaultAllowOrigins
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey))
	{
		api.GET("/status", linkedInHandler.Status)
		api.POST("/posts", linkedInHandler.CreatePost)
		api.GET("/posts/:urn", linkedInHandler.GetPost)
		api.GET("/posts/:urn/comments", linkedInHandler.ListComments)
		api.POST("/posts/:urn/comments", linkedInHandler.CreateComment)
		api.POST("/comments/reply", linkedInHandler.ReplyComment)
		api.GET("/history", linkedInHandler.History)
	}

	return router
}
