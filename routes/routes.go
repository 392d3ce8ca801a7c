package routes

import (
	"os"
	"strings"
	"time"

	"amora/handlers"
	"amora/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		return strings.Split(env, ",")
	}
	return []string{"http://localhost:3000", "http://127.0.0.1:3000"}
}

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// One limiter instance per route group.
	authLimiter := middleware.NewRateLimiter(30, 15*time.Minute)
	profileLimiter := middleware.NewRateLimiter(10, time.Minute)
	uploadLimiter := middleware.NewRateLimiter(50, time.Hour)
	apiLimiter := middleware.NewRateLimiter(100, time.Minute).SkipGET()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Uploaded media is served straight off local disk.
	router.Static("/uploads", handlers.UploadDir())

	auth := router.Group("/api/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)

		authed := auth.Group("")
		authed.Use(middleware.JWTAuthMiddleware())
		{
			authed.GET("/profile", handlers.GetOwnProfile)
			authed.PATCH("/profile", handlers.PatchOwnProfile)
			authed.POST("/logout", handlers.Logout)
		}
	}

	users := router.Group("/api/users")
	users.Use(middleware.JWTAuthMiddleware(), apiLimiter.Middleware())
	{
		users.GET("/discover", handlers.Discover)
		users.PUT("/profile", profileLimiter.Middleware(), handlers.UpdateProfile)
		users.GET("/profile/:userId", handlers.GetUser)
		users.GET("/:userId", handlers.GetUser)
		users.POST("/photos", handlers.AddPhoto)
		users.DELETE("/photos/:photoId", handlers.DeletePhoto)
		users.POST("/video-profile", handlers.SetVideoProfile)
		users.DELETE("/video-profile", handlers.DeleteVideoProfile)
		users.POST("/location", handlers.UpdateLocation)
	}

	content := router.Group("/api/content")
	content.Use(middleware.JWTAuthMiddleware(), apiLimiter.Middleware())
	{
		content.GET("/feed", handlers.Feed)
		content.POST("", handlers.CreateContent)
		content.POST("/:contentId/like", handlers.ToggleLike)
		content.POST("/:contentId/comments", handlers.AddComment)
		content.GET("/user/:userId", handlers.GetUserContent)
		content.DELETE("/:contentId", handlers.DeleteContent)
	}

	chat := router.Group("/api/chat")
	chat.Use(middleware.JWTAuthMiddleware(), apiLimiter.Middleware())
	{
		chat.GET("", handlers.ListChats)
		chat.POST("/user/:userId", handlers.GetOrCreateChat)
		chat.POST("/:chatId/messages", handlers.SendMessage)
		chat.GET("/:chatId/messages", handlers.GetMessages)
		chat.POST("/:chatId/read", handlers.MarkAsRead)
	}

	media := router.Group("/api/media")
	media.Use(middleware.JWTAuthMiddleware(), uploadLimiter.Middleware())
	{
		media.POST("/upload/photo", handlers.UploadPhoto)
		media.POST("/upload/video", handlers.UploadVideo)
		media.DELETE("/delete/:filename", handlers.DeleteMedia)
	}

	router.GET("/api/push/vapid-public-key", handlers.GetVapidPublicKey)
	push := router.Group("/api/push")
	push.Use(middleware.JWTAuthMiddleware())
	{
		push.POST("/subscribe", handlers.SubscribePush)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
