package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amora/database"
	"amora/hub"
	"amora/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting Amora backend server...")

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	if os.Getenv("JWT_SECRET") == "" || os.Getenv("MONGODB_URI") == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}

	// ===== GIN MODE =====
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := routes.SetupRouter()

	// ===== REAL-TIME HUB =====
	relay := hub.NewHub()
	go relay.Run()

	router.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(relay)(c.Writer, c.Request)
	})

	log.Println("WebSocket endpoint: /ws")

	// ===== SERVER =====
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	if err := database.DisconnectMongo(); err != nil {
		log.Println("MongoDB disconnect error: ", err)
	}

	log.Println("Server stopped gracefully")
}
