package api

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chatty-im/chatty/internal/api/handlers"
	"github.com/chatty-im/chatty/internal/api/middleware"
	"github.com/chatty-im/chatty/internal/crypto"
	"github.com/chatty-im/chatty/internal/realtime"
)

// NewRouter builds the gin engine with the REST routes and, when provided,
// the Socket.IO endpoint. The realtime server may be nil in REST-only tests.
func NewRouter(db *sql.DB, jwtManager *crypto.JWTManager, rt *realtime.SocketIOServer, clientURL string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.Use(middleware.LoggingMiddleware())

	authHandler := handlers.NewAuthHandler(db, jwtManager)
	messageHandler := handlers.NewMessageHandler(db)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.GET("/check", authHandler.Check)
			protected.PUT("/update-profile", authHandler.UpdateProfile)
		}
	}

	messages := router.Group("/messages")
	messages.Use(middleware.AuthMiddleware(jwtManager))
	{
		messages.GET("/users", messageHandler.ListContacts)
		messages.GET("/:userId", messageHandler.GetMessages)
		messages.POST("/send/:userId", messageHandler.SendMessage)
	}

	// Socket.IO handshake is unauthenticated at the HTTP layer; admission is
	// checked after the connection is established.
	if rt != nil {
		router.Any("/socket.io", rt.HandleSocketIO())
		router.Any("/socket.io/*any", rt.HandleSocketIO())
	}

	return router
}
