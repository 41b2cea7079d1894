package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/chatty-im/chatty/internal/api"
	"github.com/chatty-im/chatty/internal/config"
	"github.com/chatty-im/chatty/internal/crypto"
	"github.com/chatty-im/chatty/internal/database"
	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/presence"
	"github.com/chatty-im/chatty/internal/realtime"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize JWT manager
	logger.Infof("Initializing JWT manager...")
	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	// Initialize the presence registry and Socket.IO server
	logger.Infof("Initializing Socket.IO server...")
	registry := presence.NewRegistry()
	defer registry.Close()

	socketIOServer := realtime.NewSocketIOServer(jwtManager, registry, cfg.ClientURL)
	defer socketIOServer.Close()

	router := api.NewRouter(db.DB, jwtManager, socketIOServer, cfg.ClientURL)

	logger.Infof("Chatty server starting on http://localhost%s", cfg.Addr)
	logger.Infof("Database: %s", cfg.DatabasePath)
	logger.Infof("Client origin: %s", cfg.ClientURL)

	if err := router.Run(cfg.Addr); err != nil {
		logger.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
