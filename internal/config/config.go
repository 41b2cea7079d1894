package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// DatabasePath is the SQLite database file path.
	DatabasePath string
	// MasterSecret signs session tokens. Required.
	MasterSecret string
	// ClientURL is the allowed CORS origin for the browser client.
	ClientURL string
	// Debug enables verbose logging and gin debug mode.
	Debug bool
}

// Load loads server configuration from environment variables.
func Load() (*Config, error) {
	port := 5001
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./chatty.db"
	}

	masterSecret := os.Getenv("CHATTY_MASTER_SECRET")
	if masterSecret == "" {
		return nil, fmt.Errorf("CHATTY_MASTER_SECRET environment variable is required")
	}

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:5173"
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}

	return &Config{
		Addr:         fmt.Sprintf(":%d", port),
		DatabasePath: dbPath,
		MasterSecret: masterSecret,
		ClientURL:    clientURL,
		Debug:        debug,
	}, nil
}
