package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all environment configuration values for the application.
// These values are loaded from a .env file at startup.
type Config struct {
	// ServerPort is the port the sync HTTP server listens on
	ServerPort string

	// RelayPort is the port the broadcast relay listens on
	RelayPort string

	// FrontendURL is the browser origin permitted by the CORS layer
	FrontendURL string

	// AppEnv is the environment name; "development" enables permissive CORS
	AppEnv string
}

// Load reads environment variables and returns a populated Config struct.
// It will load from a .env file if present, then read from environment
// variables. Falls back to sensible defaults if values are not set.
func Load() *Config {
	// Attempt to load .env file - not an error if it doesn't exist
	// as we may be running in production with real environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		ServerPort:  getEnv("PORT", "8080"),
		RelayPort:   getEnv("RELAY_PORT", "5174"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		AppEnv:      getEnv("APP_ENV", "production"),
	}

	if config.FrontendURL == "" && !config.IsDevelopment() {
		log.Println("WARNING: FRONTEND_URL is not set; browser clients will be rejected by CORS")
	}

	return config
}

// IsDevelopment reports whether permissive CORS should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AllowedOrigins returns the CORS origin list derived from the environment.
func (c *Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return []string{"*"}
	}
	if c.FrontendURL != "" {
		return []string{c.FrontendURL}
	}
	return []string{}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
