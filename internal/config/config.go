// Package config loads service configuration from the environment. A local
// .env file is honored outside of Railway deployments.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting for the service.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// AnthropicKey is the fallback Anthropic API key used when a request
	// payload does not carry its own.
	AnthropicKey string

	// Zoho Creator OAuth client settings.
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ZohoOwnerName    string
	ZohoAppName      string
	ZohoBaseURL      string
	ZohoAccountsURL  string
	ZohoRedirectURL  string
}

// LoadConfig reads configuration from the environment. Outside of Railway a
// .env file in the working directory is loaded first; missing files are fine.
func LoadConfig() *Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		_ = godotenv.Load()
	}

	return &Config{
		Port:         getenv("PORT", "5000"),
		AnthropicKey: os.Getenv("ANTHROPIC_KEY"),

		ZohoClientID:     os.Getenv("ZOHO_CLIENT_ID"),
		ZohoClientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
		ZohoRefreshToken: os.Getenv("ZOHO_REFRESH_TOKEN"),
		ZohoOwnerName:    getenv("ZOHO_APP_OWNER", "precisionfleetgear"),
		ZohoAppName:      getenv("ZOHO_APP_NAME", "precision-ops"),
		ZohoBaseURL:      getenv("ZOHO_BASE_URL", "https://creator.zoho.com"),
		ZohoAccountsURL:  getenv("ZOHO_ACCOUNTS_URL", "https://accounts.zoho.com"),
		ZohoRedirectURL:  os.Getenv("ZOHO_REDIRECT_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
