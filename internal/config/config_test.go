package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RAILWAY_ENVIRONMENT", "test") // skip .env loading
	t.Setenv("PORT", "")
	t.Setenv("ZOHO_BASE_URL", "")

	cfg := LoadConfig()
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want default 5000", cfg.Port)
	}
	if cfg.ZohoBaseURL != "https://creator.zoho.com" {
		t.Errorf("ZohoBaseURL = %q", cfg.ZohoBaseURL)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RAILWAY_ENVIRONMENT", "test")
	t.Setenv("PORT", "8080")
	t.Setenv("ANTHROPIC_KEY", "sk-test")
	t.Setenv("ZOHO_CLIENT_ID", "cid")

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.AnthropicKey != "sk-test" {
		t.Errorf("AnthropicKey = %q", cfg.AnthropicKey)
	}
	if cfg.ZohoClientID != "cid" {
		t.Errorf("ZohoClientID = %q", cfg.ZohoClientID)
	}
}
