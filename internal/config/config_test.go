package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("unexpected env %q", cfg.Server.Env)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.AI.Model != "google/gemini-2.5-flash" {
		t.Errorf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.MaxTokens != 2000 {
		t.Errorf("unexpected max tokens %d", cfg.AI.MaxTokens)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.RequestsPerWindow != 30 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("AI_TIMEOUT", "10")
	t.Setenv("KIWIFY_WEBHOOK_TOKEN", "secret-token")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("PROMETHEUS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Server.Env != "staging" {
		t.Errorf("unexpected env %q", cfg.Server.Env)
	}
	if cfg.AI.TimeoutSeconds != 10 {
		t.Errorf("unexpected timeout %d", cfg.AI.TimeoutSeconds)
	}
	if cfg.Webhook.Token != "secret-token" {
		t.Errorf("unexpected webhook token %q", cfg.Webhook.Token)
	}
	if cfg.CORS.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("unexpected CORS origins %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Monitoring.PrometheusEnabled {
		t.Error("expected prometheus enabled")
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("API_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("invalid int must fall back to default, got %d", cfg.Server.Port)
	}
}

func TestValidate_ProductionRequirements(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "development needs no secrets",
			cfg:  Config{Server: ServerConfig{Env: "development"}},
		},
		{
			name:    "production without webhook token",
			cfg:     Config{Server: ServerConfig{Env: "production"}, AI: AIConfig{APIKey: "k"}},
			wantErr: true,
		},
		{
			name:    "production without ai key",
			cfg:     Config{Server: ServerConfig{Env: "production"}, Webhook: WebhookConfig{Token: "t"}},
			wantErr: true,
		},
		{
			name: "production fully configured",
			cfg: Config{
				Server:  ServerConfig{Env: "production"},
				Webhook: WebhookConfig{Token: "t"},
				AI:      AIConfig{APIKey: "k"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
