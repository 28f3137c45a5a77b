package logging

import (
	"io"
	"os"
	"time"

	"github.com/Isaias789672/chef-ai-recipes/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger based on configuration
func Setup(cfg *config.LoggingConfig, env string) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer
	if cfg.Format == "json" || env == "production" {
		output = os.Stdout
	} else {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", "chef-ai-recipes").
		Logger()
}

// NewLogger creates a new logger with additional context
func NewLogger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// RequestLogger is a Gin middleware for structured request logging
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		requestID := c.GetString("request_id")

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		} else if c.Writer.Status() >= 400 {
			event = log.Warn()
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", raw).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size()).
			Msg("HTTP request")
	}
}

// LogWebhookEvent logs a processed payment-provider notification
func LogWebhookEvent(requestID, email, evento, produto, label string, persisted bool) {
	log.Info().
		Str("request_id", requestID).
		Str("email", email).
		Str("evento", evento).
		Str("produto", produto).
		Str("plano_aplicado", label).
		Bool("user_persisted", persisted).
		Msg("Webhook event")
}

// LogAICall logs a call to the AI completion gateway
func LogAICall(requestID, operation, model string, latency time.Duration, status string) {
	event := log.Info()
	if status == "error" {
		event = log.Error()
	}

	event.
		Str("request_id", requestID).
		Str("operation", operation).
		Str("model", model).
		Dur("latency", latency).
		Str("status", status).
		Msg("AI gateway call")
}

// SanitizeForLog truncates long payloads (base64 images and the like) for logging
func SanitizeForLog(data string, maxLen int) string {
	if len(data) > maxLen {
		return data[:maxLen] + "...[truncated]"
	}
	return data
}
