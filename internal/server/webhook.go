package server

import (
	"errors"
	"net/http"

	"github.com/Isaias789672/chef-ai-recipes/internal/logging"
	"github.com/Isaias789672/chef-ai-recipes/internal/monitoring"
	"github.com/Isaias789672/chef-ai-recipes/internal/webhook"
	"github.com/gin-gonic/gin"
)

// handleKiwifyWebhook receives payment-provider notifications. The
// response bodies and status codes on this route are fixed by the
// provider integration and are deliberately not the APIError envelope
// the rest of the API uses.
func (s *APIServer) handleKiwifyWebhook(c *gin.Context) {
	m := monitoring.Get()

	var payload webhook.Notification
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Provider payloads vary too much for a strict 400 to be safe;
		// a body that does not parse lands in the generic failure path.
		m.WebhookEventsTotal.WithLabelValues("parse_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	result, err := s.webhookService.Process(c.Request.Context(), &payload)
	if err != nil {
		var missingErr *webhook.MissingFieldsError
		var upsertErr *webhook.UpsertError

		switch {
		case errors.Is(err, webhook.ErrInvalidToken):
			m.WebhookEventsTotal.WithLabelValues("forbidden").Inc()
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden - Invalid token"})
		case errors.As(err, &missingErr):
			m.WebhookEventsTotal.WithLabelValues("bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Bad request - Missing email or evento",
				"received": gin.H{
					"email":   missingErr.Email,
					"evento":  missingErr.Evento,
					"produto": missingErr.Produto,
				},
			})
		case errors.As(err, &upsertErr):
			m.WebhookEventsTotal.WithLabelValues("persistence_error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to update user",
				"details": upsertErr.Err.Error(),
			})
		default:
			m.WebhookEventsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"details": err.Error(),
			})
		}
		return
	}

	m.WebhookEventsTotal.WithLabelValues("ok").Inc()
	m.WebhookOutcomesTotal.WithLabelValues(string(result.Status), string(result.Plan)).Inc()

	logging.LogWebhookEvent(
		c.GetString("request_id"),
		result.Email,
		payload.EventName(),
		payload.ProductName(),
		result.PlanoAplicado,
		!webhook.IsPendingPayment(payload.EventName()),
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Webhook processed successfully",
		"data":    result,
	})
}
