package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Isaias789672/chef-ai-recipes/internal/logging"
	"github.com/Isaias789672/chef-ai-recipes/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service errors
var (
	// ErrInvalidToken is returned when the shared secret is missing or wrong
	ErrInvalidToken = errors.New("invalid or missing token")
)

// MissingFieldsError is returned when email or event is empty after
// extraction. It carries whatever was extracted so the handler can echo
// it back to the provider.
type MissingFieldsError struct {
	Email   string
	Evento  string
	Produto string
}

func (e *MissingFieldsError) Error() string {
	return "missing email or evento after extraction"
}

// UpsertError is returned when the user record upsert fails. The log
// entry is intentionally not written on this path.
type UpsertError struct {
	Err error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("failed to update user: %v", e.Err)
}

func (e *UpsertError) Unwrap() error {
	return e.Err
}

// UserStore persists user account records keyed by email
type UserStore interface {
	UpsertByEmail(ctx context.Context, user *models.User) error
}

// EventLogStore appends audit entries for processed notifications
type EventLogStore interface {
	Append(ctx context.Context, entry *models.WebhookLog) error
}

// Result is the acknowledgment data echoed to the provider
type Result struct {
	Email         string        `json:"email"`
	Plan          models.Plan   `json:"plan"`
	Status        models.Status `json:"status"`
	PlanoAplicado string        `json:"plano_aplicado"`
}

// Service processes payment-provider notifications: it authenticates
// them, classifies the event, reconciles the user record and appends an
// audit log entry.
type Service struct {
	users  UserStore
	logs   EventLogStore
	token  string
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new webhook processing service
func NewService(users UserStore, logs EventLogStore, token string) *Service {
	return &Service{
		users:  users,
		logs:   logs,
		token:  token,
		logger: logging.NewLogger("webhook"),
		now:    time.Now,
	}
}

// Process handles one authenticated notification end to end.
//
// Ordering is part of the contract: authentication and field validation
// happen before any store access; the user upsert happens before the log
// append, and an upsert failure aborts without writing the log. A log
// append failure never fails the request. Re-delivery of the same
// notification re-applies the same upsert (a no-op on the row) and
// appends a duplicate log entry.
func (s *Service) Process(ctx context.Context, n *Notification) (*Result, error) {
	if received := n.ReceivedToken(); received == "" || received != s.token {
		s.logger.Warn().Msg("Webhook rejected: invalid or missing token")
		return nil, ErrInvalidToken
	}

	email := n.CustomerEmail()
	evento := n.EventName()
	produto := n.ProductName()

	if email == "" || evento == "" {
		s.logger.Warn().
			Str("email", email).
			Str("evento", evento).
			Msg("Webhook rejected: missing email or evento after extraction")
		return nil, &MissingFieldsError{Email: email, Evento: evento, Produto: produto}
	}

	cls := Classify(evento, produto)
	if cls.Outcome == OutcomeUnknown {
		s.logger.Warn().
			Str("email", email).
			Str("evento", evento).
			Msg("Unrecognized webhook event, applying default classification")
	}

	pendingPayment := IsPendingPayment(evento)

	s.logger.Info().
		Str("email", email).
		Str("evento", evento).
		Str("outcome", string(cls.Outcome)).
		Str("plan", string(cls.Plan)).
		Str("status", string(cls.Status)).
		Bool("pending_payment", pendingPayment).
		Msg("Processing webhook event")

	if !pendingPayment {
		user := &models.User{
			Email:     email,
			Plan:      cls.Plan,
			Status:    cls.Status,
			UpdatedAt: s.now().UTC(),
		}
		if err := s.users.UpsertByEmail(ctx, user); err != nil {
			s.logger.Error().Err(err).Str("email", email).Msg("Failed to upsert user")
			return nil, &UpsertError{Err: err}
		}
	}

	entry := &models.WebhookLog{
		ID:            uuid.New(),
		Email:         email,
		Evento:        n.RawEventName(),
		Produto:       produto,
		PlanoAplicado: cls.Label,
		Amount:        n.ChargeAmount(),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		// The audit trail is best-effort: never fail a processed event
		// because the log insert failed.
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to append webhook log entry")
	}

	return &Result{
		Email:         email,
		Plan:          cls.Plan,
		Status:        cls.Status,
		PlanoAplicado: cls.Label,
	}, nil
}
