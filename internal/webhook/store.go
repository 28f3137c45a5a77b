package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/Isaias789672/chef-ai-recipes/internal/models"
	"github.com/Isaias789672/chef-ai-recipes/internal/monitoring"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserStore implements UserStore on a pgx pool
type PostgresUserStore struct {
	db *pgxpool.Pool
}

// NewPostgresUserStore creates a new postgres-backed user store
func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// UpsertByEmail inserts the user row or overwrites plan/status/updated_at
// for an existing email. Concurrent deliveries for the same email are
// last-write-wins at the row level.
func (s *PostgresUserStore) UpsertByEmail(ctx context.Context, user *models.User) error {
	start := time.Now()
	defer func() {
		monitoring.Get().WebhookUpsertDuration.Observe(time.Since(start).Seconds())
	}()

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (email, plan, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET plan = EXCLUDED.plan,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
	`, user.Email, user.Plan, user.Status, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.Email, err)
	}
	return nil
}

// PostgresEventLogStore implements EventLogStore on a pgx pool
type PostgresEventLogStore struct {
	db *pgxpool.Pool
}

// NewPostgresEventLogStore creates a new postgres-backed event log store
func NewPostgresEventLogStore(db *pgxpool.Pool) *PostgresEventLogStore {
	return &PostgresEventLogStore{db: db}
}

// Append inserts one audit entry. The table is append-only; duplicates
// from provider re-delivery are expected and kept.
func (s *PostgresEventLogStore) Append(ctx context.Context, entry *models.WebhookLog) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO webhook_logs (id, email, evento, produto, plano_aplicado, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.Email, entry.Evento, entry.Produto, entry.PlanoAplicado, entry.Amount, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append webhook log for %s: %w", entry.Email, err)
	}
	return nil
}
