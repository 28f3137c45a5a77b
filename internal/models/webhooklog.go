package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WebhookLog is one append-only audit entry per authenticated, well-formed
// provider notification. Evento keeps the raw un-normalized event string.
type WebhookLog struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Email         string           `json:"email" db:"email"`
	Evento        string           `json:"evento" db:"evento"`
	Produto       string           `json:"produto" db:"produto"`
	PlanoAplicado string           `json:"plano_aplicado" db:"plano_aplicado"`
	Amount        *decimal.Decimal `json:"amount,omitempty" db:"amount"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}
