package models

import (
	"time"
)

// Plan represents a subscription plan
type Plan string

const (
	PlanFree   Plan = "free"
	PlanNormal Plan = "normal"
	PlanMaster Plan = "master"
)

// Status represents the subscription status of a user
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusOverdue   Status = "overdue"
)

// User represents a user account keyed by email.
// Rows are created on the first paid/approved event for an email and are
// never deleted: cancellation sets status=cancelled, plan=free instead.
type User struct {
	Email     string    `json:"email" db:"email"`
	Plan      Plan      `json:"plan" db:"plan"`
	Status    Status    `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
