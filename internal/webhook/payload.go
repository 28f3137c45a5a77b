package webhook

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Notification is the incoming payment-provider payload. The provider
// delivers two shapes over the same endpoint: a simple flat one
// (email/evento/produto/token) and its native one with nested Customer,
// Product and Subscription blocks plus root-level signature and
// webhook_event_type/order_status. All fields are individually optional;
// extraction walks fallback chains per logical field.
type Notification struct {
	// Simple shape
	Email   string `json:"email,omitempty"`
	Evento  string `json:"evento,omitempty"`
	Produto string `json:"produto,omitempty"`
	Token   string `json:"token,omitempty"`

	// Provider-native shape
	OrderID          string                   `json:"order_id,omitempty"`
	OrderRef         string                   `json:"order_ref,omitempty"`
	OrderStatus      string                   `json:"order_status,omitempty"`
	WebhookEventType string                   `json:"webhook_event_type,omitempty"`
	Product          NotificationProduct      `json:"Product,omitempty"`
	Customer         NotificationCustomer     `json:"Customer,omitempty"`
	Subscription     NotificationSubscription `json:"Subscription,omitempty"`
	Commissions      NotificationCommissions  `json:"Commissions,omitempty"`

	// The provider sends the shared secret at root level as signature
	Signature string `json:"signature,omitempty"`
}

type NotificationProduct struct {
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

type NotificationCustomer struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
}

type NotificationSubscription struct {
	ID     string                       `json:"id,omitempty"`
	Status string                       `json:"status,omitempty"`
	Plan   NotificationSubscriptionPlan `json:"plan,omitempty"`
}

type NotificationSubscriptionPlan struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type NotificationCommissions struct {
	// ChargeAmount is the order amount in cents
	ChargeAmount int64 `json:"charge_amount,omitempty"`
}

// firstNonEmpty returns the first non-empty value in priority order
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// CustomerEmail extracts the customer email, lowercased and trimmed
func (n *Notification) CustomerEmail() string {
	return strings.ToLower(strings.TrimSpace(firstNonEmpty(
		n.Email,
		n.Customer.Email,
	)))
}

// EventName extracts the event name, lowercased, for classification
func (n *Notification) EventName() string {
	return strings.ToLower(firstNonEmpty(
		n.Evento,
		n.WebhookEventType,
		n.OrderStatus,
	))
}

// RawEventName extracts the original un-normalized event string for the
// audit log
func (n *Notification) RawEventName() string {
	if raw := firstNonEmpty(n.Evento, n.WebhookEventType, n.OrderStatus); raw != "" {
		return raw
	}
	return "unknown"
}

// ProductName extracts the product/plan label, possibly empty
func (n *Notification) ProductName() string {
	return firstNonEmpty(
		n.Produto,
		n.Product.ProductName,
		n.Subscription.Plan.Name,
	)
}

// ReceivedToken extracts the shared secret from either payload shape
func (n *Notification) ReceivedToken() string {
	return firstNonEmpty(n.Token, n.Signature)
}

// ChargeAmount converts the provider's cents amount to a decimal, or nil
// when the payload carries none
func (n *Notification) ChargeAmount() *decimal.Decimal {
	if n.Commissions.ChargeAmount <= 0 {
		return nil
	}
	amount := decimal.New(n.Commissions.ChargeAmount, -2)
	return &amount
}
