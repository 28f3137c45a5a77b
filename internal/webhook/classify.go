package webhook

import (
	"strings"

	"github.com/Isaias789672/chef-ai-recipes/internal/models"
)

// Outcome identifies which classification branch matched
type Outcome string

const (
	OutcomeCancelled Outcome = "cancelled"
	OutcomeOverdue   Outcome = "overdue"
	OutcomeActivated Outcome = "activated"
	OutcomePending   Outcome = "pending"
	OutcomeUnknown   Outcome = "unknown"
)

// Classification is the resolved plan/status for an event. Label is the
// human-readable resolution recorded on the audit log entry.
type Classification struct {
	Outcome Outcome
	Plan    models.Plan
	Status  models.Status
	Label   string
}

// IsPendingPayment reports whether the user record must be left untouched
// for this event. Checked independently of the classification branch: an
// event string containing a pending keyword skips the upsert even when an
// earlier rule matched it.
func IsPendingPayment(eventName string) bool {
	return containsAny(strings.ToLower(eventName), pendingKeywords)
}

// Keyword sets encode the provider's event vocabulary in both Portuguese
// and English. Order matters: rules are evaluated top to bottom and the
// first match wins, so a hypothetical "cancelamento aprovado" still
// classifies as cancelled.
var (
	cancelKeywords  = []string{"cancel", "cancelada", "cancelado", "chargeback", "refund", "reembolso"}
	overdueKeywords = []string{"overdue", "atrasada", "atrasado"}
	paidKeywords    = []string{"paid", "approved", "renew", "renovada", "aprovada", "aprovado", "renovado", "order_paid", "subscription_renewed"}
	pendingKeywords = []string{"pix", "waiting", "pending"}
)

type rule struct {
	keywords []string
	resolve  func(productName string) Classification
}

var rules = []rule{
	{
		keywords: cancelKeywords,
		resolve: func(string) Classification {
			return Classification{
				Outcome: OutcomeCancelled,
				Plan:    models.PlanFree,
				Status:  models.StatusCancelled,
				Label:   "Cancelado/Reembolsado - Acesso Bloqueado",
			}
		},
	},
	{
		keywords: overdueKeywords,
		resolve: func(string) Classification {
			return Classification{
				Outcome: OutcomeOverdue,
				Plan:    models.PlanFree,
				Status:  models.StatusOverdue,
				Label:   "Atrasado - Acesso Bloqueado",
			}
		},
	},
	{
		keywords: paidKeywords,
		resolve:  resolvePaidPlan,
	},
	{
		keywords: pendingKeywords,
		resolve: func(string) Classification {
			return Classification{
				Outcome: OutcomePending,
				Plan:    models.PlanFree,
				Status:  models.StatusActive,
				Label:   "Aguardando Pagamento (Pix)",
			}
		},
	},
}

// resolvePaidPlan maps the product label to a plan for paid/renewed events
func resolvePaidPlan(productName string) Classification {
	c := Classification{
		Outcome: OutcomeActivated,
		Status:  models.StatusActive,
	}

	product := strings.ToLower(productName)
	switch {
	case strings.Contains(product, "master"):
		c.Plan = models.PlanMaster
		c.Label = "Master"
	case strings.Contains(product, "pro"), strings.Contains(product, "normal"):
		c.Plan = models.PlanNormal
		c.Label = "Normal"
	default:
		c.Plan = models.PlanNormal
		c.Label = "Normal (padrão)"
	}
	return c
}

// Classify resolves an event name and product label into a plan/status.
// Matching is case-insensitive substring containment over an ordered rule
// table; the first matching rule wins. Events matching nothing produce an
// explicit unknown outcome that keeps the historical default of
// plan=free, status=active.
func Classify(eventName, productName string) Classification {
	event := strings.ToLower(eventName)

	for _, r := range rules {
		if containsAny(event, r.keywords) {
			return r.resolve(productName)
		}
	}

	return Classification{
		Outcome: OutcomeUnknown,
		Plan:    models.PlanFree,
		Status:  models.StatusActive,
		Label:   "free",
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
