package mercadopago

import "fmt"

// Preapproval statuses as reported by MercadoPago.
const (
	StatusPending    = "pending"
	StatusAuthorized = "authorized"
	StatusPaused     = "paused"
	StatusCancelled  = "cancelled"
)

// Frequency types accepted by auto_recurring.frequency_type.
const (
	FrequencyMonths = "months"
	FrequencyDays   = "days"
)

// AutoRecurring describes how a plan or subscription charges.
type AutoRecurring struct {
	Frequency         int     `json:"frequency"`
	FrequencyType     string  `json:"frequency_type"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
}

// PlanRequest is the body of POST /preapproval_plan.
type PlanRequest struct {
	Reason        string        `json:"reason"`
	AutoRecurring AutoRecurring `json:"auto_recurring"`
	BackURL       string        `json:"back_url"`
}

// Plan is a MercadoPago subscription plan.
type Plan struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Reason        string        `json:"reason"`
	InitPoint     string        `json:"init_point"`
	AutoRecurring AutoRecurring `json:"auto_recurring"`
}

// PreapprovalRequest is the body of POST /preapproval.
type PreapprovalRequest struct {
	PreapprovalPlanID string `json:"preapproval_plan_id,omitempty"`
	Reason            string `json:"reason,omitempty"`
	ExternalReference string `json:"external_reference,omitempty"`
	PayerEmail        string `json:"payer_email"`
	BackURL           string `json:"back_url,omitempty"`
	Status            string `json:"status,omitempty"`
}

// Preapproval is a MercadoPago subscription.
type Preapproval struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Reason            string `json:"reason"`
	PayerEmail        string `json:"payer_email"`
	ExternalReference string `json:"external_reference"`
	PreapprovalPlanID string `json:"preapproval_plan_id"`
	InitPoint         string `json:"init_point"`
}

type statusUpdate struct {
	Status string `json:"status"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Notification is the webhook payload MercadoPago posts for subscription events.
type Notification struct {
	Type   string `json:"type" validate:"required"`
	Action string `json:"action" validate:"required"`
	Data   struct {
		ID string `json:"id" validate:"required"`
	} `json:"data"`
	LiveMode bool `json:"live_mode"`
}

// IsPreapproval reports whether the notification concerns a subscription.
func (n *Notification) IsPreapproval() bool {
	return n.Type == "subscription_preapproval" || n.Type == "preapproval"
}
