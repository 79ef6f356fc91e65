package models

import "time"

// SubscriptionStatus mirrors the payment processor's preapproval lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// BillingFrequency is how often a plan charges.
type BillingFrequency string

const (
	BillingMonthly BillingFrequency = "monthly"
	BillingYearly  BillingFrequency = "yearly"
)

// Months returns the charge interval in months.
func (f BillingFrequency) Months() int {
	if f == BillingYearly {
		return 12
	}
	return 1
}

// Plan is a sellable subscription plan, backed by a processor plan.
type Plan struct {
	ID          string           `json:"id" firestore:"-"`
	Name        string           `json:"name" firestore:"name"`
	Price       float64          `json:"price" firestore:"price"`
	Currency    string           `json:"currency" firestore:"currency"`
	Frequency   BillingFrequency `json:"frequency" firestore:"frequency"`
	ProcessorID string           `json:"processorId" firestore:"processorId"`
	Active      bool             `json:"active" firestore:"active"`
	CreatedAt   time.Time        `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Subscription ties a store to a plan through a processor subscription id.
type Subscription struct {
	ID          string             `json:"id" firestore:"-"`
	StoreID     string             `json:"storeId" firestore:"storeId"`
	PlanID      string             `json:"planId" firestore:"planId"`
	Frequency   BillingFrequency   `json:"frequency" firestore:"frequency"`
	Status      SubscriptionStatus `json:"status" firestore:"status"`
	ProcessorID string             `json:"processorId" firestore:"processorId"`
	InitPoint   string             `json:"initPoint,omitempty" firestore:"initPoint,omitempty"`
	PayerEmail  string             `json:"payerEmail" firestore:"payerEmail"`
	CreatedAt   time.Time          `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time          `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
