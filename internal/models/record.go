package models

import "time"

// Generation is one stored feature result.
type Generation struct {
	ID            string    `json:"id"`
	RecordID      string    `json:"recordId"`
	Feature       string    `json:"feature"`
	Text          string    `json:"text"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	ImageVariants []string  `json:"imageVariants,omitempty"`
	Placeholder   bool      `json:"placeholder"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment tracks one provider payment intent and whether its tokens were credited.
type Payment struct {
	IntentID  string    `json:"intentId"`
	RecordID  string    `json:"recordId"`
	Package   string    `json:"package"`
	Tokens    int       `json:"tokens"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
