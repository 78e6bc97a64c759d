package models

import "time"

// PaymentIntent is a one-time out-of-band payment (cash at the counter,
// bank transfer) that must be confirmed by staff before it can back a
// paid booking.
type PaymentIntent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Client-facing identifier.
	Token string `gorm:"size:36;uniqueIndex;not null" json:"token"`

	ClientID uint `gorm:"index" json:"client_id"`

	AmountCents int64  `json:"amount_cents"`
	Status      string `gorm:"size:20;default:'pending'" json:"status"`

	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentRecord mirrors a settled gateway charge for bookkeeping.
type PaymentRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID       uint  `gorm:"index" json:"client_id"`
	SubscriptionID *uint `json:"subscription_id,omitempty"`

	AmountCents int64  `json:"amount_cents"`
	Currency    string `gorm:"size:3;default:'BRL'" json:"currency"`

	// Gateway payment/invoice reference; one row per charge.
	GatewayRef string `gorm:"size:100;uniqueIndex;not null" json:"gateway_ref"`

	Kind string `gorm:"size:30" json:"kind"`

	CreatedAt time.Time `json:"created_at"`
}
