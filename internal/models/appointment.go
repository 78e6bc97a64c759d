package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint `gorm:"index" json:"client_id"`
	Client   User `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	BarberID uint `gorm:"index" json:"barber_id"`
	Barber   User `gorm:"foreignKey:BarberID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"barber"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status  string `gorm:"size:20;default:'booked'" json:"status"`
	Channel string `gorm:"size:10;default:'shop'" json:"channel"`
	Kind    string `gorm:"size:30;not null" json:"kind"`

	PriceCents     int64  `json:"price_cents"`
	PaymentStatus  string `gorm:"size:20;default:'pending'" json:"payment_status"`
	PaymentChannel string `gorm:"size:20" json:"payment_channel"`

	// Unique among non-canceled rows; enforced by a partial index in db.
	IdempotencyKey string `gorm:"size:64;not null" json:"-"`

	PaymentIntentID *uint `json:"payment_intent_id,omitempty"`

	CancelReason string `gorm:"size:100" json:"cancel_reason,omitempty"`
	Notes        string `gorm:"size:255" json:"notes,omitempty"`
	Address      string `gorm:"size:255" json:"address,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CanceledAt  *time.Time `json:"canceled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
