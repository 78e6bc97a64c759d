package models

import "time"

type Subscription struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint `gorm:"index" json:"client_id"`
	Client   User `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	PlanID uint `json:"plan_id"`
	Plan   Plan `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"plan"`

	// Gateway-side subscription reference; idempotent upsert key.
	GatewayRef string `gorm:"size:100;uniqueIndex;not null" json:"gateway_ref"`

	Status string `gorm:"size:20;default:'active'" json:"status"`

	CurrentPeriodStart time.Time `json:"current_period_start"`
	NextRenewalAt      time.Time `json:"next_renewal_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
