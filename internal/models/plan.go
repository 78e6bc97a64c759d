package models

import "time"

type Plan struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	PriceCents int64 `json:"price_cents"`

	// 0 means the plan carries no per-period cap.
	CutsPerMonth int `json:"cuts_per_month"`

	Channel string `gorm:"size:10;default:'shop'" json:"channel"`

	GatewayPriceRef string `gorm:"size:100" json:"gateway_price_ref"`
	Active          bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
