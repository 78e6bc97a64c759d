package models

import "time"

// PointsEntry is an append-only ledger row. Rows are never updated or
// deleted; corrections are new offsetting entries.
type PointsEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint `gorm:"index:idx_points_client" json:"client_id"`

	Delta int64 `json:"delta"`

	Reason  string `gorm:"size:50;not null" json:"reason"`
	RefType string `gorm:"size:30" json:"ref_type"`
	RefID   string `gorm:"size:100" json:"ref_id"`

	CreatedAt time.Time `json:"created_at"`
}
