package points

import (
	"context"

	"github.com/cutclub/cutclub-backend/internal/models"
)

// ===============================
// Ledger Reasons
// ===============================

const (
	ReasonSignupBonus  = "signup_bonus"
	ReasonRenewalBonus = "renewal_bonus"
	ReasonBookingCost  = "booking_cost"
	ReasonAdminAdjust  = "admin_adjust"
)

// Ref types tie a ledger entry back to the row that caused it.
const (
	RefAppointment  = "appointment"
	RefSubscription = "subscription"
	RefPayment      = "payment"
	RefUser         = "user"
)

// ===============================
// Ledger
// ===============================

// Ledger is the append-only points store. Balance is always the sum of
// deltas; entries are never updated or deleted.
type Ledger interface {
	Balance(ctx context.Context, clientID uint) (int64, error)

	// Credit appends a positive entry. It is idempotent per
	// (reason, refType, refID): a second call with the same triple is a
	// no-op, which makes gateway event redelivery safe.
	Credit(ctx context.Context, clientID uint, amount int64, reason, refType, refID string) error

	// Debit recomputes the balance and appends a negative entry, or fails
	// with insufficient_balance appending nothing.
	Debit(ctx context.Context, clientID uint, amount int64, reason, refType, refID string) error

	Entries(ctx context.Context, clientID uint) ([]models.PointsEntry, error)
}
