package booking

import (
	"time"

	"github.com/cutclub/cutclub-backend/internal/models"
)

// ===============================
// Entitlement Tiers
// ===============================

const (
	TierMembershipIncluded = "membership_included"
	TierFirstFree          = "first_free"
	TierSecondDiscount     = "second_discount"
	TierOneOff             = "one_off"
)

// Tier is the resolved entitlement for the client's next booking. It is also
// the wire shape of GET /api/me/entitlement.
type Tier struct {
	Code string `json:"tier"`

	Kind          Kind          `json:"kind"`
	PriceCents    int64         `json:"price_cents"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	// Membership tier with a per-period cap. Nil means uncapped.
	PlanName            string `json:"plan_name,omitempty"`
	RemainingThisPeriod *int   `json:"remaining_this_period,omitempty"`

	// Second-cut tier only.
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Pricing carries the configured amounts assigned to paid tiers.
type Pricing struct {
	SecondCutCents int64
	OneOffCents    int64
	WindowDays     int
}

// History is the per-client snapshot the resolver decides on. All fields must
// be loaded in the same transaction so the decision is consistent.
type History struct {
	// Subscription with status active or trial, Plan preloaded. Nil when none.
	Subscription *models.Subscription

	// Count of membership_included appointments booked, confirmed or
	// completed inside the current billing period.
	UsedThisPeriod int

	// A non-canceled trial_free appointment exists, ever.
	HasTrial bool

	// A non-canceled discount_second appointment exists.
	HasSecondCut bool

	// Completion time of the most recent completed trial_free appointment.
	TrialCompletedAt *time.Time
}

// ResolveTier walks the precedence ladder: active membership first, then the
// lifetime free first cut, then the discounted second cut while its window is
// open, then full price.
func ResolveTier(h History, now time.Time, p Pricing) Tier {
	if h.Subscription != nil {
		t := Tier{
			Code:          TierMembershipIncluded,
			Kind:          KindMembershipIncluded,
			PriceCents:    0,
			PaymentStatus: PaymentWaived,
			PlanName:      h.Subscription.Plan.Name,
		}
		if cap := h.Subscription.Plan.CutsPerMonth; cap > 0 {
			remaining := cap - h.UsedThisPeriod
			if remaining < 0 {
				remaining = 0
			}
			t.RemainingThisPeriod = &remaining
		}
		return t
	}

	if !h.HasTrial {
		return Tier{
			Code:          TierFirstFree,
			Kind:          KindTrialFree,
			PriceCents:    0,
			PaymentStatus: PaymentWaived,
		}
	}

	if !h.HasSecondCut && h.TrialCompletedAt != nil {
		deadline := h.TrialCompletedAt.Add(time.Duration(p.WindowDays) * 24 * time.Hour)
		if now.Before(deadline) {
			return Tier{
				Code:          TierSecondDiscount,
				Kind:          KindDiscountSecond,
				PriceCents:    p.SecondCutCents,
				PaymentStatus: PaymentPending,
				Deadline:      &deadline,
			}
		}
	}

	return Tier{
		Code:          TierOneOff,
		Kind:          KindOneOff,
		PriceCents:    p.OneOffCents,
		PaymentStatus: PaymentPending,
	}
}

// Waived reports whether the tier books without payment.
func (t Tier) Waived() bool {
	return t.PaymentStatus == PaymentWaived
}

// NeedsIntent reports whether the synchronous booking path requires a
// confirmed one-time payment intent for this tier.
func (t Tier) NeedsIntent() bool {
	return t.PaymentStatus == PaymentPending
}

// Exhausted reports whether a capped membership has no cuts left this period.
func (t Tier) Exhausted() bool {
	return t.Code == TierMembershipIncluded &&
		t.RemainingThisPeriod != nil && *t.RemainingThisPeriod <= 0
}
