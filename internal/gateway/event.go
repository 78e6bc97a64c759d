package gateway

import "time"

// ===============================
// Gateway Events
// ===============================

// EventType is the provider-neutral kind of a payment gateway event. The
// reconciliation layer consumes these, never raw provider payloads.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout_completed"
	EventInvoicePaid          EventType = "invoice_paid"
	EventInvoiceFailed        EventType = "invoice_failed"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
)

type Mode string

const (
	ModeOneTime      Mode = "one_time"
	ModeSubscription Mode = "subscription"
)

// Event carries everything reconciliation needs. Events may be delivered
// more than once; every consumer must be idempotent.
type Event struct {
	Type EventType
	Mode Mode

	// Checkout session / externally-assigned reference of the purchase.
	CheckoutRef string

	// Gateway payment id; doubles as the invoice reference on renewals.
	PaymentRef string

	AmountCents int64
	Currency    string
	PayerEmail  string

	// Booking or account parameters attached at checkout time.
	Metadata map[string]string

	// Gateway-side subscription reference.
	SubscriptionRef string

	// Raw gateway status word, mapped to a local status by reconciliation.
	GatewayStatus string

	NextRenewalAt time.Time
}
