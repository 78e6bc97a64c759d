package booking

// ===============================
// Appointment Kind
// ===============================

type Kind string

const (
	KindTrialFree          Kind = "trial_free"
	KindDiscountSecond     Kind = "discount_second"
	KindMembershipIncluded Kind = "membership_included"
	KindOneOff             Kind = "one_off"
)

// ===============================
// Payment
// ===============================

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentWaived  PaymentStatus = "waived"
)

type PaymentChannel string

const (
	PayViaGateway    PaymentChannel = "gateway"
	PayViaCashIntent PaymentChannel = "cash_intent"
)

// ===============================
// Channel
// ===============================

type Channel string

const (
	ChannelShop Channel = "shop"
	ChannelHome Channel = "home"
)

func ValidChannel(c string) bool {
	return c == string(ChannelShop) || c == string(ChannelHome)
}
