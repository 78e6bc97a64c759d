package booking

// ===============================
// Subscription Status
// ===============================

type SubStatus string

const (
	SubTrial    SubStatus = "trial"
	SubActive   SubStatus = "active"
	SubPastDue  SubStatus = "past_due"
	SubCanceled SubStatus = "canceled"
)

// Entitled reports whether the subscription status grants membership cuts.
func Entitled(s SubStatus) bool {
	return s == SubActive || s == SubTrial
}
