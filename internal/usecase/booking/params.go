package booking

import (
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
)

// Params are the configured knobs of the booking engine. Routes build them
// from config so usecases stay independent of the env layer.
type Params struct {
	Pricing domain.Pricing

	// Points debited from the client on every paid booking.
	PointCost int64

	SlotMinutes       int
	MinAdvanceMinutes int

	// IANA timezone the shop operates in; booking times parse in it.
	Timezone string
}
