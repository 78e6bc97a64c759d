package booking

import (
	"context"

	"github.com/cutclub/cutclub-backend/internal/audit"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

type CancelBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	params Params
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	params Params,
) *CancelBooking {
	return &CancelBooking{
		repo:   repo,
		audit:  audit,
		params: params,
	}
}

// Execute cancels from booked or confirmed. Points already debited stay
// debited; cancellation never refunds.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	actorID uint,
	actorRole string,
	appointmentID uint,
	reason string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if !canOperate(actorID, actorRole, ap) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	now := timezone.NowIn(uc.params.Timezone)
	if err := domain.Cancel(ap, reason, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "appointment_canceled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"reason": reason},
	})

	return ap, nil
}

// canOperate hides appointments the actor has no claim on: clients see their
// own, barbers their agenda, owners everything.
func canOperate(actorID uint, actorRole string, ap *models.Appointment) bool {
	switch actorRole {
	case "owner":
		return true
	case "barber":
		return ap.BarberID == actorID
	default:
		return ap.ClientID == actorID
	}
}
