package booking

import (
	"context"

	"github.com/cutclub/cutclub-backend/internal/audit"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

type CompleteAppointment struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	params Params
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	params Params,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:   repo,
		audit:  audit,
		params: params,
	}
}

// Execute marks the cut done. The completion timestamp anchors the client's
// second-cut discount window.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	operatorID uint,
	operatorRole string,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if !canOperate(operatorID, operatorRole, ap) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	now := timezone.NowIn(uc.params.Timezone)
	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &operatorID,
		Action:   "appointment_completed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
