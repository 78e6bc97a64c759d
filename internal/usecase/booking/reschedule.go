package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/cutclub/cutclub-backend/internal/audit"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/domain/points"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type RescheduleBookingInput struct {
	ClientID      uint
	AppointmentID uint

	BarberID uint
	Date     string
	Time     string

	Channel string
	Address string
	Notes   string
}

// ======================================================
// USE CASE
// ======================================================

// RescheduleBooking replaces an appointment in one transaction: the old row
// is canceled with reason "rescheduled" and the new slot is booked with the
// old row excluded from the conflict check. Any failure rolls everything
// back, so the client never loses the original booking to a failed move.
type RescheduleBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	params Params
}

func NewRescheduleBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	params Params,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:   repo,
		audit:  audit,
		params: params,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	in RescheduleBookingInput,
) (*models.Appointment, error) {

	loc := timezone.Location(uc.params.Timezone)

	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	if in.Channel == "" {
		in.Channel = string(domain.ChannelShop)
	}
	if !domain.ValidChannel(in.Channel) {
		return nil, httperr.ErrBusiness("invalid_channel")
	}
	if in.Channel == string(domain.ChannelHome) && in.Address == "" {
		return nil, httperr.ErrBusiness("address_required")
	}

	end := start.Add(time.Duration(uc.params.SlotMinutes) * time.Minute)
	now := timezone.NowIn(uc.params.Timezone)

	if start.Before(now.Add(time.Duration(uc.params.MinAdvanceMinutes) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	var created *models.Appointment

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {

		old, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return httperr.ErrBusiness("appointment_not_found")
		}
		if old.ClientID != in.ClientID {
			return httperr.ErrBusiness("appointment_not_found")
		}

		barberID := in.BarberID
		if barberID == 0 {
			barberID = old.BarberID
		}
		if _, err := tx.GetBarber(ctx, barberID); err != nil {
			return httperr.ErrBusiness("barber_not_found")
		}

		// Cancela o agendamento antigo dentro da mesma transação.
		if err := domain.Cancel(old, "rescheduled", now); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, old); err != nil {
			return err
		}

		if err := tx.AssertSlotFree(ctx, barberID, start, end, old.ID); err != nil {
			return err
		}

		dup, err := tx.HasClientBookingAt(ctx, in.ClientID, start, old.ID)
		if err != nil {
			return err
		}
		if dup {
			return httperr.ErrBusiness("duplicate_booking")
		}

		if err := assertWithinWorkingHours(ctx, tx, barberID, start, end); err != nil {
			return err
		}

		// O novo agendamento herda kind, preço e pagamento do antigo; a
		// elegibilidade não é re-resolvida em remarcação.
		ap := &models.Appointment{
			ClientID:        in.ClientID,
			BarberID:        barberID,
			StartTime:       start,
			EndTime:         end,
			Status:          string(domain.InitialStatus()),
			Channel:         in.Channel,
			Kind:            old.Kind,
			PriceCents:      old.PriceCents,
			PaymentStatus:   old.PaymentStatus,
			PaymentChannel:  old.PaymentChannel,
			PaymentIntentID: old.PaymentIntentID,
			IdempotencyKey:  domain.DeriveKey(old.Client.Email, barberID, start),
			Notes:           in.Notes,
			Address:         in.Address,
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			if httperr.IsExclusionConflict(err) {
				return httperr.ErrBusiness("slot_conflict")
			}
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrBusiness("duplicate_booking")
			}
			return err
		}

		// Re-checagem da franquia antes do commit, como na criação.
		if ap.Kind == string(domain.KindMembershipIncluded) {
			sub, err := tx.ActiveSubscription(ctx, in.ClientID)
			if err != nil {
				return err
			}
			if sub != nil && sub.Plan.CutsPerMonth > 0 {
				used, err := tx.CountMembershipUsed(
					ctx,
					in.ClientID,
					sub.CurrentPeriodStart,
					sub.NextRenewalAt,
				)
				if err != nil {
					return err
				}
				if used > sub.Plan.CutsPerMonth {
					return httperr.ErrBusiness("entitlement_exhausted")
				}
			}
		}

		// Tiers pagos debitam o custo em pontos também na remarcação; o
		// débito do agendamento original nunca é estornado.
		if ap.PaymentStatus != string(domain.PaymentWaived) {
			if err := tx.Debit(
				ctx,
				in.ClientID,
				uc.params.PointCost,
				points.ReasonBookingCost,
				points.RefAppointment,
				fmt.Sprint(ap.ID),
			); err != nil {
				return err
			}
		}

		created = ap
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ClientID,
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &created.ID,
		Metadata: map[string]any{"replaced": in.AppointmentID},
	})

	return created, nil
}
