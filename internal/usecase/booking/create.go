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

type CreateBookingInput struct {
	ClientID uint
	BarberID uint

	Date string
	Time string

	Channel string
	Address string
	Notes   string

	// Tier the client UI displayed; rejected when it no longer matches.
	ExpectedTier string

	// Confirmed out-of-band payment intent, for paid tiers settled in cash.
	IntentToken string
}

// Result distinguishes a fresh booking from an idempotent replay.
type Result struct {
	Appointment *models.Appointment
	Replayed    bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	params Params
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	params Params,
) *CreateBooking {
	return &CreateBooking{
		repo:   repo,
		audit:  audit,
		params: params,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*Result, error) {

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

	var result Result

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 1️⃣ Cliente e barbeiro
		// --------------------------------------------------
		client, err := tx.GetUser(ctx, in.ClientID)
		if err != nil {
			return err
		}

		if _, err := tx.GetBarber(ctx, in.BarberID); err != nil {
			return httperr.ErrBusiness("barber_not_found")
		}

		// --------------------------------------------------
		// 2️⃣ Elegibilidade (tier)
		// --------------------------------------------------
		hist, err := LoadHistory(ctx, tx, client.ID)
		if err != nil {
			return err
		}

		tier := domain.ResolveTier(hist, now, uc.params.Pricing)

		if in.ExpectedTier != "" && in.ExpectedTier != tier.Code {
			return httperr.ErrBusiness("tier_mismatch")
		}
		if tier.Exhausted() {
			return httperr.ErrBusiness("entitlement_exhausted")
		}

		// --------------------------------------------------
		// 3️⃣ Idempotência (replay)
		// --------------------------------------------------
		key := domain.DeriveKey(client.Email, in.BarberID, start)

		prior, err := tx.GetAppointmentByKey(ctx, key)
		if err != nil {
			return err
		}
		if prior != nil {
			result = Result{Appointment: prior, Replayed: true}
			return nil
		}

		// --------------------------------------------------
		// 4️⃣ Conflito de horário + duplicidade
		// --------------------------------------------------
		if err := tx.AssertSlotFree(ctx, in.BarberID, start, end, 0); err != nil {
			return err
		}

		dup, err := tx.HasClientBookingAt(ctx, client.ID, start, 0)
		if err != nil {
			return err
		}
		if dup {
			return httperr.ErrBusiness("duplicate_booking")
		}

		// --------------------------------------------------
		// 5️⃣ Horário de atendimento
		// --------------------------------------------------
		if err := assertWithinWorkingHours(ctx, tx, in.BarberID, start, end); err != nil {
			return err
		}

		// --------------------------------------------------
		// 6️⃣ Intent de pagamento (tiers pagos)
		// --------------------------------------------------
		var intent *models.PaymentIntent
		if tier.NeedsIntent() && in.IntentToken != "" {
			intent, err = validateIntent(ctx, tx, in.IntentToken, client.ID, tier.PriceCents, now)
			if err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// 7️⃣ Criação do agendamento
		// --------------------------------------------------
		ap := &models.Appointment{
			ClientID:       client.ID,
			BarberID:       in.BarberID,
			StartTime:      start,
			EndTime:        end,
			Status:         string(domain.InitialStatus()),
			Channel:        in.Channel,
			Kind:           string(tier.Kind),
			PriceCents:     tier.PriceCents,
			PaymentStatus:  string(tier.PaymentStatus),
			IdempotencyKey: key,
			Notes:          in.Notes,
			Address:        in.Address,
		}

		if intent != nil {
			ap.PaymentStatus = string(domain.PaymentPaid)
			ap.PaymentChannel = string(domain.PayViaCashIntent)
			ap.PaymentIntentID = &intent.ID
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

		if intent != nil {
			intent.ConsumedAt = &now
			if err := tx.UpdateIntent(ctx, intent); err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// 8️⃣ Re-checagem da franquia antes do commit
		// --------------------------------------------------
		if tier.Code == domain.TierMembershipIncluded && tier.RemainingThisPeriod != nil {
			sub := hist.Subscription
			used, err := tx.CountMembershipUsed(
				ctx,
				client.ID,
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

		// --------------------------------------------------
		// 9️⃣ Débito de pontos (tiers pagos)
		// --------------------------------------------------
		if !tier.Waived() {
			if err := tx.Debit(
				ctx,
				client.ID,
				uc.params.PointCost,
				points.ReasonBookingCost,
				points.RefAppointment,
				fmt.Sprint(ap.ID),
			); err != nil {
				return err
			}
		}

		result = Result{Appointment: ap}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		uc.audit.Dispatch(audit.Event{
			UserID:   &in.ClientID,
			Action:   "appointment_created",
			Entity:   "appointment",
			EntityID: &result.Appointment.ID,
		})
	}

	return &result, nil
}

// ======================================================
// HELPERS
// ======================================================

func validateIntent(
	ctx context.Context,
	tx domain.Repository,
	token string,
	clientID uint,
	amountCents int64,
	now time.Time,
) (*models.PaymentIntent, error) {

	intent, err := tx.GetIntentByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if intent == nil ||
		intent.ClientID != clientID ||
		intent.Status != "confirmed" ||
		intent.ConsumedAt != nil ||
		intent.AmountCents != amountCents ||
		now.After(intent.ExpiresAt) {
		return nil, httperr.ErrBusiness("payment_not_confirmed")
	}

	return intent, nil
}

func assertWithinWorkingHours(
	ctx context.Context,
	tx domain.Repository,
	barberID uint,
	start time.Time,
	end time.Time,
) error {

	wh, err := tx.GetWorkingHours(ctx, barberID, int(start.Weekday()))
	if err != nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return httperr.ErrBusiness("outside_working_hours")
	}

	loc := start.Location()
	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(start.Year(), start.Month(), start.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	}

	workStart := parseHM(wh.StartTime)
	workEnd := parseHM(wh.EndTime)

	if start.Before(workStart) || end.After(workEnd) {
		return httperr.ErrBusiness("outside_working_hours")
	}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		lunchStart := parseHM(wh.LunchStart)
		lunchEnd := parseHM(wh.LunchEnd)
		if start.Before(lunchEnd) && end.After(lunchStart) {
			return httperr.ErrBusiness("outside_working_hours")
		}
	}

	return nil
}
