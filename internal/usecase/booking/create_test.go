package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cutclub/cutclub-backend/internal/audit"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

func testParams() Params {
	return Params{
		Pricing: domain.Pricing{
			SecondCutCents: 1000,
			OneOffCents:    3000,
			WindowDays:     10,
		},
		PointCost:         10,
		SlotMinutes:       30,
		MinAdvanceMinutes: 120,
		Timezone:          "America/Sao_Paulo",
	}
}

// auditSink never delivers anything: the zero-value dispatcher has no queue,
// so Dispatch falls through to its drop branch.
func auditSink() *audit.Dispatcher {
	return &audit.Dispatcher{}
}

// dateIn returns a shop-local date string n days ahead. Paired with a
// mid-morning slot it always clears the minimum-advance check.
func dateIn(days int) string {
	return timezone.NowIn("America/Sao_Paulo").AddDate(0, 0, days).Format("2006-01-02")
}

func openDay() *models.WorkingHours {
	return &models.WorkingHours{
		Active:    true,
		StartTime: "09:00",
		EndTime:   "18:00",
	}
}

func expectClientAndBarber(repo *MockRepository, clientID, barberID uint) {
	repo.On("GetUser", mock.Anything, clientID).Return(&models.User{
		ID:    clientID,
		Name:  "João",
		Email: "joao@example.com",
		Role:  "client",
	}, nil)
	repo.On("GetBarber", mock.Anything, barberID).Return(&models.User{
		ID:   barberID,
		Name: "Carlos",
		Role: "barber",
	}, nil)
}

func expectFreshClientHistory(repo *MockRepository, clientID uint) {
	repo.On("ActiveSubscription", mock.Anything, clientID).Return(nil, nil)
	repo.On("HasNonCanceledKind", mock.Anything, clientID, string(domain.KindTrialFree)).Return(false, nil)
}

func expectOneOffHistory(repo *MockRepository, clientID uint) {
	repo.On("ActiveSubscription", mock.Anything, clientID).Return(nil, nil)
	repo.On("HasNonCanceledKind", mock.Anything, clientID, string(domain.KindTrialFree)).Return(true, nil)
	repo.On("HasNonCanceledKind", mock.Anything, clientID, string(domain.KindDiscountSecond)).Return(true, nil)
}

func TestCreateBooking_FirstFree(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)

	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("CreateAppointment", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Appointment).ID = 42
	}).Return(nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	res, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.NoError(t, err)
	assert.False(t, res.Replayed)

	ap := res.Appointment
	assert.Equal(t, string(domain.KindTrialFree), ap.Kind)
	assert.Equal(t, string(domain.StatusBooked), ap.Status)
	assert.Equal(t, string(domain.PaymentWaived), ap.PaymentStatus)
	assert.Equal(t, int64(0), ap.PriceCents)
	assert.Equal(t, string(domain.ChannelShop), ap.Channel)
	assert.Len(t, ap.IdempotencyKey, 64)

	// Free cuts never touch the ledger.
	repo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestCreateBooking_Replay(t *testing.T) {
	prior := &models.Appointment{
		ID:     7,
		Kind:   string(domain.KindTrialFree),
		Status: string(domain.StatusBooked),
	}

	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(prior, nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	res, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, uint(7), res.Appointment.ID)

	repo.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AssertSlotFree", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_TierMismatch(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectOneOffHistory(repo, 1)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID:     1,
		BarberID:     3,
		Date:         dateIn(3),
		Time:         "10:00",
		ExpectedTier: domain.TierFirstFree,
	})

	assert.True(t, httperr.IsBusiness(err, "tier_mismatch"))
	repo.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestCreateBooking_MembershipExhausted(t *testing.T) {
	periodStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	renewal := periodStart.AddDate(0, 1, 0)

	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	repo.On("ActiveSubscription", mock.Anything, uint(1)).Return(&models.Subscription{
		ClientID:           1,
		Plan:               models.Plan{Name: "Clube Básico", CutsPerMonth: 2},
		Status:             "active",
		CurrentPeriodStart: periodStart,
		NextRenewalAt:      renewal,
	}, nil)
	repo.On("CountMembershipUsed", mock.Anything, uint(1), periodStart, renewal).Return(2, nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.True(t, httperr.IsBusiness(err, "entitlement_exhausted"))
	repo.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestCreateBooking_SlotConflict(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).
		Return(httperr.ErrBusiness("slot_conflict"))

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.True(t, httperr.IsBusiness(err, "slot_conflict"))
}

func TestCreateBooking_ExclusionConflictOnInsert(t *testing.T) {
	// The pre-check passed but a concurrent insert won the exclusion
	// constraint race; the loser maps to the same business code.
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("CreateAppointment", mock.Anything, mock.Anything).
		Return(&pgconn.PgError{Code: "23P01"})

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.True(t, httperr.IsBusiness(err, "slot_conflict"))
}

func TestCreateBooking_DuplicateClientSlot(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(true, nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.True(t, httperr.IsBusiness(err, "duplicate_booking"))
}

func TestCreateBooking_OutsideWorkingHours(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).
		Return(&models.WorkingHours{Active: false}, nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))
}

func TestCreateBooking_LunchWindowBlocked(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(&models.WorkingHours{
		Active:     true,
		StartTime:  "09:00",
		EndTime:    "18:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
	}, nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "12:30",
	})

	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		in   CreateBookingInput
		code string
	}{
		{
			name: "garbled date",
			in:   CreateBookingInput{ClientID: 1, BarberID: 3, Date: "12/03/2026", Time: "10:00"},
			code: "invalid_date_or_time",
		},
		{
			name: "garbled time",
			in:   CreateBookingInput{ClientID: 1, BarberID: 3, Date: dateIn(3), Time: "10h30"},
			code: "invalid_date_or_time",
		},
		{
			name: "unknown channel",
			in:   CreateBookingInput{ClientID: 1, BarberID: 3, Date: dateIn(3), Time: "10:00", Channel: "telepathy"},
			code: "invalid_channel",
		},
		{
			name: "home visit without address",
			in:   CreateBookingInput{ClientID: 1, BarberID: 3, Date: dateIn(3), Time: "10:00", Channel: "home"},
			code: "address_required",
		},
		{
			name: "slot in the past",
			in:   CreateBookingInput{ClientID: 1, BarberID: 3, Date: dateIn(-1), Time: "10:00"},
			code: "too_soon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			uc := NewCreateBooking(repo, auditSink(), testParams())

			_, err := uc.Execute(context.Background(), tt.in)

			assert.True(t, httperr.IsBusiness(err, tt.code), "want %s, got %v", tt.code, err)
			repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateBooking_OneOffDebitsPoints(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectOneOffHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("CreateAppointment", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Appointment).ID = 51
	}).Return(nil)
	repo.On("Debit", mock.Anything, uint(1), int64(10), "booking_cost", "appointment", "51").Return(nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	res, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(domain.KindOneOff), res.Appointment.Kind)
	assert.Equal(t, int64(3000), res.Appointment.PriceCents)
	assert.Equal(t, string(domain.PaymentPending), res.Appointment.PaymentStatus)
	repo.AssertExpectations(t)
}

func TestCreateBooking_ConfirmedIntentSettlesPayment(t *testing.T) {
	intent := &models.PaymentIntent{
		ID:          9,
		Token:       "tok-abc",
		ClientID:    1,
		AmountCents: 3000,
		Status:      "confirmed",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectOneOffHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("GetIntentByToken", mock.Anything, "tok-abc").Return(intent, nil)
	repo.On("CreateAppointment", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Appointment).ID = 52
	}).Return(nil)
	repo.On("UpdateIntent", mock.Anything, intent).Return(nil)
	repo.On("Debit", mock.Anything, uint(1), int64(10), "booking_cost", "appointment", "52").Return(nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	res, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID:    1,
		BarberID:    3,
		Date:        dateIn(3),
		Time:        "10:00",
		IntentToken: "tok-abc",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(domain.PaymentPaid), res.Appointment.PaymentStatus)
	assert.Equal(t, string(domain.PayViaCashIntent), res.Appointment.PaymentChannel)
	if assert.NotNil(t, res.Appointment.PaymentIntentID) {
		assert.Equal(t, uint(9), *res.Appointment.PaymentIntentID)
	}
	assert.NotNil(t, intent.ConsumedAt)
	repo.AssertExpectations(t)
}

func TestCreateBooking_IntentAmountMismatch(t *testing.T) {
	// Intent was confirmed for the discounted price but the tier moved on.
	intent := &models.PaymentIntent{
		ID:          9,
		Token:       "tok-abc",
		ClientID:    1,
		AmountCents: 1000,
		Status:      "confirmed",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectOneOffHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("GetIntentByToken", mock.Anything, "tok-abc").Return(intent, nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID:    1,
		BarberID:    3,
		Date:        dateIn(3),
		Time:        "10:00",
		IntentToken: "tok-abc",
	})

	assert.True(t, httperr.IsBusiness(err, "payment_not_confirmed"))
	repo.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestCreateBooking_InsufficientBalance(t *testing.T) {
	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectOneOffHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("CreateAppointment", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Appointment).ID = 53
	}).Return(nil)
	repo.On("Debit", mock.Anything, uint(1), int64(10), "booking_cost", "appointment", "53").
		Return(httperr.ErrBusiness("insufficient_balance"))

	uc := NewCreateBooking(repo, auditSink(), testParams())

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ClientID: 1,
		BarberID: 3,
		Date:     dateIn(3),
		Time:     "10:00",
	})

	// The transaction fails as a whole; the appointment insert rolls back
	// with the debit.
	assert.True(t, httperr.IsBusiness(err, "insufficient_balance"))
}

func TestCreateBooking_DerivedKeyIgnoresRequestNoise(t *testing.T) {
	// Same client, barber and slot must derive the same key regardless of
	// notes or channel, which is what makes retries replay.
	var captured []string

	repo := new(MockRepository)
	expectClientAndBarber(repo, 1, 3)
	expectFreshClientHistory(repo, 1)
	repo.On("GetAppointmentByKey", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = append(captured, args.String(1))
	}).Return(nil, nil)
	repo.On("AssertSlotFree", mock.Anything, uint(3), mock.Anything, mock.Anything, uint(0)).Return(nil)
	repo.On("HasClientBookingAt", mock.Anything, uint(1), mock.Anything, uint(0)).Return(false, nil)
	repo.On("GetWorkingHours", mock.Anything, uint(3), mock.Anything).Return(openDay(), nil)
	repo.On("CreateAppointment", mock.Anything, mock.Anything).Return(nil)

	uc := NewCreateBooking(repo, auditSink(), testParams())
	date := dateIn(3)

	for i := 0; i < 2; i++ {
		_, err := uc.Execute(context.Background(), CreateBookingInput{
			ClientID: 1,
			BarberID: 3,
			Date:     date,
			Time:     "10:00",
			Notes:    fmt.Sprintf("attempt %d", i),
		})
		assert.NoError(t, err)
	}

	assert.Len(t, captured, 2)
	assert.Equal(t, captured[0], captured[1])
}
