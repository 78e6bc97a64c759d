package booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/models"
)

type MockRepository struct{ mock.Mock }

// WithTx runs fn against the mock itself; rollback is the database's job,
// here we only care that errors propagate.
func (m *MockRepository) WithTx(ctx context.Context, fn func(domain.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Balance(ctx context.Context, clientID uint) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Credit(ctx context.Context, clientID uint, amount int64, reason, refType, refID string) error {
	return m.Called(ctx, clientID, amount, reason, refType, refID).Error(0)
}

func (m *MockRepository) Debit(ctx context.Context, clientID uint, amount int64, reason, refType, refID string) error {
	return m.Called(ctx, clientID, amount, reason, refType, refID).Error(0)
}

func (m *MockRepository) Entries(ctx context.Context, clientID uint) ([]models.PointsEntry, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PointsEntry), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetBarber(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepository) GetAppointmentByKey(ctx context.Context, key string) (*models.Appointment, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepository) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return m.Called(ctx, ap).Error(0)
}

func (m *MockRepository) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return m.Called(ctx, ap).Error(0)
}

func (m *MockRepository) ListClientAppointments(ctx context.Context, clientID uint) ([]models.Appointment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockRepository) ListBarberAppointments(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	args := m.Called(ctx, barberID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockRepository) AssertSlotFree(ctx context.Context, barberID uint, start, end time.Time, excludeID uint) error {
	return m.Called(ctx, barberID, start, end, excludeID).Error(0)
}

func (m *MockRepository) HasClientBookingAt(ctx context.Context, clientID uint, start time.Time, excludeID uint) (bool, error) {
	args := m.Called(ctx, clientID, start, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ActiveSubscription(ctx context.Context, clientID uint) (*models.Subscription, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) CountMembershipUsed(ctx context.Context, clientID uint, periodStart, periodEnd time.Time) (int, error) {
	args := m.Called(ctx, clientID, periodStart, periodEnd)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) HasNonCanceledKind(ctx context.Context, clientID uint, kind string) (bool, error) {
	args := m.Called(ctx, clientID, kind)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) LatestCompletedTrial(ctx context.Context, clientID uint) (*models.Appointment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockRepository) CreateIntent(ctx context.Context, it *models.PaymentIntent) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockRepository) GetIntentByToken(ctx context.Context, token string) (*models.PaymentIntent, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

func (m *MockRepository) UpdateIntent(ctx context.Context, it *models.PaymentIntent) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockRepository) GetSubscriptionByRef(ctx context.Context, ref string) (*models.Subscription, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockRepository) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockRepository) GetPlan(ctx context.Context, id uint) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockRepository) GetPlanByGatewayRef(ctx context.Context, ref string) (*models.Plan, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockRepository) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *MockRepository) CreatePaymentRecord(ctx context.Context, rec *models.PaymentRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRepository) GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	args := m.Called(ctx, barberID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkingHours), args.Error(1)
}
