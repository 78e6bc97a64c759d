package booking

import (
	"context"
	"time"

	"github.com/cutclub/cutclub-backend/internal/domain/points"
	"github.com/cutclub/cutclub-backend/internal/models"
)

// Repository is the persistence surface of the booking engine. Optional
// lookups (GetAppointmentByKey, GetIntentByToken, GetSubscriptionByRef,
// GetPlanByGatewayRef, ActiveSubscription, LatestCompletedTrial) return
// (nil, nil) when nothing matches; the remaining getters fail.
type Repository interface {
	points.Ledger

	// WithTx runs fn with a Repository bound to a single database
	// transaction. Any error rolls the whole transaction back.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// -------- Users --------
	GetUser(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	GetUserByEmail(
		ctx context.Context,
		email string,
	) (*models.User, error)

	GetBarber(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	CreateUser(
		ctx context.Context,
		u *models.User,
	) error

	// -------- Appointments --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentByKey(
		ctx context.Context,
		key string,
	) (*models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListClientAppointments(
		ctx context.Context,
		clientID uint,
	) ([]models.Appointment, error)

	ListBarberAppointments(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Conflict / duplicate guards --------
	AssertSlotFree(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
		excludeID uint,
	) error

	HasClientBookingAt(
		ctx context.Context,
		clientID uint,
		start time.Time,
		excludeID uint,
	) (bool, error)

	// -------- Entitlement history --------
	ActiveSubscription(
		ctx context.Context,
		clientID uint,
	) (*models.Subscription, error)

	CountMembershipUsed(
		ctx context.Context,
		clientID uint,
		periodStart time.Time,
		periodEnd time.Time,
	) (int, error)

	HasNonCanceledKind(
		ctx context.Context,
		clientID uint,
		kind string,
	) (bool, error)

	LatestCompletedTrial(
		ctx context.Context,
		clientID uint,
	) (*models.Appointment, error)

	// -------- Payment intents --------
	CreateIntent(
		ctx context.Context,
		it *models.PaymentIntent,
	) error

	GetIntentByToken(
		ctx context.Context,
		token string,
	) (*models.PaymentIntent, error)

	UpdateIntent(
		ctx context.Context,
		it *models.PaymentIntent,
	) error

	// -------- Subscriptions / plans / payment records --------
	GetSubscriptionByRef(
		ctx context.Context,
		ref string,
	) (*models.Subscription, error)

	CreateSubscription(
		ctx context.Context,
		sub *models.Subscription,
	) error

	UpdateSubscription(
		ctx context.Context,
		sub *models.Subscription,
	) error

	GetPlan(
		ctx context.Context,
		id uint,
	) (*models.Plan, error)

	GetPlanByGatewayRef(
		ctx context.Context,
		ref string,
	) (*models.Plan, error)

	ListActivePlans(
		ctx context.Context,
	) ([]models.Plan, error)

	CreatePaymentRecord(
		ctx context.Context,
		rec *models.PaymentRecord,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		barberID uint,
		weekday int,
	) (*models.WorkingHours, error)
}
