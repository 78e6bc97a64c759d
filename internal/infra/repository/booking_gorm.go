package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// WithTx binds a repository to one transaction; fn returning an error rolls
// everything back.
func (r *BookingGormRepository) WithTx(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *BookingGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BookingGormRepository) GetUserByEmail(
	ctx context.Context,
	email string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BookingGormRepository) GetBarber(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = 'barber'", id).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *BookingGormRepository) CreateUser(
	ctx context.Context,
	u *models.User,
) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *BookingGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Barber").
		First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) GetAppointmentByKey(
	ctx context.Context,
	key string,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND status <> 'canceled'", key).
		First(&ap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *BookingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *BookingGormRepository) ListClientAppointments(
	ctx context.Context,
	clientID uint,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Barber").
		Where("client_id = ?", clientID).
		Order("start_time DESC").
		Find(&aps).Error; err != nil {
		return nil, err
	}
	return aps, nil
}

func (r *BookingGormRepository) ListBarberAppointments(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, start, end,
		).
		Order("start_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}
	return aps, nil
}

// --------------------------------------------------
// Conflict / duplicate guards
// --------------------------------------------------

func (r *BookingGormRepository) AssertSlotFree(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) error {

	now := time.Now().UTC()

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"barber_id = ? AND status IN ? AND start_time < ? AND end_time > ? AND end_time > ?",
			barberID, domain.LiveStatuses(), end, start, now,
		)

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return httperr.ErrBusiness("slot_conflict")
	}
	return nil
}

func (r *BookingGormRepository) HasClientBookingAt(
	ctx context.Context,
	clientID uint,
	start time.Time,
	excludeID uint,
) (bool, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"client_id = ? AND start_time = ? AND status IN ?",
			clientID, start, domain.LiveStatuses(),
		)

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Entitlement history
// --------------------------------------------------

func (r *BookingGormRepository) ActiveSubscription(
	ctx context.Context,
	clientID uint,
) (*models.Subscription, error) {

	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("client_id = ? AND status IN ?", clientID, []string{"active", "trial"}).
		Order("id DESC").
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *BookingGormRepository) CountMembershipUsed(
	ctx context.Context,
	clientID uint,
	periodStart time.Time,
	periodEnd time.Time,
) (int, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"client_id = ? AND kind = 'membership_included' AND status IN ('booked', 'confirmed', 'completed') AND start_time >= ? AND start_time < ?",
			clientID, periodStart, periodEnd,
		).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *BookingGormRepository) HasNonCanceledKind(
	ctx context.Context,
	clientID uint,
	kind string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"client_id = ? AND kind = ? AND status <> 'canceled'",
			clientID, kind,
		).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingGormRepository) LatestCompletedTrial(
	ctx context.Context,
	clientID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where(
			"client_id = ? AND kind = 'trial_free' AND status = 'completed'",
			clientID,
		).
		Order("completed_at DESC").
		First(&ap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

// --------------------------------------------------
// Payment intents
// --------------------------------------------------

func (r *BookingGormRepository) CreateIntent(
	ctx context.Context,
	it *models.PaymentIntent,
) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *BookingGormRepository) GetIntentByToken(
	ctx context.Context,
	token string,
) (*models.PaymentIntent, error) {

	var it models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&it).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *BookingGormRepository) UpdateIntent(
	ctx context.Context,
	it *models.PaymentIntent,
) error {
	return r.db.WithContext(ctx).Save(it).Error
}

// --------------------------------------------------
// Subscriptions / plans / payment records
// --------------------------------------------------

func (r *BookingGormRepository) GetSubscriptionByRef(
	ctx context.Context,
	ref string,
) (*models.Subscription, error) {

	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("gateway_ref = ?", ref).
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *BookingGormRepository) CreateSubscription(
	ctx context.Context,
	sub *models.Subscription,
) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *BookingGormRepository) UpdateSubscription(
	ctx context.Context,
	sub *models.Subscription,
) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *BookingGormRepository) GetPlan(
	ctx context.Context,
	id uint,
) (*models.Plan, error) {

	var p models.Plan
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) GetPlanByGatewayRef(
	ctx context.Context,
	ref string,
) (*models.Plan, error) {

	var p models.Plan
	err := r.db.WithContext(ctx).
		Where("gateway_price_ref = ?", ref).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) ListActivePlans(
	ctx context.Context,
) ([]models.Plan, error) {

	var plans []models.Plan
	if err := r.db.WithContext(ctx).
		Where("active = true").
		Order("price_cents ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *BookingGormRepository) CreatePaymentRecord(
	ctx context.Context,
	rec *models.PaymentRecord,
) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	barberID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ?", barberID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
