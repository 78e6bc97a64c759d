package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/domain/points"
	"github.com/cutclub/cutclub-backend/internal/gateway"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/metrics"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

// ======================================================
// PARAMS
// ======================================================

type Params struct {
	Pricing     domain.Pricing
	SlotMinutes int
	Timezone    string

	SignupBonus  int64
	RenewalBonus int64
}

// ======================================================
// USE CASE
// ======================================================

// Reconciler applies gateway events to the local store. Every handler is
// idempotent: the gateway delivers at least once, and redelivery must not
// duplicate appointments, payment records or ledger credits.
//
// Unresolvable events (unknown plan, malformed metadata) are logged and
// acknowledged so they never trigger a gateway retry storm; store failures
// are returned so the gateway redelivers.
type Reconciler struct {
	repo     domain.Repository
	log      *slog.Logger
	notifier Notifier
	params   Params
}

// Notifier announces an activated subscription to the client. A nil
// notifier is a no-op; notification failures never fail reconciliation.
type Notifier interface {
	SubscriptionStarted(ctx context.Context, to, name, plan string)
}

func NewReconciler(
	repo domain.Repository,
	log *slog.Logger,
	notifier Notifier,
	params Params,
) *Reconciler {
	return &Reconciler{
		repo:     repo,
		log:      log,
		notifier: notifier,
		params:   params,
	}
}

// ======================================================
// DISPATCH
// ======================================================

func (uc *Reconciler) HandleEvent(ctx context.Context, ev gateway.Event) error {
	switch ev.Type {
	case gateway.EventCheckoutCompleted:
		if ev.Mode == gateway.ModeSubscription {
			return uc.subscriptionCheckout(ctx, ev)
		}
		return uc.oneTimeCheckout(ctx, ev)

	case gateway.EventInvoicePaid:
		return uc.invoicePaid(ctx, ev)

	case gateway.EventInvoiceFailed:
		return uc.invoiceFailed(ctx, ev)

	case gateway.EventSubscriptionUpdated, gateway.EventSubscriptionCanceled:
		return uc.subscriptionStatus(ctx, ev)

	default:
		uc.log.Warn("gateway event ignored", "type", string(ev.Type))
		return nil
	}
}

// ======================================================
// CHECKOUT: ONE-TIME BOOKING
// ======================================================

// oneTimeCheckout books the appointment paid for at the gateway. Payment is
// already settled, so the synchronous booking gates don't apply; price and
// kind are re-derived from the declared metadata, never from the amount the
// gateway reports.
func (uc *Reconciler) oneTimeCheckout(ctx context.Context, ev gateway.Event) error {
	email := ev.PayerEmail
	if email == "" {
		email = ev.Metadata["email"]
	}
	if email == "" {
		uc.log.Error("checkout event without payer email, dropping", "ref", ev.CheckoutRef)
		return nil
	}

	kind := ev.Metadata["kind"]
	price, ok := uc.priceForKind(kind)
	if !ok {
		uc.log.Error("checkout event with unknown kind, dropping",
			"ref", ev.CheckoutRef, "kind", kind)
		return nil
	}

	barberID := parseID(ev.Metadata["barber_id"])
	if barberID == 0 {
		uc.log.Error("checkout event without barber, dropping", "ref", ev.CheckoutRef)
		return nil
	}

	loc := timezone.Location(uc.params.Timezone)
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		ev.Metadata["date"]+" "+ev.Metadata["time"],
		loc,
	)
	if err != nil {
		uc.log.Error("checkout event with invalid slot, dropping", "ref", ev.CheckoutRef)
		return nil
	}
	end := start.Add(time.Duration(uc.params.SlotMinutes) * time.Minute)

	channel := ev.Metadata["channel"]
	if !domain.ValidChannel(channel) {
		channel = string(domain.ChannelShop)
	}

	return uc.repo.WithTx(ctx, func(tx domain.Repository) error {

		client, err := getOrCreateUser(ctx, tx, email, ev.Metadata["name"])
		if err != nil {
			return err
		}

		// Redelivery guard: the key is derived from the checkout reference,
		// so a second delivery finds the first appointment.
		key := domain.KeyFromCheckoutRef(ev.CheckoutRef)

		prior, err := tx.GetAppointmentByKey(ctx, key)
		if err != nil {
			return err
		}
		if prior != nil {
			return nil
		}

		if err := tx.AssertSlotFree(ctx, barberID, start, end, 0); err != nil {
			if _, busy := httperr.CodeOf(err); busy {
				// The slot was taken while the client paid. The money is
				// settled; support resolves it out of band.
				uc.log.Error("paid booking lost its slot",
					"ref", ev.CheckoutRef, "barber_id", barberID, "start", start)
				return nil
			}
			return err
		}

		ap := &models.Appointment{
			ClientID:       client.ID,
			BarberID:       barberID,
			StartTime:      start,
			EndTime:        end,
			Status:         string(domain.InitialStatus()),
			Channel:        channel,
			Kind:           kind,
			PriceCents:     price,
			PaymentStatus:  string(domain.PaymentPaid),
			PaymentChannel: string(domain.PayViaGateway),
			IdempotencyKey: key,
			Address:        ev.Metadata["address"],
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			if httperr.IsUniqueViolation(err) || httperr.IsExclusionConflict(err) {
				uc.log.Error("paid booking lost insert race, dropping",
					"ref", ev.CheckoutRef)
				return nil
			}
			return err
		}

		rec := &models.PaymentRecord{
			ClientID:    client.ID,
			AmountCents: price,
			Currency:    currencyOr(ev.Currency),
			GatewayRef:  ev.PaymentRef,
			Kind:        "one_time_booking",
		}
		if err := tx.CreatePaymentRecord(ctx, rec); err != nil && !httperr.IsUniqueViolation(err) {
			return err
		}

		return nil
	})
}

// ======================================================
// CHECKOUT: SUBSCRIPTION SIGNUP
// ======================================================

func (uc *Reconciler) subscriptionCheckout(ctx context.Context, ev gateway.Event) error {
	if ev.SubscriptionRef == "" {
		uc.log.Error("subscription checkout without reference, dropping")
		return nil
	}

	unresolvable := false

	// Captured for the post-commit notification; only a first delivery
	// that actually created the row announces anything.
	var created bool
	var clientEmail, clientName, planName string

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {

		plan, err := uc.resolvePlan(ctx, tx, ev)
		if err != nil {
			return err
		}
		if plan == nil {
			unresolvable = true
			return nil
		}

		client, err := uc.resolveUser(ctx, tx, ev)
		if err != nil {
			return err
		}
		if client == nil {
			unresolvable = true
			return nil
		}

		now := timezone.NowIn(uc.params.Timezone)

		sub, err := tx.GetSubscriptionByRef(ctx, ev.SubscriptionRef)
		if err != nil {
			return err
		}

		if sub == nil {
			sub = &models.Subscription{
				ClientID:           client.ID,
				PlanID:             plan.ID,
				GatewayRef:         ev.SubscriptionRef,
				Status:             mapGatewayStatus(ev.GatewayStatus, string(domain.SubActive)),
				CurrentPeriodStart: now,
				NextRenewalAt:      renewalOr(ev.NextRenewalAt, now.AddDate(0, 1, 0)),
			}
			if err := tx.CreateSubscription(ctx, sub); err != nil {
				return err
			}
			created = true
			clientEmail, clientName, planName = client.Email, client.Name, plan.Name
		} else {
			sub.PlanID = plan.ID
			sub.Status = mapGatewayStatus(ev.GatewayStatus, sub.Status)
			sub.NextRenewalAt = renewalOr(ev.NextRenewalAt, sub.NextRenewalAt)
			if err := tx.UpdateSubscription(ctx, sub); err != nil {
				return err
			}
		}

		if ev.PaymentRef != "" {
			rec := &models.PaymentRecord{
				ClientID:       client.ID,
				SubscriptionID: &sub.ID,
				AmountCents:    ev.AmountCents,
				Currency:       currencyOr(ev.Currency),
				GatewayRef:     ev.PaymentRef,
				Kind:           "subscription_signup",
			}
			if err := tx.CreatePaymentRecord(ctx, rec); err != nil && !httperr.IsUniqueViolation(err) {
				return err
			}
		}

		// Idempotent per subscription reference.
		return tx.Credit(
			ctx,
			client.ID,
			uc.params.SignupBonus,
			points.ReasonSignupBonus,
			points.RefSubscription,
			ev.SubscriptionRef,
		)
	})

	if err != nil {
		return err
	}
	if unresolvable {
		uc.log.Error("subscription checkout unresolvable, dropping",
			"ref", ev.SubscriptionRef, "metadata", ev.Metadata)
		return nil
	}

	if created {
		metrics.RecordSubscription(planName)
		if uc.notifier != nil {
			uc.notifier.SubscriptionStarted(ctx, clientEmail, clientName, planName)
		}
	}
	return nil
}

// ======================================================
// INVOICES
// ======================================================

func (uc *Reconciler) invoicePaid(ctx context.Context, ev gateway.Event) error {
	return uc.repo.WithTx(ctx, func(tx domain.Repository) error {

		sub, err := tx.GetSubscriptionByRef(ctx, ev.SubscriptionRef)
		if err != nil {
			return err
		}
		if sub == nil {
			uc.log.Error("invoice for unknown subscription, dropping",
				"ref", ev.SubscriptionRef)
			return nil
		}

		now := timezone.NowIn(uc.params.Timezone)

		sub.Status = string(domain.SubActive)
		sub.CurrentPeriodStart = now
		sub.NextRenewalAt = renewalOr(ev.NextRenewalAt, now.AddDate(0, 1, 0))

		if err := tx.UpdateSubscription(ctx, sub); err != nil {
			return err
		}

		if ev.PaymentRef != "" {
			rec := &models.PaymentRecord{
				ClientID:       sub.ClientID,
				SubscriptionID: &sub.ID,
				AmountCents:    ev.AmountCents,
				Currency:       currencyOr(ev.Currency),
				GatewayRef:     ev.PaymentRef,
				Kind:           "subscription_renewal",
			}
			if err := tx.CreatePaymentRecord(ctx, rec); err != nil && !httperr.IsUniqueViolation(err) {
				return err
			}
		}

		// Idempotent per invoice reference.
		return tx.Credit(
			ctx,
			sub.ClientID,
			uc.params.RenewalBonus,
			points.ReasonRenewalBonus,
			points.RefPayment,
			ev.PaymentRef,
		)
	})
}

func (uc *Reconciler) invoiceFailed(ctx context.Context, ev gateway.Event) error {
	sub, err := uc.repo.GetSubscriptionByRef(ctx, ev.SubscriptionRef)
	if err != nil {
		return err
	}
	if sub == nil {
		uc.log.Error("failed invoice for unknown subscription, dropping",
			"ref", ev.SubscriptionRef)
		return nil
	}

	sub.Status = string(domain.SubPastDue)
	return uc.repo.UpdateSubscription(ctx, sub)
}

// ======================================================
// SUBSCRIPTION LIFECYCLE
// ======================================================

func (uc *Reconciler) subscriptionStatus(ctx context.Context, ev gateway.Event) error {
	sub, err := uc.repo.GetSubscriptionByRef(ctx, ev.SubscriptionRef)
	if err != nil {
		return err
	}
	if sub == nil {
		uc.log.Error("status event for unknown subscription, dropping",
			"ref", ev.SubscriptionRef)
		return nil
	}

	if ev.Type == gateway.EventSubscriptionCanceled {
		sub.Status = string(domain.SubCanceled)
	} else {
		sub.Status = mapGatewayStatus(ev.GatewayStatus, sub.Status)
	}
	sub.NextRenewalAt = renewalOr(ev.NextRenewalAt, sub.NextRenewalAt)

	return uc.repo.UpdateSubscription(ctx, sub)
}

// ======================================================
// HELPERS
// ======================================================

func (uc *Reconciler) priceForKind(kind string) (int64, bool) {
	switch kind {
	case string(domain.KindDiscountSecond):
		return uc.params.Pricing.SecondCutCents, true
	case string(domain.KindOneOff):
		return uc.params.Pricing.OneOffCents, true
	default:
		return 0, false
	}
}

// resolveUser follows the fallback chain: metadata id, then email, then a
// fresh account. Nil without error means unresolvable.
func (uc *Reconciler) resolveUser(
	ctx context.Context,
	tx domain.Repository,
	ev gateway.Event,
) (*models.User, error) {

	if id := parseID(ev.Metadata["user_id"]); id != 0 {
		u, err := tx.GetUser(ctx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	email := ev.PayerEmail
	if email == "" {
		email = ev.Metadata["email"]
	}
	if email == "" {
		return nil, nil
	}

	return getOrCreateUser(ctx, tx, email, ev.Metadata["name"])
}

// resolvePlan tries the metadata id first, then the gateway price reference.
// Nil without error means no plan matched.
func (uc *Reconciler) resolvePlan(
	ctx context.Context,
	tx domain.Repository,
	ev gateway.Event,
) (*models.Plan, error) {

	if id := parseID(ev.Metadata["plan_id"]); id != 0 {
		p, err := tx.GetPlan(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if ref := ev.Metadata["price_ref"]; ref != "" {
		return tx.GetPlanByGatewayRef(ctx, ref)
	}

	return nil, nil
}

func getOrCreateUser(
	ctx context.Context,
	tx domain.Repository,
	email string,
	name string,
) (*models.User, error) {

	u, err := tx.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = email
	}

	// Conta criada pelo gateway; o cliente define a senha depois.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u = &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "client",
	}
	if err := tx.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// mapGatewayStatus translates the provider's status vocabulary into ours.
func mapGatewayStatus(s string, fallback string) string {
	switch s {
	case "trialing", "pending":
		return string(domain.SubTrial)
	case "active", "authorized":
		return string(domain.SubActive)
	case "past_due", "paused":
		return string(domain.SubPastDue)
	case "canceled", "cancelled", "unpaid":
		return string(domain.SubCanceled)
	default:
		return fallback
	}
}

func renewalOr(t time.Time, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

func currencyOr(c string) string {
	if c == "" {
		return "BRL"
	}
	return c
}

func parseID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
