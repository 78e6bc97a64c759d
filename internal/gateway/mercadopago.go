package gateway

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preapproval"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// MercadoPago adapts the provider SDK to the neutral Event model. The SDK
// clients are interfaces, so tests can stub the fetch side.
type MercadoPago struct {
	payments     payment.Client
	preferences  preference.Client
	preapprovals preapproval.Client

	baseURL  string
	currency string
}

func NewMercadoPago(accessToken, baseURL string) (*MercadoPago, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &MercadoPago{
		payments:     payment.NewClient(cfg),
		preferences:  preference.NewClient(cfg),
		preapprovals: preapproval.NewClient(cfg),
		baseURL:      baseURL,
		currency:     "BRL",
	}, nil
}

// ===============================
// Checkout creation
// ===============================

type OneTimeCheckoutInput struct {
	Title       string
	AmountCents int64
	PayerEmail  string

	// Booking parameters echoed back by the gateway inside the payment
	// metadata; reconciliation rebuilds the appointment from them.
	Metadata map[string]string
}

// CreateOneTimeCheckout opens a hosted one-time payment and returns the
// reference and the redirect URL.
func (g *MercadoPago) CreateOneTimeCheckout(
	ctx context.Context,
	in OneTimeCheckoutInput,
) (ref string, initPoint string, err error) {

	ref = uuid.NewString()

	md := map[string]any{"mode": string(ModeOneTime)}
	for k, v := range in.Metadata {
		md[k] = v
	}

	resp, err := g.preferences.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:      in.Title,
				Quantity:   1,
				CurrencyID: g.currency,
				UnitPrice:  centsToUnits(in.AmountCents),
			},
		},
		ExternalReference: ref,
		NotificationURL:   g.baseURL + "/api/webhooks/mercadopago",
		Metadata:          md,
		BackURLs: &preference.BackURLsRequest{
			Success: g.baseURL + "/checkout/success",
			Failure: g.baseURL + "/checkout/failure",
		},
	})
	if err != nil {
		return "", "", err
	}

	return ref, resp.InitPoint, nil
}

type SubscriptionCheckoutInput struct {
	UserID      uint
	PlanID      uint
	PlanName    string
	AmountCents int64
	PayerEmail  string
}

// CreateSubscriptionCheckout opens a hosted recurring signup. The checkout
// identity travels in the external reference because preapprovals carry no
// metadata.
func (g *MercadoPago) CreateSubscriptionCheckout(
	ctx context.Context,
	in SubscriptionCheckoutInput,
) (ref string, initPoint string, err error) {

	ref = encodeSubRef(in.UserID, in.PlanID, in.PayerEmail)

	resp, err := g.preapprovals.Create(ctx, preapproval.Request{
		AutoRecurring: &preapproval.AutoRecurringRequest{
			Frequency:         1,
			FrequencyType:     "months",
			TransactionAmount: centsToUnits(in.AmountCents),
			CurrencyID:        g.currency,
		},
		BackURL:           g.baseURL + "/checkout/success",
		ExternalReference: ref,
		PayerEmail:        in.PayerEmail,
		Reason:            in.PlanName,
	})
	if err != nil {
		return "", "", err
	}

	return ref, resp.InitPoint, nil
}

// ===============================
// Notification translation
// ===============================

// TranslateNotification resolves a webhook notification into a neutral
// Event. (nil, nil) means the notification is understood but irrelevant
// (unhandled type, payment still pending) and should be acknowledged.
func (g *MercadoPago) TranslateNotification(
	ctx context.Context,
	typ string,
	id string,
) (*Event, error) {

	switch typ {
	case "payment":
		pid, err := strconv.Atoi(id)
		if err != nil {
			return nil, nil
		}
		p, err := g.payments.Get(ctx, pid)
		if err != nil {
			return nil, err
		}
		return g.paymentEvent(p), nil

	case "subscription_preapproval":
		pa, err := g.preapprovals.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return g.preapprovalEvent(pa), nil

	default:
		return nil, nil
	}
}

func (g *MercadoPago) paymentEvent(p *payment.Response) *Event {
	md := flattenMetadata(p.Metadata)

	// Recurring charges reference their preapproval; treat them as invoices.
	if subRef, ok := md["preapproval_id"]; ok && subRef != "" {
		ev := &Event{
			SubscriptionRef: subRef,
			PaymentRef:      fmt.Sprint(p.ID),
			AmountCents:     unitsToCents(p.TransactionAmount),
			Currency:        g.currency,
		}
		switch p.Status {
		case "approved":
			ev.Type = EventInvoicePaid
		case "rejected", "cancelled":
			ev.Type = EventInvoiceFailed
		default:
			return nil
		}
		return ev
	}

	if md["mode"] == string(ModeOneTime) && p.Status == "approved" {
		return &Event{
			Type:        EventCheckoutCompleted,
			Mode:        ModeOneTime,
			CheckoutRef: p.ExternalReference,
			PaymentRef:  fmt.Sprint(p.ID),
			AmountCents: unitsToCents(p.TransactionAmount),
			Currency:    g.currency,
			PayerEmail:  md["email"],
			Metadata:    md,
		}
	}

	return nil
}

func (g *MercadoPago) preapprovalEvent(pa *preapproval.Response) *Event {
	ev := &Event{
		SubscriptionRef: pa.ID,
		CheckoutRef:     pa.ExternalReference,
		GatewayStatus:   pa.Status,
		NextRenewalAt:   pa.NextPaymentDate,
		AmountCents:     unitsToCents(pa.AutoRecurring.TransactionAmount),
		Currency:        g.currency,
		Metadata:        decodeSubRef(pa.ExternalReference),
	}
	ev.PayerEmail = ev.Metadata["email"]

	switch pa.Status {
	case "authorized":
		ev.Type = EventCheckoutCompleted
		ev.Mode = ModeSubscription
	case "cancelled":
		ev.Type = EventSubscriptionCanceled
	default:
		ev.Type = EventSubscriptionUpdated
	}

	return ev
}

// ===============================
// Helpers
// ===============================

func centsToUnits(c int64) float64 {
	return float64(c) / 100
}

func unitsToCents(u float64) int64 {
	return int64(math.Round(u * 100))
}

// encodeSubRef packs user, plan and email into the external reference as
// k=v pairs plus a nonce so each checkout is unique.
func encodeSubRef(userID, planID uint, email string) string {
	nonce := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("u=%d;p=%d;e=%s;n=%s", userID, planID, email, nonce)
}

func decodeSubRef(ref string) map[string]string {
	md := map[string]string{}
	for _, pair := range strings.Split(ref, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch k {
		case "u":
			md["user_id"] = v
		case "p":
			md["plan_id"] = v
		case "e":
			md["email"] = v
		}
	}
	return md
}

func flattenMetadata(raw map[string]any) map[string]string {
	md := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			md[k] = t
		case float64:
			md[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			md[k] = fmt.Sprint(v)
		}
	}
	return md
}
