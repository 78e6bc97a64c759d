package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cutclub/cutclub-backend/internal/audit"
	"github.com/cutclub/cutclub-backend/internal/config"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/gateway"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

// CheckoutHandler owns everything that turns money into bookings: cash
// intents confirmed at the counter, hosted one-time checkouts and
// subscription signups.
type CheckoutHandler struct {
	repo    domain.Repository
	gateway *gateway.MercadoPago
	audit   *audit.Logger
	config  *config.Config
}

func NewCheckoutHandler(
	repo domain.Repository,
	gw *gateway.MercadoPago,
	auditLog *audit.Logger,
	cfg *config.Config,
) *CheckoutHandler {
	return &CheckoutHandler{
		repo:    repo,
		gateway: gw,
		audit:   auditLog,
		config:  cfg,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateIntentRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,min=1"`
}

type CheckoutRequest struct {
	BarberID uint   `json:"barber_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Channel  string `json:"channel"`
}

type SubscribeRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// ======================================================
// CASH INTENTS
// ======================================================

func (h *CheckoutHandler) CreateIntent(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	intent := models.PaymentIntent{
		Token:       uuid.NewString(),
		ClientID:    clientID,
		AmountCents: req.AmountCents,
		Status:      "pending",
		ExpiresAt:   time.Now().Add(time.Duration(h.config.IntentTTLMinutes) * time.Minute),
	}

	if err := h.repo.CreateIntent(c.Request.Context(), &intent); err != nil {
		httperr.Internal(c, "failed_to_create_intent", "Erro ao registrar pagamento.")
		return
	}

	c.JSON(http.StatusCreated, intent)
}

// ConfirmIntent is the staff action: the client showed up and paid at the
// counter, so the pending intent becomes usable by a booking.
func (h *CheckoutHandler) ConfirmIntent(c *gin.Context) {
	operatorID := c.MustGet(middleware.ContextUserID).(uint)
	token := c.Param("token")

	intent, err := h.repo.GetIntentByToken(c.Request.Context(), token)
	if err != nil {
		httperr.Internal(c, "failed_to_get_intent", "Erro ao consultar pagamento.")
		return
	}
	if intent == nil {
		httperr.NotFound(c, "intent_not_found", "Pagamento não encontrado.")
		return
	}

	if time.Now().After(intent.ExpiresAt) {
		httperr.BadRequest(c, "intent_expired", "Pagamento expirado.")
		return
	}

	if intent.Status != "pending" {
		httperr.Conflict(c, "state_conflict", "Pagamento já foi processado.")
		return
	}

	intent.Status = "confirmed"
	if err := h.repo.UpdateIntent(c.Request.Context(), intent); err != nil {
		httperr.Internal(c, "failed_to_confirm_intent", "Erro ao confirmar pagamento.")
		return
	}

	h.audit.Log(&operatorID, "intent_confirmed", "payment_intent", &intent.ID, gin.H{
		"amount_cents": intent.AmountCents,
		"client_id":    intent.ClientID,
	})

	c.JSON(http.StatusOK, intent)
}

// ======================================================
// ONE-TIME CHECKOUT
// ======================================================

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)
	email := c.GetString(middleware.ContextUserEmail)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var price int64
	var title string
	switch req.Kind {
	case string(domain.KindDiscountSecond):
		price = h.config.SecondCutPriceCents
		title = "Segundo corte com desconto - CutClub"
	case string(domain.KindOneOff):
		price = h.config.OneOffPriceCents
		title = "Corte avulso - CutClub"
	default:
		httperr.BadRequest(c, "invalid_kind", "Tipo de corte inválido para checkout.")
		return
	}

	// The slot has to parse now; a typo should fail here, not at webhook
	// time when the money is already captured.
	loc := timezone.Location(h.config.ShopTimezone)
	if _, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, loc); err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
		return
	}

	client, err := h.repo.GetUser(c.Request.Context(), clientID)
	if err != nil {
		httperr.Internal(c, "failed_to_get_user", "Erro ao consultar usuário.")
		return
	}

	ref, initPoint, err := h.gateway.CreateOneTimeCheckout(c.Request.Context(), gateway.OneTimeCheckoutInput{
		Title:       title,
		AmountCents: price,
		PayerEmail:  email,
		Metadata: map[string]string{
			"user_id":   fmt.Sprint(clientID),
			"email":     email,
			"name":      client.Name,
			"kind":      req.Kind,
			"barber_id": fmt.Sprint(req.BarberID),
			"date":      req.Date,
			"time":      req.Time,
			"channel":   req.Channel,
		},
	})
	if err != nil {
		httperr.Internal(c, "gateway_error", "Erro ao iniciar pagamento.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"checkout_ref": ref,
		"init_point":   initPoint,
	})
}

// ======================================================
// SUBSCRIPTION SIGNUP
// ======================================================

func (h *CheckoutHandler) Subscribe(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)
	email := c.GetString(middleware.ContextUserEmail)

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	plan, err := h.repo.GetPlan(c.Request.Context(), req.PlanID)
	if err != nil || plan == nil || !plan.Active {
		httperr.NotFound(c, "plan_not_found", "Plano não encontrado.")
		return
	}

	ref, initPoint, err := h.gateway.CreateSubscriptionCheckout(c.Request.Context(), gateway.SubscriptionCheckoutInput{
		UserID:      clientID,
		PlanID:      plan.ID,
		PlanName:    plan.Name,
		AmountCents: plan.PriceCents,
		PayerEmail:  email,
	})
	if err != nil {
		httperr.Internal(c, "gateway_error", "Erro ao iniciar assinatura.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"checkout_ref": ref,
		"init_point":   initPoint,
	})
}
