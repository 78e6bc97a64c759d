package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cutclub/cutclub-backend/internal/gateway"
	"github.com/cutclub/cutclub-backend/internal/metrics"
	"github.com/cutclub/cutclub-backend/internal/usecase/reconcile"
)

// WebhookHandler receives Mercado Pago notifications. The contract with the
// gateway: 200 acknowledges (no redelivery), anything else redelivers. We
// acknowledge everything we understood, even events we drop, and fail only
// when our side broke and a retry can help.
type WebhookHandler struct {
	gateway    *gateway.MercadoPago
	reconciler *reconcile.Reconciler
	log        *slog.Logger
}

func NewWebhookHandler(
	gw *gateway.MercadoPago,
	rc *reconcile.Reconciler,
	log *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		gateway:    gw,
		reconciler: rc,
		log:        log,
	}
}

type mpNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	var body mpNotification
	_ = c.ShouldBindJSON(&body)

	typ := body.Type
	id := body.Data.ID

	// Legacy IPN notifications arrive as query parameters.
	if typ == "" {
		typ = c.Query("type")
	}
	if typ == "" {
		typ = c.Query("topic")
	}
	if id == "" {
		id = c.Query("data.id")
	}
	if id == "" {
		id = c.Query("id")
	}

	if typ == "" || id == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ev, err := h.gateway.TranslateNotification(c.Request.Context(), typ, id)
	if err != nil {
		// Could not fetch the resource behind the notification; let the
		// gateway redeliver once it is reachable again.
		h.log.Error("webhook translate failed", "type", typ, "id", id, "err", err)
		metrics.RecordWebhookEvent(typ, "translate_error")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "retry"})
		return
	}
	if ev == nil {
		metrics.RecordWebhookEvent(typ, "ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.reconciler.HandleEvent(c.Request.Context(), *ev); err != nil {
		h.log.Error("webhook reconcile failed",
			"event", string(ev.Type), "ref", ev.CheckoutRef, "err", err)
		metrics.RecordWebhookEvent(string(ev.Type), "error")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "retry"})
		return
	}

	metrics.RecordWebhookEvent(string(ev.Type), "ok")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
