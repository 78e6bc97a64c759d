package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cutclub/cutclub-backend/internal/audit"
	"github.com/cutclub/cutclub-backend/internal/calendar"
	"github.com/cutclub/cutclub-backend/internal/config"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/dto"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/httpresp"
	"github.com/cutclub/cutclub-backend/internal/metrics"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/notify"
	usecase "github.com/cutclub/cutclub-backend/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create     *usecase.CreateBooking
	reschedule *usecase.RescheduleBooking
	cancel     *usecase.CancelBooking

	repo   domain.Repository
	audit  *audit.Logger
	mailer *notify.Mailer
	push   *notify.Publisher
	config *config.Config
}

func NewBookingHandler(
	create *usecase.CreateBooking,
	reschedule *usecase.RescheduleBooking,
	cancel *usecase.CancelBooking,
	repo domain.Repository,
	auditLog *audit.Logger,
	mailer *notify.Mailer,
	push *notify.Publisher,
	cfg *config.Config,
) *BookingHandler {
	return &BookingHandler{
		create:     create,
		reschedule: reschedule,
		cancel:     cancel,
		repo:       repo,
		audit:      auditLog,
		mailer:     mailer,
		push:       push,
		config:     cfg,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	BarberID uint   `json:"barber_id" binding:"required"`
	Date     string `json:"date" binding:"required"` // YYYY-MM-DD
	Time     string `json:"time" binding:"required"` // HH:mm

	// Tier the client saw when the screen rendered; the booking is rejected
	// when it no longer matches.
	Tier string `json:"tier" binding:"required"`

	Channel string `json:"channel"`
	Address string `json:"address"`
	Notes   string `json:"notes"`

	PaymentIntentToken string `json:"payment_intent_token"`
}

type RescheduleRequest struct {
	BarberID uint   `json:"barber_id"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`

	Channel string `json:"channel"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	res, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		ClientID:     clientID,
		BarberID:     req.BarberID,
		Date:         req.Date,
		Time:         req.Time,
		Channel:      req.Channel,
		Address:      req.Address,
		Notes:        req.Notes,
		ExpectedTier: req.Tier,
		IntentToken:  req.PaymentIntentToken,
	})
	if err != nil {
		if httperr.IsBusiness(err, "slot_conflict") || httperr.IsBusiness(err, "duplicate_booking") {
			metrics.RecordBookingConflict()

			h.audit.Log(
				&clientID,
				"appointment_conflict",
				"appointment",
				nil,
				map[string]any{
					"barber_id": req.BarberID,
					"date":      req.Date,
					"time":      req.Time,
				},
			)
		}
		if writeBusiness(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_create_appointment", "Erro ao criar agendamento.")
		return
	}

	if res.Replayed {
		c.JSON(http.StatusOK, res.Appointment)
		return
	}

	metrics.RecordBooking(res.Appointment.Kind, res.Appointment.Channel)
	if res.Appointment.PaymentStatus != string(domain.PaymentWaived) {
		metrics.RecordPointsDebit(h.config.BookingPointCost)
	}

	h.notifyBooked(c, res.Appointment.ID, clientID)

	c.JSON(http.StatusCreated, res.Appointment)
}

// notifyBooked re-reads the appointment with its relations and fires the
// confirmation email and the realtime push. Nothing here can fail the
// request; the booking is already committed.
func (h *BookingHandler) notifyBooked(c *gin.Context, appointmentID, clientID uint) {
	full, err := h.repo.GetAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		return
	}

	h.mailer.BookingConfirmed(
		c.Request.Context(),
		full.Client.Email,
		full.Client.Name,
		full.Barber.Name,
		full.StartTime,
	)

	h.push.Publish(c.Request.Context(), notify.PushEvent{
		UserID:  clientID,
		Kind:    "booking_created",
		Message: fmt.Sprintf("Corte marcado para %s", full.StartTime.Format("02/01 15:04")),
		RefID:   full.ID,
	})
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *BookingHandler) Reschedule(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := pathID(c)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), usecase.RescheduleBookingInput{
		ClientID:      clientID,
		AppointmentID: id,
		BarberID:      req.BarberID,
		Date:          req.Date,
		Time:          req.Time,
		Channel:       req.Channel,
		Address:       req.Address,
		Notes:         req.Notes,
	})
	if err != nil {
		if httperr.IsBusiness(err, "slot_conflict") {
			metrics.RecordBookingConflict()
		}
		if writeBusiness(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_reschedule", "Erro ao remarcar agendamento.")
		return
	}

	h.notifyBooked(c, ap.ID, clientID)

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// CANCEL
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.GetString(middleware.ContextUserRole)

	id, err := pathID(c)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancel.Execute(c.Request.Context(), userID, role, id, req.Reason)
	if err != nil {
		if writeBusiness(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_cancel", "Erro ao cancelar agendamento.")
		return
	}

	metrics.RecordBookingCancellation()

	h.mailer.BookingCanceled(
		c.Request.Context(),
		ap.Client.Email,
		ap.Client.Name,
		ap.StartTime,
	)

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// LIST (CLIENTE)
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	aps, err := h.repo.ListClientAppointments(c.Request.Context(), clientID)
	if err != nil {
		httperr.Internal(c, "failed_to_list", "Erro ao listar agendamentos.")
		return
	}

	out := make([]dto.AppointmentListDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, dto.FromAppointment(ap))
	}

	httpresp.List(c, out)
}

// ======================================================
// CALENDAR FILE (.ics)
// ======================================================

func (h *BookingHandler) CalendarICS(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := pathID(c)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	ap, err := h.repo.GetAppointment(c.Request.Context(), id)
	if err != nil || ap.ClientID != clientID {
		httperr.NotFound(c, "appointment_not_found", "Agendamento não encontrado.")
		return
	}

	ics, err := calendar.AppointmentICS(ap, h.config.ShopAddress)
	if err != nil {
		httperr.Internal(c, "failed_to_build_calendar", "Erro ao gerar arquivo de calendário.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="corte-%d.ics"`, ap.ID))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", ics)
}

// ======================================================
// HELPERS
// ======================================================

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}
