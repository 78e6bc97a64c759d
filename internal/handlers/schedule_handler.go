package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/config"
	"github.com/cutclub/cutclub-backend/internal/dto"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/timezone"
	usecase "github.com/cutclub/cutclub-backend/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

// ScheduleHandler is the barber-facing agenda: list the day, move
// appointments through their lifecycle.
type ScheduleHandler struct {
	db *gorm.DB

	confirm  *usecase.ConfirmAppointment
	complete *usecase.CompleteAppointment
	noShow   *usecase.MarkNoShow

	config *config.Config
}

func NewScheduleHandler(
	db *gorm.DB,
	confirm *usecase.ConfirmAppointment,
	complete *usecase.CompleteAppointment,
	noShow *usecase.MarkNoShow,
	cfg *config.Config,
) *ScheduleHandler {
	return &ScheduleHandler{
		db:       db,
		confirm:  confirm,
		complete: complete,
		noShow:   noShow,
		config:   cfg,
	}
}

// ======================================================
// LIST BY DATE
// ======================================================

func (h *ScheduleHandler) ListByDate(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	date, err := parseDateIn(h.config.ShopTimezone, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24 * time.Hour)

	var aps []models.Appointment
	h.db.
		Preload("Client").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, start, end,
		).
		Order("start_time ASC").
		Find(&aps)

	out := make([]dto.AgendaItemDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, dto.ToAgendaItem(ap))
	}

	c.JSON(200, out)
}

// ======================================================
// LIST BY MONTH
// ======================================================

func (h *ScheduleHandler) ListByMonth(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Ano e mês são obrigatórios.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	loc := timezone.Location(h.config.ShopTimezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	var aps []models.Appointment
	h.db.
		Preload("Client").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, start, end,
		).
		Order("start_time ASC").
		Find(&aps)

	out := make([]dto.AgendaItemDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, dto.ToAgendaItem(ap))
	}

	c.JSON(200, gin.H{
		"year":         year,
		"month":        month,
		"appointments": out,
	})
}

// ======================================================
// LIFECYCLE TRANSITIONS
// ======================================================

func (h *ScheduleHandler) Confirm(c *gin.Context) {
	h.transition(c, func(operatorID uint, role string, id uint) (*models.Appointment, error) {
		return h.confirm.Execute(c.Request.Context(), operatorID, role, id)
	})
}

func (h *ScheduleHandler) Complete(c *gin.Context) {
	h.transition(c, func(operatorID uint, role string, id uint) (*models.Appointment, error) {
		return h.complete.Execute(c.Request.Context(), operatorID, role, id)
	})
}

func (h *ScheduleHandler) NoShow(c *gin.Context) {
	h.transition(c, func(operatorID uint, role string, id uint) (*models.Appointment, error) {
		return h.noShow.Execute(c.Request.Context(), operatorID, role, id)
	})
}

func (h *ScheduleHandler) transition(
	c *gin.Context,
	run func(operatorID uint, role string, id uint) (*models.Appointment, error),
) {
	operatorID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.GetString(middleware.ContextUserRole)

	id, err := pathID(c)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	ap, err := run(operatorID, role, id)
	if err != nil {
		if writeBusiness(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_update_appointment", "Erro ao atualizar agendamento.")
		return
	}

	c.JSON(http.StatusOK, ap)
}
