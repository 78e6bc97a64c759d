package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/audit"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/models"
)

type WorkingHoursHandler struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewWorkingHoursHandler(db *gorm.DB, auditLog *audit.Logger) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db, audit: auditLog}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var hours []models.WorkingHours
	if err := h.db.
		Where("barber_id = ?", barberID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_working_hours"})
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Update replaces the barber's whole week. Replacing instead of patching
// keeps the payload and the table in lockstep.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	for _, d := range req.Days {
		if !validHM(d.StartTime) || !validHM(d.EndTime) ||
			!validHM(d.LunchStart) || !validHM(d.LunchEnd) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_time_format",
				"message": "Horários devem estar no formato HH:MM.",
			})
			return
		}
		if d.Active && (d.StartTime == "" || d.EndTime == "") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "missing_working_window",
				"message": "Dias ativos precisam de horário de início e fim.",
			})
			return
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).
			Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}

		var toCreate []models.WorkingHours
		for _, d := range req.Days {
			toCreate = append(toCreate, models.WorkingHours{
				BarberID:   barberID,
				Weekday:    d.Weekday,
				Active:     d.Active,
				StartTime:  d.StartTime,
				EndTime:    d.EndTime,
				LunchStart: d.LunchStart,
				LunchEnd:   d.LunchEnd,
			})
		}

		if len(toCreate) > 0 {
			if err := tx.Create(&toCreate).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_working_hours"})
		return
	}

	h.audit.Log(&barberID, "working_hours_updated", "working_hours", nil, gin.H{
		"days": len(req.Days),
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
