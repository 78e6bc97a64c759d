package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/storage"
	usecase "github.com/cutclub/cutclub-backend/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated surface: the plan catalog, the
// barber roster and slot availability for the booking screen.
type PublicHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	availability *usecase.GetAvailability
	photos       *storage.PhotoStore
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	availability *usecase.GetAvailability,
	photos *storage.PhotoStore,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		repo:         repo,
		availability: availability,
		photos:       photos,
	}
}

////////////////////////////////////////////////////////
// PLANS
////////////////////////////////////////////////////////

func (h *PublicHandler) ListPlans(c *gin.Context) {
	plans, err := h.repo.ListActivePlans(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "failed_to_list_plans", "Erro ao listar planos.")
		return
	}

	c.JSON(http.StatusOK, plans)
}

////////////////////////////////////////////////////////
// BARBERS
////////////////////////////////////////////////////////

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	var barbers []models.User
	if err := h.db.
		Where("role = ?", "barber").
		Order("name ASC").
		Find(&barbers).Error; err != nil {

		httperr.Internal(c, "failed_to_list_barbers", "Erro ao listar barbeiros.")
		return
	}

	out := make([]gin.H, 0, len(barbers))
	for _, b := range barbers {
		item := gin.H{
			"id":   b.ID,
			"name": b.Name,
		}
		if b.PhotoURL != "" && h.photos != nil {
			if url, err := h.photos.URL(c.Request.Context(), b.PhotoURL); err == nil {
				item["photo_url"] = url
			}
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	barberIDStr := c.Param("id")
	dateStr := c.Query("date")

	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	barberID, err := strconv.ParseUint(barberIDStr, 10, 64)
	if err != nil || barberID == 0 {
		httperr.BadRequest(c, "invalid_barber_id", "Barbeiro inválido.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), uint(barberID), dateStr)
	if err != nil {
		if writeBusiness(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_get_availability", "Erro ao consultar horários.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}
