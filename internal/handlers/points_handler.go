package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	usecase "github.com/cutclub/cutclub-backend/internal/usecase/booking"
)

// PointsHandler exposes the client's loyalty state: ledger balance with
// recent movements, and the booking tier they currently qualify for.
type PointsHandler struct {
	repo        domain.Repository
	entitlement *usecase.ResolveEntitlement
}

func NewPointsHandler(
	repo domain.Repository,
	entitlement *usecase.ResolveEntitlement,
) *PointsHandler {
	return &PointsHandler{
		repo:        repo,
		entitlement: entitlement,
	}
}

func (h *PointsHandler) MyPoints(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)
	ctx := c.Request.Context()

	balance, err := h.repo.Balance(ctx, clientID)
	if err != nil {
		httperr.Internal(c, "failed_to_get_balance", "Erro ao consultar pontos.")
		return
	}

	entries, err := h.repo.Entries(ctx, clientID)
	if err != nil {
		httperr.Internal(c, "failed_to_get_entries", "Erro ao consultar extrato.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"entries": entries,
	})
}

func (h *PointsHandler) Entitlement(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	tier, err := h.entitlement.Execute(c.Request.Context(), clientID)
	if err != nil {
		httperr.Internal(c, "failed_to_resolve_entitlement", "Erro ao consultar condições.")
		return
	}

	c.JSON(http.StatusOK, tier)
}
