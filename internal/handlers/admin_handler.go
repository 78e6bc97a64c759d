package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/audit"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/domain/points"
	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/models"
	"github.com/cutclub/cutclub-backend/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// AdminHandler is the OWNER surface: staff accounts, the plan catalog,
// manual point adjustments and the audit trail.
type AdminHandler struct {
	db    *gorm.DB
	repo  domain.Repository
	audit *audit.Logger
}

func NewAdminHandler(db *gorm.DB, repo domain.Repository, auditLog *audit.Logger) *AdminHandler {
	return &AdminHandler{db: db, repo: repo, audit: auditLog}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBarberRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type AdjustPointsRequest struct {
	ClientID uint   `json:"client_id" binding:"required"`
	Delta    int64  `json:"delta" binding:"required"`
	Note     string `json:"note"`
}

type CreatePlanRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" binding:"required,min=1"`
	CutsPerMonth    int    `json:"cuts_per_month" binding:"min=0"`
	Channel         string `json:"channel"`
	GatewayPriceRef string `json:"gateway_price_ref"`
}

type UpdatePlanRequest struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	PriceCents      *int64  `json:"price_cents,omitempty"`
	CutsPerMonth    *int    `json:"cuts_per_month,omitempty"`
	GatewayPriceRef *string `json:"gateway_price_ref,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

// ======================================================
// BARBERS
// ======================================================

func (h *AdminHandler) CreateBarber(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := validators.NormalizeEmail(req.Email)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	barber := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         "barber",
	}

	if err := h.db.Create(&barber).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_barber"})
		return
	}

	h.audit.Log(&ownerID, "barber_created", "user", &barber.ID, gin.H{
		"email": barber.Email,
	})

	c.JSON(http.StatusCreated, userJSON(&barber))
}

// ======================================================
// CLIENTS
// ======================================================

func (h *AdminHandler) ListClients(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("role = ?", "client")

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.User
	if err := q.
		Order("created_at DESC").
		Limit(200).
		Find(&clients).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_clients"})
		return
	}

	out := make([]gin.H, 0, len(clients))
	for i := range clients {
		out = append(out, userJSON(&clients[i]))
	}

	c.JSON(http.StatusOK, out)
}

// ======================================================
// POINTS ADJUSTMENT
// ======================================================

func (h *AdminHandler) AdjustPoints(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.repo.GetUser(c.Request.Context(), req.ClientID); err != nil {
		httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
		return
	}

	// Each manual adjustment is its own ledger event, so the idempotency
	// triple gets a fresh reference.
	ref := uuid.NewString()

	var err error
	if req.Delta > 0 {
		err = h.repo.Credit(
			c.Request.Context(),
			req.ClientID, req.Delta,
			points.ReasonAdminAdjust, points.RefUser, ref,
		)
	} else {
		err = h.repo.WithTx(c.Request.Context(), func(tx domain.Repository) error {
			return tx.Debit(
				c.Request.Context(),
				req.ClientID, -req.Delta,
				points.ReasonAdminAdjust, points.RefUser, ref,
			)
		})
	}
	if err != nil {
		if writeBusiness(c, err) {
			return
		}
		httperr.Internal(c, "failed_to_adjust_points", "Erro ao ajustar pontos.")
		return
	}

	h.audit.Log(&ownerID, "points_adjusted", "user", &req.ClientID, gin.H{
		"delta": req.Delta,
		"note":  req.Note,
	})

	balance, _ := h.repo.Balance(c.Request.Context(), req.ClientID)

	c.JSON(http.StatusOK, gin.H{
		"client_id": req.ClientID,
		"balance":   balance,
	})
}

// ======================================================
// PLANS
// ======================================================

func (h *AdminHandler) CreatePlan(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	channel := req.Channel
	if channel == "" {
		channel = string(domain.ChannelShop)
	}
	if !domain.ValidChannel(channel) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_channel"})
		return
	}

	plan := models.Plan{
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		CutsPerMonth:    req.CutsPerMonth,
		Channel:         channel,
		GatewayPriceRef: req.GatewayPriceRef,
		Active:          true,
	}

	if err := h.db.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_plan"})
		return
	}

	h.audit.Log(&ownerID, "plan_created", "plan", &plan.ID, nil)

	c.JSON(http.StatusCreated, plan)
}

func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	id := c.Param("id")

	var plan models.Plan
	if err := h.db.First(&plan, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_plan"})
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.PriceCents != nil {
		plan.PriceCents = *req.PriceCents
	}
	if req.CutsPerMonth != nil {
		plan.CutsPerMonth = *req.CutsPerMonth
	}
	if req.GatewayPriceRef != nil {
		plan.GatewayPriceRef = *req.GatewayPriceRef
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := h.db.Save(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_plan"})
		return
	}

	h.audit.Log(&ownerID, "plan_updated", "plan", &plan.ID, nil)

	c.JSON(http.StatusOK, plan)
}

// ======================================================
// AUDIT LOGS
// ======================================================

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	action := c.Query("action")
	entity := c.Query("entity")
	fromStr := c.Query("from")
	toStr := c.Query("to")

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "50")

	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	q := h.db.Model(&models.AuditLog{})

	if action != "" {
		q = q.Where("action = ?", action)
	}

	if entity != "" {
		q = q.Where("entity = ?", entity)
	}

	if fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			q = q.Where("created_at >= ?", from)
		}
	}

	if toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			q = q.Where("created_at <= ?", to.Add(24*time.Hour))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Erro ao contar logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	c.JSON(200, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
