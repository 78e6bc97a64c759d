package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutclub/cutclub-backend/internal/audit"
	"github.com/cutclub/cutclub-backend/internal/config"
	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/gateway"
	"github.com/cutclub/cutclub-backend/internal/handlers"
	infraRepo "github.com/cutclub/cutclub-backend/internal/infra/repository"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/notify"
	"github.com/cutclub/cutclub-backend/internal/storage"
	ucBooking "github.com/cutclub/cutclub-backend/internal/usecase/booking"
	"github.com/cutclub/cutclub-backend/internal/usecase/reconcile"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	log *slog.Logger,
	mailer *notify.Mailer,
	push *notify.Publisher,
	photos *storage.PhotoStore,
	gw *gateway.MercadoPago,
) {

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	params := ucBooking.Params{
		Pricing: domain.Pricing{
			SecondCutCents: cfg.SecondCutPriceCents,
			OneOffCents:    cfg.OneOffPriceCents,
			WindowDays:     cfg.SecondCutWindowDays,
		},
		PointCost:         cfg.BookingPointCost,
		SlotMinutes:       cfg.SlotMinutes,
		MinAdvanceMinutes: cfg.MinAdvanceMinutes,
		Timezone:          cfg.ShopTimezone,
	}

	// ======================================================
	// 🧠 USE CASES — BOOKING
	// ======================================================
	createUC := ucBooking.NewCreateBooking(
		repo,
		auditDispatcher,
		params,
	)

	rescheduleUC := ucBooking.NewRescheduleBooking(
		repo,
		auditDispatcher,
		params,
	)

	cancelUC := ucBooking.NewCancelBooking(
		repo,
		auditDispatcher,
		params,
	)

	confirmUC := ucBooking.NewConfirmAppointment(
		repo,
		auditDispatcher,
		params,
	)

	completeUC := ucBooking.NewCompleteAppointment(
		repo,
		auditDispatcher,
		params,
	)

	noShowUC := ucBooking.NewMarkNoShow(
		repo,
		auditDispatcher,
		params,
	)

	availabilityUC := ucBooking.NewGetAvailability(repo, params)
	entitlementUC := ucBooking.NewResolveEntitlement(repo, params)

	// ======================================================
	// 🔁 RECONCILIATION (WEBHOOKS)
	// ======================================================
	reconciler := reconcile.NewReconciler(
		repo,
		log,
		mailer,
		reconcile.Params{
			Pricing:      params.Pricing,
			SlotMinutes:  cfg.SlotMinutes,
			Timezone:     cfg.ShopTimezone,
			SignupBonus:  cfg.SignupBonusPoints,
			RenewalBonus: cfg.RenewalBonusPoints,
		},
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db, photos)

	bookingHandler := handlers.NewBookingHandler(
		createUC,
		rescheduleUC,
		cancelUC,
		repo,
		auditLogger,
		mailer,
		push,
		cfg,
	)

	scheduleHandler := handlers.NewScheduleHandler(
		db,
		confirmUC,
		completeUC,
		noShowUC,
		cfg,
	)

	workingHoursHandler := handlers.NewWorkingHoursHandler(db, auditLogger)
	pointsHandler := handlers.NewPointsHandler(repo, entitlementUC)
	checkoutHandler := handlers.NewCheckoutHandler(repo, gw, auditLogger, cfg)
	adminHandler := handlers.NewAdminHandler(db, repo, auditLogger)
	publicHandler := handlers.NewPublicHandler(db, repo, availabilityUC, photos)
	photoHandler := handlers.NewPhotoHandler(db, photos)
	webhookHandler := handlers.NewWebhookHandler(gw, reconciler, log)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/plans", publicHandler.ListPlans)
			publicAPI.GET("/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/barbers/:id/availability", publicHandler.Availability)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		auth := api.Group("/auth", middleware.RateLimit(5, 10))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// ------------------------------
		// 🔔 WEBHOOKS (sem auth; o gateway não manda token)
		// ------------------------------
		if gw != nil {
			api.POST("/webhooks/mercadopago", webhookHandler.MercadoPago)
		}

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// Cancelamento vale para cliente e equipe; o use case decide
			// quem pode mexer em qual agendamento.
			secured.PATCH("/me/appointments/:id/cancel", bookingHandler.Cancel)

			if photos != nil {
				secured.POST("/me/photo", photoHandler.Upload)
			}

			secured.PATCH(
				"/intents/:token/confirm",
				middleware.RequireRole("barber", "owner"),
				checkoutHandler.ConfirmIntent,
			)

			// ------------------------------
			// CLIENTE
			// ------------------------------
			client := secured.Group("/me", middleware.RequireRole("client"))
			{
				client.POST("/appointments", bookingHandler.Create)
				client.GET("/appointments", bookingHandler.ListMine)
				client.POST("/appointments/:id/reschedule", bookingHandler.Reschedule)
				client.GET("/appointments/:id/calendar.ics", bookingHandler.CalendarICS)

				client.GET("/entitlement", pointsHandler.Entitlement)
				client.GET("/points", pointsHandler.MyPoints)

				client.POST("/payment-intents", checkoutHandler.CreateIntent)

				if gw != nil {
					client.POST("/checkout", checkoutHandler.Checkout)
					client.POST("/subscribe", checkoutHandler.Subscribe)
				}
			}

			// ------------------------------
			// BARBEIRO / AGENDA
			// ------------------------------
			staff := secured.Group("/me", middleware.RequireRole("barber", "owner"))
			{
				staff.GET("/agenda", scheduleHandler.ListByDate)
				staff.GET("/agenda/month", scheduleHandler.ListByMonth)

				staff.PATCH("/appointments/:id/confirm", scheduleHandler.Confirm)
				staff.PATCH("/appointments/:id/complete", scheduleHandler.Complete)
				staff.PATCH("/appointments/:id/no-show", scheduleHandler.NoShow)

				staff.GET("/working-hours", workingHoursHandler.Get)
				staff.PUT("/working-hours", workingHoursHandler.Update)
			}

			// ------------------------------
			// ADMIN (OWNER)
			// ------------------------------
			admin := secured.Group("/admin", middleware.RequireRole("owner"))
			{
				admin.POST("/barbers", adminHandler.CreateBarber)
				admin.GET("/clients", adminHandler.ListClients)
				admin.POST("/points", adminHandler.AdjustPoints)
				admin.POST("/plans", adminHandler.CreatePlan)
				admin.PATCH("/plans/:id", adminHandler.UpdatePlan)
				admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			}
		}
	}
}
