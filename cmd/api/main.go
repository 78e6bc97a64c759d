package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cutclub/cutclub-backend/internal/config"
	dbpkg "github.com/cutclub/cutclub-backend/internal/db"
	"github.com/cutclub/cutclub-backend/internal/gateway"
	"github.com/cutclub/cutclub-backend/internal/logging"
	"github.com/cutclub/cutclub-backend/internal/middleware"
	"github.com/cutclub/cutclub-backend/internal/notify"
	"github.com/cutclub/cutclub-backend/internal/routes"
	"github.com/cutclub/cutclub-backend/internal/storage"
)

func main() {

	cfg := config.Load()
	log := logging.New(cfg)

	db := dbpkg.NewDB(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	mailer := notify.NewMailer(
		rdb,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.SMTPFrom,
		log,
	)
	push := notify.NewPublisher(rdb, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go mailer.Worker(ctx)

	photos, err := storage.NewPhotoStore(cfg)
	if err != nil {
		log.Warn("photo storage disabled", "err", err)
	}

	var gw *gateway.MercadoPago
	if cfg.MPAccessToken != "" {
		gw, err = gateway.NewMercadoPago(cfg.MPAccessToken, cfg.AppBaseURL)
		if err != nil {
			log.Warn("payment gateway disabled", "err", err)
		}
	} else {
		log.Warn("MP_ACCESS_TOKEN not set, checkout and webhooks disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RateLimit(50, 100))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterRoutes(r, db, cfg, log, mailer, push, photos, gw)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}

	log.Info("server stopped")
}
