package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"orderreport/internal/batch"
	"orderreport/internal/config"
	"orderreport/internal/handler"
	"orderreport/internal/lib/sl"
	"orderreport/internal/metrics"
	"orderreport/internal/mw"
	"orderreport/internal/service"
	"orderreport/internal/storage"
	"orderreport/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg := config.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches, closeBatches, err := batch.Open(ctx, batch.Options{
		Driver:        cfg.BatchDriver,
		Dir:           cfg.BatchDir,
		DatabaseURI:   cfg.DatabaseURI,
		RedisAddress:  cfg.RedisAddress,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		TTL:           cfg.BatchTTL,
	})
	if err != nil {
		log.Error("failed to open batch store", "driver", cfg.BatchDriver, sl.Err(err))
		os.Exit(1)
	}
	defer closeBatches()

	reports, err := storage.NewLocal(cfg.ReportDir)
	if err != nil {
		log.Error("failed to open report directory", "dir", cfg.ReportDir, sl.Err(err))
		os.Exit(1)
	}

	// Services
	source := service.NewOrderSource(cfg.OrdersSourceURL, cfg.FetchTimeout)
	reportSvc := service.NewReportService(log, source, batches, reports)
	authSvc := service.NewAuthService(cfg.OperatorLogin, cfg.OperatorPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
	links := service.NewLinkSigner(cfg.JWTSecret, cfg.LinkTTL)

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("using the default jwt secret, set JWT_SECRET")
	}

	// Worker
	janitor := worker.NewJanitor(log, reports, batches, cfg.ReportRetention, cfg.JanitorInterval)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", handler.HealthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Post("/api/login", handler.LoginHandler(log, authSvc))
	r.Get("/download-report/{filename}", handler.DownloadReportHandler(log, reportSvc, links))

	// Operator routes
	r.Group(func(r chi.Router) {
		if authSvc.Enabled() {
			r.Use(mw.AuthMiddleware(cfg.JWTSecret))
		} else {
			log.Warn("operator password is not configured, report routes are open")
		}

		r.Post("/generate-report", handler.GenerateReportHandler(log, reportSvc, links, cfg.PublicURL))
		r.Get("/list-reports", handler.ListReportsHandler(log, reportSvc, links, cfg.PublicURL))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
	}

	go janitor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Info("starting server", "addr", cfg.RunAddress, "batch_driver", cfg.BatchDriver)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", sl.Err(err))
		}
	}()

	<-quit
	log.Info("shutting down...")

	cancel() // stop janitor
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		log.Error("server shutdown failed", sl.Err(err))
	}

	log.Info("server stopped")
}
