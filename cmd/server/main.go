package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/agrolease/agrolease/internal/api/http"
	"github.com/agrolease/agrolease/internal/application/audit"
	"github.com/agrolease/agrolease/internal/application/auth"
	"github.com/agrolease/agrolease/internal/application/dispute"
	"github.com/agrolease/agrolease/internal/application/investment"
	"github.com/agrolease/agrolease/internal/application/land"
	"github.com/agrolease/agrolease/internal/application/lease"
	"github.com/agrolease/agrolease/internal/application/payment"
	"github.com/agrolease/agrolease/internal/application/payout"
	"github.com/agrolease/agrolease/internal/application/policy"
	"github.com/agrolease/agrolease/internal/application/user"
	"github.com/agrolease/agrolease/internal/config"
	"github.com/agrolease/agrolease/internal/infrastructure/postgres"
	"github.com/agrolease/agrolease/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	landRepo := postgres.NewLandRepository(pool)
	leaseRepo := postgres.NewLeaseRepository(pool)
	payoutRepo := postgres.NewPayoutRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	disputeRepo := postgres.NewDisputeRepository(pool)
	investmentRepo := postgres.NewInvestmentRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()
	reviewPolicy, err := policy.NewEngine(cfg.ReviewPolicy)
	if err != nil {
		log.Fatalf("review policy error: %v", err)
	}

	// services
	auditSvc := audit.NewService(auditRepo, loadHexKey(cfg.AuditSigningKey), logger)
	authSvc := auth.NewService(userRepo, sessionRepo, auditSvc, cfg.SessionTTL, logger)
	userSvc := user.NewService(userRepo, auditSvc, logger)
	landSvc := land.NewService(landRepo, auditSvc, logger)
	leaseSvc := lease.NewService(leaseRepo, landRepo, auditSvc, sseHub, logger)
	payoutSvc := payout.NewService(payoutRepo, leaseRepo, investmentRepo, auditSvc, reviewPolicy, sseHub, logger)
	paymentSvc := payment.NewService(paymentRepo, leaseRepo, auditSvc, sseHub, logger)
	disputeSvc := dispute.NewService(disputeRepo, leaseRepo, paymentRepo, auditSvc, sseHub, logger)
	investmentSvc := investment.NewService(investmentRepo, leaseRepo, auditSvc, logger)

	// API server
	apiServer := httpapi.NewServer(
		authSvc,
		userSvc,
		landSvc,
		leaseSvc,
		payoutSvc,
		paymentSvc,
		disputeSvc,
		investmentSvc,
		auditSvc,
		sseHub,
		logger,
		cfg.SessionCookieName,
		cfg.SessionCookieSecure,
	)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			_, _ = authSvc.CleanupExpired(context.Background())
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	sseHub.Stop()
}

func loadHexKey(hexStr string) []byte {
	if hexStr == "" {
		return nil
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}
	return b
}
