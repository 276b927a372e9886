// recruitment-service
//
// Recruitment workflow engine for the HR back office:
//   - stage and status transitions with an audit trail
//   - interview scheduling without double-booking panel members
//   - salary-dependent offer approval and the candidate's response
//   - onboarding checklists for accepted offers
//
// Exposes recruitment.v1.RecruitmentService over gRPC and /health over HTTP.
// Notifications are published to Redis for the notification service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"hrdesk/recruitment-service/internal/config"
	"hrdesk/recruitment-service/internal/db"
	"hrdesk/recruitment-service/internal/grpcserver"
	"hrdesk/recruitment-service/internal/logging"
	"hrdesk/recruitment-service/internal/notify"
	"hrdesk/recruitment-service/internal/rolematch"
	"hrdesk/recruitment-service/internal/scheduler"
	"hrdesk/recruitment-service/internal/store/postgres"
	"hrdesk/recruitment-service/internal/workflow"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[recruitment-service] Config error: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("recruitment-service stopped with error", "err", err)
		os.Exit(1)
	}
	logger.Info("recruitment-service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// ── PostgreSQL ───────────────────────────────────────────────────────────
	pool, err := db.Postgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.Info("postgres connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	rdb, err := db.Redis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	logger.Info("redis connected", "channel", cfg.NotifyChannel)

	// ── Workflow ─────────────────────────────────────────────────────────────
	roles := rolematch.NewDefault()
	if cfg.RoleAliasesFile != "" {
		aliases, err := rolematch.LoadAliases(cfg.RoleAliasesFile)
		if err != nil {
			return err
		}
		roles = rolematch.New(aliases)
		logger.Info("role aliases loaded", "file", cfg.RoleAliasesFile)
	}

	dispatcher := notify.NewDispatcher(notify.NewRedisPublisher(rdb, cfg.NotifyChannel), logger, notify.WithAsync())
	defer dispatcher.Wait()

	store := postgres.New(pool)
	opts := []workflow.Option{
		workflow.WithLogger(logger),
		workflow.WithApproverRoleEnforcement(cfg.EnforceApproverRoles),
	}
	statusEngine := workflow.NewStatusEngine(store, dispatcher, opts...)
	onboarding := workflow.NewOnboardingGenerator(store, store, store, dispatcher, opts...)
	offers := workflow.NewOfferWorkflow(store, store, statusEngine, onboarding, roles, dispatcher, opts...)
	engines := grpcserver.Engines{
		Stages:     workflow.NewStageEngine(store, dispatcher, opts...),
		Status:     statusEngine,
		Interviews: workflow.NewInterviewScheduler(store, store, postgres.NewLeaveChecker(pool), dispatcher, opts...),
		Offers:     offers,
		Onboarding: onboarding,
	}

	// ── Sweeps ───────────────────────────────────────────────────────────────
	sweeps := scheduler.New(cfg.SweepInterval, logger,
		scheduler.Job{Name: "offer-expiry", Run: offers.SweepExpired},
		scheduler.Job{Name: "onboarding-overdue", Run: onboarding.SweepOverdueTasks},
	)
	if err := sweeps.Start(ctx); err != nil {
		return err
	}

	// ── Servers ──────────────────────────────────────────────────────────────
	gs := grpc.NewServer()
	grpcserver.Register(gs, grpcserver.NewServer(engines, logger))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		logger.Info("grpc listening", "port", cfg.GRPCPort, "version", version)
		return gs.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("http listening", "port", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sweeps.Stop(shutdownCtx)
		gs.GracefulStop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown error", "err", err)
		}
		return nil
	})

	return g.Wait()
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "recruitment-service",
		"version": version,
	})
}
