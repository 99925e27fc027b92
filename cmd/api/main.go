package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/crm-service/internal/api/http"
	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/notification"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/otp"
	"github.com/spec-kit/crm-service/internal/persistence"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/service"
	"github.com/spec-kit/crm-service/internal/session"
	"github.com/spec-kit/crm-service/internal/worker"
	"github.com/spec-kit/crm-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry, cfg.App.Version)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var sessions session.Store
	if redis := persistence.NewRedis(ctx, cfg.Redis, logger); redis != nil {
		defer redis.Close()
		sessions = session.NewRedisStore(redis.Client())
	} else {
		sessions = session.NewMemoryStore()
	}

	identityRepo := repository.NewIdentityRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	listRepo := repository.NewListRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenIssuer(
		auth.KeySet{Secret: []byte(cfg.Auth.AccessSecret), TTL: cfg.Auth.AccessTTL},
		auth.KeySet{Secret: []byte(cfg.Auth.RefreshSecret), TTL: cfg.Auth.RefreshTTL},
	)
	sender := notification.NewSender(cfg.SMS, logger)
	otpFlow := otp.NewFlow(identityRepo, sessions, sender, cfg.Auth.OTPTTL, logger, metrics)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Identities: identityRepo,
		Sessions:   sessions,
		OTP:        otpFlow,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	memberService := service.NewMemberService(cfg.Auth.BcryptCost, service.MemberDependencies{
		Identities: identityRepo,
		Teams:      teamRepo,
		Lists:      listRepo,
		Members:    memberRepo,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, cfg.App, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"sessions": sessions,
		}),
		Auth:     handlers.NewAuthHandler(authService),
		Members:  handlers.NewMemberHandler(memberService),
		Teams:    handlers.NewTeamHandler(service.NewTeamService(teamRepo)),
		Lists:    handlers.NewListHandler(service.NewListService(listRepo)),
		Contacts: handlers.NewContactHandler(service.NewContactService(listRepo, contactRepo)),
		Gate:     auth.NewGate(tokens, identityRepo),
		Metrics:  metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
