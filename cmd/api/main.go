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

	httptransport "github.com/spec-kit/bart-incident-bot/internal/api/http"
	"github.com/spec-kit/bart-incident-bot/internal/api/http/handlers"
	"github.com/spec-kit/bart-incident-bot/internal/auth"
	"github.com/spec-kit/bart-incident-bot/internal/bot"
	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	"github.com/spec-kit/bart-incident-bot/internal/config"
	"github.com/spec-kit/bart-incident-bot/internal/events"
	"github.com/spec-kit/bart-incident-bot/internal/graph"
	"github.com/spec-kit/bart-incident-bot/internal/httpclient"
	"github.com/spec-kit/bart-incident-bot/internal/observability"
	"github.com/spec-kit/bart-incident-bot/internal/persistence"
	"github.com/spec-kit/bart-incident-bot/internal/repository"
	"github.com/spec-kit/bart-incident-bot/internal/service"
	"github.com/spec-kit/bart-incident-bot/internal/ticketing"
	"github.com/spec-kit/bart-incident-bot/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := pg.TableStore()
	incidentRepo := repository.NewIncidentRepository(store)
	workstreamRepo := repository.NewWorkstreamRepository(store)
	roomRepo := repository.NewConferenceRoomRepository(store)
	statusRepo := repository.NewStatusRepository(store)
	userConfigRepo := repository.NewUserConfigurationRepository(store)

	outbound := httpclient.New(cfg.Retry, logger)
	snow := ticketing.NewClient(cfg.ServiceNow, outbound)
	directory := graph.NewClient(cfg.Graph, outbound)
	connector := botframework.NewConnector(outbound, botframework.StaticToken(cfg.Bot.ConnectorToken))

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification, outbound), logger, 256)
	notifications.Subscribe(dispatcher)
	notifications.Start(ctx)

	resourceService := service.NewResourceService(roomRepo)
	if added, err := resourceService.Seed(ctx, cfg.Bot.Bridges, cfg.Bot.BridgeDialInPrefix); err != nil {
		logger.Fatal("failed to seed conference bridges", zap.Error(err))
	} else if added > 0 {
		logger.Info("conference bridges seeded", zap.Int("count", added))
	}
	statusService := service.NewStatusService(statusRepo)
	workstreamService := service.NewWorkstreamService(workstreamRepo, dispatcher)
	userService := service.NewUserService(service.UserDependencies{
		Directory:      directory,
		UserConfigRepo: userConfigRepo,
		Cache:          redis.Client,
		CacheKeys:      redis.Keys,
		GroupID:        cfg.Graph.GroupID,
		CacheTTL:       cfg.Graph.MemberCacheDuration(),
		Logger:         logger,
	})
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		Ticketing:   snow,
		Messenger:   connector,
		Incidents:   incidentRepo,
		Resources:   resourceService,
		Statuses:    statusService,
		Workstreams: workstreamService,
		Users:       userConfigRepo,
		Dispatcher:  dispatcher,
		Bot:         cfg.Bot,
		Logger:      logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	tokenStore := auth.NewRedisTokenStore(redis.Client, redis.Keys, time.Duration(cfg.Auth.UserTokenTTLMinutes)*time.Minute)

	activityHandler := bot.NewHandler(bot.Dependencies{
		Incidents:    incidentService,
		Workstreams:  workstreamService,
		Users:        userService,
		Replier:      connector,
		Tokens:       tokenStore,
		TokenManager: tokenManager,
		Config:       cfg.Bot,
		Logger:       logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var pgPinger handlers.Pinger
	if pg.PoolHandle() != nil {
		pgPinger = pg
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pgPinger,
			"redis":    redis,
		}, metrics),
		Messages:       handlers.NewMessagesHandler(activityHandler),
		Incidents:      handlers.NewIncidentHandler(incidentService),
		Workstreams:    handlers.NewWorkstreamHandler(workstreamService),
		Resources:      handlers.NewResourcesHandler(resourceService),
		Statuses:       handlers.NewStatusHandler(statusService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenManager),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	cancel()
	notifications.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
