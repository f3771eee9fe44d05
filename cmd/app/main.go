package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/railbooking/api"
	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/bootstrap"
	"github.com/Domenick1991/railbooking/internal/cache"
	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/service/auth"
	"github.com/Domenick1991/railbooking/internal/service/catalog"
	"github.com/Domenick1991/railbooking/internal/service/search"
	"github.com/Domenick1991/railbooking/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type searchCache interface {
	search.Cache
	catalog.SearchInvalidator
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	loc, err := cfg.Booking.Location()
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	checks := map[string]bootstrap.Check{"postgres": pool.Ping}

	var resultCache searchCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL())
		defer redisCache.Close()
		resultCache = redisCache
		checks["redis"] = redisCache.Ping
	} else {
		logger.Info("redis not configured, using in-process search cache")
		resultCache = cache.NewMemoryCache(cfg.Booking.SearchCacheTTL())
	}

	stationRepo := repository.NewStationRepository(pool)
	connectionRepo := repository.NewConnectionRepository(pool)
	trainRepo := repository.NewTrainRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	ticketOpts := []tickets.TicketServiceOption{
		tickets.WithReferenceAttempts(cfg.Booking.ReferenceAttempts),
		tickets.WithLocation(loc),
		tickets.WithLogger(logger),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logging.LogError(logger, "kafka unavailable at startup, events will be retried per booking", err)
		}
		ticketOpts = append(ticketOpts,
			tickets.WithProducer(producer, cfg.Kafka.TicketTopic),
			tickets.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	searchService := search.NewSearchService(scheduleRepo, connectionRepo,
		search.WithCache(resultCache),
		search.WithLocation(loc),
		search.WithLogger(logger),
	)
	ticketService := tickets.NewTicketService(ticketRepo, scheduleRepo, connectionRepo, ticketOpts...)
	catalogService := catalog.NewCatalogService(catalog.Repositories{
		Stations:    stationRepo,
		Connections: connectionRepo,
		Trains:      trainRepo,
		Schedules:   scheduleRepo,
		Tickets:     ticketRepo,
		Audit:       adminRepo,
	}, catalog.WithSearchCache(resultCache), catalog.WithLogger(logger))
	authService := auth.NewAuthService(adminRepo, adminRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), auth.WithLogger(logger))

	limiter := api.NewRateLimiter(cfg.HTTP.RateLimitPerMinute)
	defer limiter.Stop()

	router := api.NewRouter(api.Services{
		Search:  searchService,
		Tickets: ticketService,
		Catalog: catalogService,
		Auth:    authService,
	}, api.RouterOptions{
		Logger:      logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimiter: limiter,
	})

	if err := bootstrap.Run(ctx, cfg, router, checks, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
