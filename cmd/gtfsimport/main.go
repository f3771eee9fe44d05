package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/cache"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/gtfsimport"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/Domenick1991/railbooking/internal/service/auth"
	"github.com/Domenick1991/railbooking/internal/service/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	var (
		configPath string
		feed       string
		className  string
		pricePerKm float64
		dryRun     bool
		adminID    string
	)
	flag.StringVar(&configPath, "config", envOr("CONFIG_PATH", "config.yaml"), "Path to config file")
	flag.StringVar(&feed, "feed", "", "GTFS static zip: local path or http(s) URL")
	flag.StringVar(&className, "class", "Standard", "Train class attached to every imported line")
	flag.Float64Var(&pricePerKm, "price-per-km", 1, "Price per km of the imported class")
	flag.BoolVar(&dryRun, "dry-run", false, "Build the import plan without writing it")
	flag.StringVar(&adminID, "admin-id", "", "Admin recorded in the audit log for imported records")
	flag.Parse()

	if feed == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := gtfsimport.Load(ctx, feed)
	if err != nil {
		log.Fatalf("load feed: %v", err)
	}
	plan, err := gtfsimport.Parse(data, gtfsimport.Options{ClassName: className, PricePerKm: pricePerKm})
	if err != nil {
		log.Fatalf("build import plan: %v", err)
	}
	logger.Info("gtfs import plan built",
		slog.String("feed", feed),
		slog.Int("stations", len(plan.Stations)),
		slog.Int("connections", len(plan.Connections)),
		slog.Int("trains", len(plan.Trains)),
		slog.Int("schedules", len(plan.Schedules)),
		slog.Int("skipped", len(plan.Skipped)),
	)
	if dryRun {
		return
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	opts := []catalog.CatalogServiceOption{catalog.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL())
		defer redisCache.Close()
		opts = append(opts, catalog.WithSearchCache(redisCache))
	}

	adminRepo := repository.NewAdminRepository(pool)
	catalogService := catalog.NewCatalogService(catalog.Repositories{
		Stations:    repository.NewStationRepository(pool),
		Connections: repository.NewConnectionRepository(pool),
		Trains:      repository.NewTrainRepository(pool),
		Schedules:   repository.NewScheduleRepository(pool),
		Tickets:     repository.NewTicketRepository(pool),
		Audit:       adminRepo,
	}, opts...)

	ctx = auth.WithPrincipal(logging.WithLogger(ctx, logger), auth.Principal{AdminID: adminID, Role: domain.RoleSuperAdmin})
	if _, err := gtfsimport.Apply(ctx, catalogService, plan); err != nil {
		log.Fatalf("apply import: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
