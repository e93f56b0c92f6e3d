package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareloop/internal/api"
	"shareloop/internal/config"
	"shareloop/internal/database"
	"shareloop/internal/domain"
	"shareloop/internal/events"
	"shareloop/internal/export"
	"shareloop/internal/logging"
	"shareloop/internal/metrics"
	"shareloop/internal/models"
	"shareloop/internal/repository"
	"shareloop/internal/service"
	"shareloop/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := applySeed(context.Background(), db, &logger); err != nil {
		logger.Error().Err(err).Msg("apply seed catalog")
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	itemCache := initItemCache(cfg, redisClient, &logger)

	bus := events.NewEventBus()
	subscribeMetrics(bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter := initExporter(ctx, cfg, db, redisClient, &logger)

	clock := service.SystemClock()
	bookingService := service.NewBookingService(db, clock, bus, exporter, &logger)
	itemService := service.NewItemService(db, itemCache, clock, &logger)
	userService := service.NewUserService(db, &logger)
	requestService := service.NewRequestService(db, &logger)

	httpServer := api.NewHTTPServer(cfg.Server, bookingService, itemService, userService, requestService, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

type seedCatalog struct {
	Users []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Items []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			Available   bool   `yaml:"available"`
		} `yaml:"items"`
	} `yaml:"users"`
}

// applySeed loads the optional demo catalog and inserts users and items
// that are not present yet. Matching is by email for users and by name
// per owner for items, so restarts are idempotent.
func applySeed(ctx context.Context, db *database.DB, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = "configs/seed.yaml"
	}
	data, err := os.ReadFile(seedPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}

	var seed seedCatalog
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}

	existing, err := db.ListUsers(ctx)
	if err != nil {
		return err
	}
	byEmail := make(map[string]*models.User, len(existing))
	for _, u := range existing {
		byEmail[u.Email] = u
	}

	var created int
	for _, su := range seed.Users {
		user, ok := byEmail[su.Email]
		if !ok {
			user = &models.User{Name: su.Name, Email: su.Email}
			if err := db.CreateUser(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", su.Email, err)
			}
		}

		owned, err := db.ListItemsByOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		names := make(map[string]bool, len(owned))
		for _, it := range owned {
			names[it.Name] = true
		}

		for _, si := range su.Items {
			if names[si.Name] {
				continue
			}
			item := &models.Item{
				OwnerID:     user.ID,
				Name:        si.Name,
				Description: si.Description,
				Available:   si.Available,
			}
			if err := db.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("seed item %s: %w", si.Name, err)
			}
			created++
		}
	}

	logger.Info().Str("seed_path", seedPath).Int("items_created", created).Msg("seed catalog applied")
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initItemCache picks redis-with-memory-failover when redis is up, plain
// memory otherwise.
func initItemCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ItemCache {
	ttl := time.Duration(cfg.Cache.ItemTTLSeconds) * time.Second
	memory := repository.NewMemoryItemCache(ttl)
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverItemCache(repository.NewRedisItemCache(redisClient, ttl), memory, logger)
}

func initExporter(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if !cfg.Export.Enabled {
		return nil
	}

	report := export.NewXLSXReport(cfg.Export.Path, logger)
	exportWorker := worker.NewExportWorker(db, report, redisClient, worker.RetryPolicy{}, logger)
	exportWorker.SetPollInterval(time.Duration(cfg.Export.PollIntervalSeconds) * time.Second)
	exportWorker.SetBatchSize(cfg.Export.BatchSize)
	go exportWorker.Start(ctx)

	logger.Info().Str("path", cfg.Export.Path).Msg("report export enabled")
	return exportWorker
}

func subscribeMetrics(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, func(*events.Event) error {
		metrics.IncBookingCreated()
		return nil
	})
	bus.Subscribe(events.EventBookingApproved, func(*events.Event) error {
		metrics.IncBookingDecision(models.StatusApproved)
		return nil
	})
	bus.Subscribe(events.EventBookingRejected, func(*events.Event) error {
		metrics.IncBookingDecision(models.StatusRejected)
		return nil
	})
	bus.Subscribe(events.EventBookingCancelled, func(*events.Event) error {
		metrics.IncBookingCancelled()
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
