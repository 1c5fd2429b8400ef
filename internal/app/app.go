// Package app assembles the store, services and HTTP stack from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"maintenance-tracker-api/internal/config"
	"maintenance-tracker-api/internal/database"
	"maintenance-tracker-api/internal/handler"
	"maintenance-tracker-api/internal/logging"
	"maintenance-tracker-api/internal/notification"
	"maintenance-tracker-api/internal/repository"
	"maintenance-tracker-api/internal/router"
	"maintenance-tracker-api/internal/seed"
	"maintenance-tracker-api/internal/service"
	notifyadapter "maintenance-tracker-api/internal/service/notification"
	"maintenance-tracker-api/internal/suggestion"

	"go.uber.org/zap"
)

// App is a fully wired instance of the maintenance tracker
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store      *repository.Store
	Notifier   notification.Notifier
	Dispatcher *service.Dispatcher

	Equipment   *service.EquipmentService
	Peripherals *service.PeripheralService
	Maintenance *service.MaintenanceService
	Tickets     *service.TicketService
	Dashboard   *service.DashboardService
	Suggester   *suggestion.Suggester

	Handler http.Handler

	db *sql.DB
}

// OpenStore connects the configured data layer. PostgreSQL stores are migrated
// when auto-migrate is on; memory stores are seeded when seeding is on.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Store, *sql.DB, error) {
	switch cfg.Store.Provider {
	case config.ProviderMemory:
		store := repository.NewMemoryStore()
		if cfg.Store.Seed {
			if _, err := seed.Load(ctx, store, logger); err != nil {
				return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
			}
		}
		return store, nil, nil

	case config.ProviderPostgres:
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if _, err := database.Migrate(ctx, db, logger); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		store := repository.NewPostgresStore(db)
		if cfg.Store.Seed {
			if _, err := seed.Load(ctx, store, logger); err != nil {
				store.Close()
				return nil, nil, fmt.Errorf("failed to seed database: %w", err)
			}
		}
		return store, db, nil
	}

	return nil, nil, fmt.Errorf("unsupported store provider %q", cfg.Store.Provider)
}

// NewNotifier returns the webhook client, or a no-op notifier when no URL is set
func NewNotifier(cfg *config.Config, logger *zap.Logger) notification.Notifier {
	if cfg.NotificationService.URL == "" {
		return notification.NewNoopNotifier(logger)
	}
	return notification.NewNotifierWithConfig(notification.NotificationConfig{
		URL:            cfg.NotificationService.URL,
		Timeout:        cfg.NotificationService.Timeout,
		RetryAttempts:  cfg.NotificationService.RetryAttempts,
		RetryDelay:     cfg.NotificationService.RetryDelay,
		MaxPayloadSize: cfg.NotificationService.MaxPayloadSize,
	}, logger)
}

// New opens the configured store and wires everything on top of it
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	store, db, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var generator suggestion.Generator
	if cfg.AIAvailable() {
		gemini, err := suggestion.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			store.Close()
			return nil, err
		}
		generator = gemini
	} else {
		logger.Info("maintenance suggestions disabled",
			zap.Bool("enabled", cfg.AI.Enabled),
			zap.Bool("api_key_set", cfg.AI.APIKey != ""))
	}

	a := Build(cfg, store, NewNotifier(cfg, logger), generator, logger)
	a.db = db
	return a, nil
}

// Build wires services, handlers and the router over an already opened store
func Build(cfg *config.Config, store *repository.Store, notifier notification.Notifier, generator suggestion.Generator, logger *zap.Logger) *App {
	logger = logging.OrNop(logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Notifier: notifier,
	}

	a.Dispatcher = service.NewDispatcher(notifyadapter.NewServiceAdapter(notifier), logger)
	a.Equipment = service.NewEquipmentService(store, cfg.Maintenance.DefaultIntervalDays, logger)
	a.Peripherals = service.NewPeripheralService(store, cfg.Maintenance.DefaultIntervalDays, logger)
	a.Maintenance = service.NewMaintenanceService(store, a.Dispatcher, cfg.Maintenance.UpcomingWindow, logger)
	a.Tickets = service.NewTicketService(store, a.Dispatcher, logger)
	a.Dashboard = service.NewDashboardService(store, a.Maintenance, cfg.Maintenance.UpcomingWindow)
	a.Suggester = suggestion.NewSuggester(
		suggestion.NewHistoryCollector(store, cfg.AI.MaxHistory),
		generator,
		suggestion.Options{
			Model:          cfg.AI.Model,
			MaxSuggestions: cfg.AI.MaxSuggestions,
			Timeout:        cfg.AI.Timeout,
		},
		logger)

	h := handler.NewHandlers(handler.Services{
		Equipment:   a.Equipment,
		Peripherals: a.Peripherals,
		Maintenance: a.Maintenance,
		Tickets:     a.Tickets,
		Dashboard:   a.Dashboard,
		Suggestions: a.Suggester,
	}, a.healthChecks(), logger)

	a.Handler = router.NewRouter(h, cfg, logger)
	return a
}

func (a *App) healthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"store": func(ctx context.Context) error {
			if a.db == nil {
				return nil
			}
			return a.db.PingContext(ctx)
		},
	}
	if a.Config.NotificationService.URL != "" {
		checks["notifier"] = func(ctx context.Context) error {
			if !a.Notifier.IsHealthy(ctx) {
				return errors.New("notification webhook is unreachable")
			}
			return nil
		}
	}
	return checks
}

// Close waits for in-flight notifications and releases the store
func (a *App) Close() error {
	a.Dispatcher.Wait()
	return a.Store.Close()
}
