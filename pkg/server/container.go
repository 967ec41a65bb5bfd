package server

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"lambda-jsonapi/internal/config"
	"lambda-jsonapi/internal/handlers"
	"lambda-jsonapi/internal/logging"
	"lambda-jsonapi/internal/repositories"
	"lambda-jsonapi/internal/services"
	"lambda-jsonapi/pkg/app"
	"lambda-jsonapi/pkg/controller"
	"lambda-jsonapi/pkg/jsonapi"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *logrus.Logger
	Registry        *prometheus.Registry
	CustomerService services.CustomerService
	App             *app.Application
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return NewContainerWithLogger(cfg, logger)
}

// NewContainerWithLogger creates a container that logs to logger
func NewContainerWithLogger(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	opts := []app.Option{
		app.WithLogger(logger),
		app.ExposeErrorDetails(cfg.ExposeErrorDetails),
	}
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		metrics := app.NewMetrics(cfg.Metrics.Namespace)
		if err := metrics.Register(registry); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, app.WithMetrics(metrics))
	}
	if cfg.Alerting.Enabled {
		opts = append(opts, app.WithNotifier(app.LogNotifier{Logger: logger}))
	}

	customerService := services.NewCustomerService(repositories.NewMemoryCustomerRepository())
	customers, err := handlers.NewCustomerHandler(customerService).Controller(
		controller.JSONAPI(jsonapi.NewCatalogRenderer(handlers.NewCatalog())),
		controller.RedirectStatus(cfg.DefaultRedirectStatus),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customers controller: %w", err)
	}

	application := app.New(opts...)
	if err := handlers.SetupRoutes(application, customers); err != nil {
		return nil, fmt.Errorf("failed to set up routes: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"stage":       cfg.Stage,
		"routes":      len(application.Routes()),
		"metrics":     cfg.Metrics.Enabled,
		"alerting":    cfg.Alerting.Enabled,
	}).Debug("Container initialized")

	return &Container{
		Config:          cfg,
		Logger:          logger,
		Registry:        registry,
		CustomerService: customerService,
		App:             application,
	}, nil
}
