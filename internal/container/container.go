package container

import (
	"fmt"
	"net/http"

	"go-tree-inspector/internal/config"
	"go-tree-inspector/internal/factory"
	"go-tree-inspector/internal/height"
	"go-tree-inspector/internal/identify"
	"go-tree-inspector/internal/imaging"
	"go-tree-inspector/internal/logger"
	"go-tree-inspector/internal/observer"
	"go-tree-inspector/internal/plaque"
	"go-tree-inspector/internal/reference"
	"go-tree-inspector/internal/repository"
	"go-tree-inspector/internal/service"
	"go-tree-inspector/internal/storage"
	"go-tree-inspector/internal/transport"
	"go-tree-inspector/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	factories *factory.ComponentFactory
	metrics   *observer.MetricsObserver
	plaque    plaque.Reader
	service   service.TreeInspectionService
	handler   http.Handler
}

// NewContainer builds the dependency graph from a loaded configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	fetchClient := storage.NewHTTPClient(cfg.ImageFetchTimeout)
	identifyClient := storage.NewHTTPClient(cfg.IdentifyTimeout)

	deps := factory.SourceDeps{
		Fetcher:      storage.NewHTTPImageFetcher(fetchClient, cfg.MaxRequestBodySize),
		CameraDevice: cfg.CameraDevice,
		MaxFileSize:  cfg.MaxRequestBodySize,
	}
	if cfg.AzureEnabled() {
		blobs, err := storage.NewAzureBlobStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.MaxRequestBodySize)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob store: %w", err)
		}
		deps.Blobs = blobs
	}
	factories := factory.NewComponentFactory(deps)

	heightStrategy, err := factories.StrategyFactory.CreateHeightStrategy(factory.FormulaType(cfg.HeightFormula))
	if err != nil {
		return nil, err
	}

	var reader plaque.Reader
	if cfg.PlaqueOCR {
		reader, err = plaque.NewReader(cfg.PlaqueLanguage)
		if err != nil {
			// Identification still works without plaque reading
			logger.WithError(err).Warn("Plaque OCR requested but unavailable")
			reader = nil
		}
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	svcDeps := service.Dependencies{
		Repository:      repository.NewSourceRepository(),
		Gate:            validation.NewAcceptanceGate(),
		Estimator:       height.NewEstimator(heightStrategy),
		Identifier:      identify.NewPlantIDClient(identifyClient, cfg.PlantIDURL, cfg.PlantIDAPIKey),
		References:      reference.NewFetcher(fetchClient, reference.Mode(cfg.ExcerptMode), cfg.ExcerptLength),
		Sharpness:       imaging.NewSharpnessChecker(imaging.DefaultBlurThreshold),
		Plaque:          reader,
		Publisher:       publisher,
		IdentifyTimeout: cfg.IdentifyTimeout,
	}
	svc := service.NewTreeInspectionService(svcDeps)

	return &Container{
		config:    cfg,
		factories: factories,
		metrics:   metrics,
		plaque:    reader,
		service:   svc,
		handler:   transport.NewHandler(svc, factories.SourceFactory, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the inspection workflow
func (c *Container) Service() service.TreeInspectionService {
	return c.service
}

// Sources returns the image source factory
func (c *Container) Sources() factory.SourceFactory {
	return c.factories.SourceFactory
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the OCR engine when one was started
func (c *Container) Close() error {
	if c.plaque != nil {
		return c.plaque.Close()
	}
	return nil
}
