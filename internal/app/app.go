// Package app assembles the recommendation pipeline from configuration. Both
// the HTTP server and the CLI start from here.
package app

import (
	"context"
	"log"
	"net/http"

	"github.com/i474232898/crop-recommendation/internal/config"
	"github.com/i474232898/crop-recommendation/internal/ecology"
	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/i474232898/crop-recommendation/internal/environment/providers"
	"github.com/i474232898/crop-recommendation/internal/recommend"
	"github.com/i474232898/crop-recommendation/internal/scoring"
)

// App holds the long-lived components.
type App struct {
	Catalogs *ecology.Registry
	Pipeline *recommend.Pipeline

	closeFn func() error
}

// New loads the catalog and wires providers, aggregator and scorer.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	a := &App{}

	source, err := a.catalogSource(ctx, cfg)
	if err == nil {
		a.Catalogs = ecology.NewRegistry(source)
		err = a.Catalogs.Reload(ctx)
	} else {
		a.Catalogs = ecology.NewRegistry(nil)
	}
	if err != nil {
		if !cfg.CatalogOptional {
			a.Close()
			return nil, err
		}
		log.Printf("ERROR: catalog load failed, serving empty catalog: %v", err)
	}
	log.Printf("INFO: catalog loaded with %d crops", a.Catalogs.Current().Len())

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	aggregator := environment.NewAggregator(
		providers.NewOpenMeteoArchiveProvider(httpClient, providers.Options{
			BaseURL:    cfg.RainfallBaseURL,
			MaxRetries: cfg.ProviderMaxRetries,
		}),
		providers.NewOpenElevationProvider(httpClient, providers.Options{
			BaseURL:    cfg.ElevationBaseURL,
			MaxRetries: cfg.ProviderMaxRetries,
		}),
		providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, providers.Options{
			BaseURL:    cfg.WeatherBaseURL,
			MaxRetries: cfg.ProviderMaxRetries,
		}),
		environment.AggregatorConfig{
			Workers:      cfg.FetchWorkers,
			FetchTimeout: cfg.FetchTimeout,
		},
	)

	a.Pipeline = recommend.NewPipeline(aggregator, scoring.NewScorer(a.Catalogs))
	return a, nil
}

func (a *App) catalogSource(ctx context.Context, cfg *config.AppConfig) (ecology.Source, error) {
	if cfg.CatalogDSN == "" {
		return ecology.FileSource{Path: cfg.CatalogPath, Strict: cfg.CatalogStrict}, nil
	}
	src, err := ecology.OpenSQLSource(ctx, cfg.CatalogDSN, cfg.CatalogStrict)
	if err != nil {
		return nil, err
	}
	a.closeFn = src.Close
	return src, nil
}

// Close releases the catalog database handle, if any.
func (a *App) Close() {
	if a.closeFn == nil {
		return
	}
	if err := a.closeFn(); err != nil {
		log.Printf("WARN: closing catalog source: %v", err)
	}
}
