package environment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultFetchTimeout bounds each individual source fetch.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultWorkers is the size of the shared fetch pool.
	DefaultWorkers = 8

	rainfallLookback = 365 // days
)

// AggregatorConfig tunes the fetch pool.
type AggregatorConfig struct {
	// Workers caps how many fetches run at once across all requests.
	Workers int
	// FetchTimeout applies to each fetch independently.
	FetchTimeout time.Duration
}

// Aggregator fetches rainfall, elevation and current weather concurrently and
// combines them into one AggregatedEnvironment.
type Aggregator struct {
	rainfall  RainfallProvider
	elevation ElevationProvider
	weather   WeatherProvider

	pool    *semaphore.Weighted
	timeout time.Duration
	now     func() time.Time
}

// NewAggregator creates an Aggregator. Zero config values fall back to
// DefaultWorkers and DefaultFetchTimeout.
func NewAggregator(rainfall RainfallProvider, elevation ElevationProvider, weather WeatherProvider, cfg AggregatorConfig) *Aggregator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Aggregator{
		rainfall:  rainfall,
		elevation: elevation,
		weather:   weather,
		pool:      semaphore.NewWeighted(int64(workers)),
		timeout:   timeout,
		now:       time.Now,
	}
}

// Aggregate builds the environment for a point as of now.
func (a *Aggregator) Aggregate(ctx context.Context, lat, lon float64) (AggregatedEnvironment, error) {
	return a.AggregateAt(ctx, lat, lon, a.now())
}

// AggregateAt builds the environment for a point, using asOf (UTC) for the
// rainfall window and the observed month.
//
// The three fetches run in parallel. The first failure cancels the others and
// is returned as a *FetchError; no partial environment is ever returned.
func (a *Aggregator) AggregateAt(ctx context.Context, lat, lon float64, asOf time.Time) (AggregatedEnvironment, error) {
	asOf = asOf.UTC()

	var (
		rainfall float64
		altitude float64
		current  CurrentWeather
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.fetch(gctx, SourceRainfall, func(ctx context.Context) error {
			v, err := a.annualRainfall(ctx, lat, lon, asOf)
			rainfall = v
			return err
		})
	})
	g.Go(func() error {
		return a.fetch(gctx, SourceElevation, func(ctx context.Context) error {
			v, err := a.elevation.Elevation(ctx, lat, lon)
			altitude = v
			return err
		})
	})
	g.Go(func() error {
		return a.fetch(gctx, SourceWeather, func(ctx context.Context) error {
			v, err := a.weather.Current(ctx, lat, lon)
			current = v
			return err
		})
	})

	if err := g.Wait(); err != nil {
		return AggregatedEnvironment{}, err
	}

	return AggregatedEnvironment{
		Latitude:         lat,
		Longitude:        lon,
		TemperatureC:     current.TemperatureC,
		Condition:        current.Condition,
		ConditionKind:    ClassifyCondition(current.Condition),
		AnnualRainfallMM: rainfall,
		AltitudeM:        altitude,
		LocationName:     current.PlaceName,
		Country:          current.Country,
		ObservedMonth:    int(asOf.Month()),
		ObservedAt:       asOf,
	}, nil
}

// fetch runs fn on a pool slot with its own timeout and tags any failure
// with the source.
func (a *Aggregator) fetch(ctx context.Context, src Source, fn func(context.Context) error) error {
	if err := a.pool.Acquire(ctx, 1); err != nil {
		return &FetchError{Source: src, Err: err}
	}
	defer a.pool.Release(1)

	tctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	err := fn(tctx)
	if err == nil {
		return nil
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("timed out after %s: %w", a.timeout, err)
	}
	if ctx.Err() == nil {
		log.Printf("ERROR: environment: %s fetch failed: %v", src, err)
	}
	return &FetchError{Source: src, Err: err}
}

func (a *Aggregator) annualRainfall(ctx context.Context, lat, lon float64, asOf time.Time) (float64, error) {
	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -rainfallLookback)

	daily, err := a.rainfall.DailyPrecipitation(ctx, lat, lon, start, end)
	if err != nil {
		return 0, err
	}
	if daily == nil {
		return 0, fmt.Errorf("%s: %w: precipitation series", a.rainfall.Name(), ErrNoData)
	}
	return SumPrecipitation(daily), nil
}

// SumPrecipitation totals non-nil daily values, rounded to 2 decimals.
func SumPrecipitation(daily []*float64) float64 {
	var total float64
	for _, v := range daily {
		if v != nil {
			total += *v
		}
	}
	return math.Round(total*100) / 100
}
