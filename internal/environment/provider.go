package environment

import (
	"context"
	"time"
)

// RainfallProvider returns daily precipitation totals (mm) for each day in
// [start, end]. Days without data are nil.
type RainfallProvider interface {
	Name() string
	DailyPrecipitation(ctx context.Context, lat, lon float64, start, end time.Time) ([]*float64, error)
}

// ElevationProvider returns the elevation in meters at a point.
type ElevationProvider interface {
	Name() string
	Elevation(ctx context.Context, lat, lon float64) (float64, error)
}

// WeatherProvider returns current conditions and a resolved place name.
type WeatherProvider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (CurrentWeather, error)
}
