package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/sony/gobreaker"
)

// OpenMeteoArchiveProvider implements environment.RainfallProvider using the
// Open-Meteo historical archive.
type OpenMeteoArchiveProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoArchiveProvider(client *http.Client, opts Options) *OpenMeteoArchiveProvider {
	return &OpenMeteoArchiveProvider{
		name:    "openmeteo-archive",
		baseURL: baseURLOr(opts, "https://archive-api.open-meteo.com/v1/archive"),
		httpCfg: newHTTPConfig(client, opts.MaxRetries),
		circuit: newCircuit("openmeteo-archive"),
	}
}

func (p *OpenMeteoArchiveProvider) Name() string {
	return p.name
}

// DailyPrecipitation returns the precipitation_sum series for [start, end].
func (p *OpenMeteoArchiveProvider) DailyPrecipitation(ctx context.Context, lat, lon float64, start, end time.Time) ([]*float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(lat))
		values.Set("longitude", formatCoord(lon))
		values.Set("start_date", start.UTC().Format(time.DateOnly))
		values.Set("end_date", end.UTC().Format(time.DateOnly))
		values.Set("daily", "precipitation_sum")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Daily *struct {
			PrecipitationSum []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	if payload.Daily == nil || payload.Daily.PrecipitationSum == nil {
		return nil, fmt.Errorf("%s: %w: precipitation_sum", p.name, environment.ErrNoData)
	}
	return payload.Daily.PrecipitationSum, nil
}
