package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/sony/gobreaker"
)

// OpenElevationProvider implements environment.ElevationProvider using the
// Open-Elevation lookup API.
type OpenElevationProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenElevationProvider(client *http.Client, opts Options) *OpenElevationProvider {
	return &OpenElevationProvider{
		name:    "open-elevation",
		baseURL: baseURLOr(opts, "https://api.open-elevation.com/api/v1/lookup"),
		httpCfg: newHTTPConfig(client, opts.MaxRetries),
		circuit: newCircuit("open-elevation"),
	}
}

func (p *OpenElevationProvider) Name() string {
	return p.name
}

// Elevation returns the elevation of the first lookup result.
func (p *OpenElevationProvider) Elevation(ctx context.Context, lat, lon float64) (float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("locations", formatCoord(lat)+","+formatCoord(lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Elevation float64 `json:"elevation"`
		} `json:"results"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return 0, err
	}

	if len(payload.Results) == 0 {
		return 0, fmt.Errorf("%s: %w: results", p.name, environment.ErrNoData)
	}
	return payload.Results[0].Elevation, nil
}
