package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider implements environment.WeatherProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts Options) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURLOr(opts, "https://api.weatherapi.com/v1/current.json"),
		httpCfg: newHTTPConfig(client, opts.MaxRetries),
		circuit: newCircuit("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Current returns temperature, condition text and resolved place for a point.
func (p *WeatherAPIProvider) Current(ctx context.Context, lat, lon float64) (environment.CurrentWeather, error) {
	if p.apiKey == "" {
		return environment.CurrentWeather{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", formatCoord(lat)+","+formatCoord(lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return environment.CurrentWeather{}, err
	}

	var payload struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Location *struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
		Current *struct {
			TempC     float64 `json:"temp_c"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return environment.CurrentWeather{}, err
	}

	if payload.Error != nil {
		return environment.CurrentWeather{}, fmt.Errorf("weatherapi error %d: %s", payload.Error.Code, payload.Error.Message)
	}
	if payload.Location == nil || payload.Current == nil {
		return environment.CurrentWeather{}, fmt.Errorf("%s: %w: location/current", p.name, environment.ErrNoData)
	}

	return environment.CurrentWeather{
		TemperatureC: payload.Current.TempC,
		Condition:    payload.Current.Condition.Text,
		PlaceName:    payload.Location.Name,
		Country:      payload.Location.Country,
	}, nil
}
