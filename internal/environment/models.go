package environment

import (
	"time"

	"github.com/i474232898/crop-recommendation/internal/common"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// ClassifyCondition maps a free-text provider description ("Patchy light
// rain", "Partly cloudy") to a Condition.
func ClassifyCondition(text string) Condition {
	switch {
	case text == "":
		return ConditionUnknown
	case common.HasAnyFold(text, "thunder", "storm"):
		return ConditionStorm
	case common.HasAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return ConditionSnow
	case common.HasAnyFold(text, "rain", "shower", "drizzle"):
		return ConditionRain
	case common.HasAnyFold(text, "mist", "fog", "haze"):
		return ConditionMist
	case common.HasAnyFold(text, "cloud", "overcast"):
		return ConditionCloudy
	case common.HasAnyFold(text, "sunny", "clear"):
		return ConditionClear
	default:
		return ConditionUnknown
	}
}

// CurrentWeather is what a WeatherProvider reports for a point.
type CurrentWeather struct {
	TemperatureC float64
	Condition    string
	PlaceName    string
	Country      string
}

// AggregatedEnvironment is the environmental snapshot for one location,
// assembled from independent sources. It is only ever built complete.
type AggregatedEnvironment struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	TemperatureC     float64   `json:"temperatureC"`
	Condition        string    `json:"weather"`
	ConditionKind    Condition `json:"condition"`
	AnnualRainfallMM float64   `json:"rainfallMm"`
	AltitudeM        float64   `json:"altitudeM"`
	LocationName     string    `json:"locationName"`
	Country          string    `json:"country"`
	ObservedMonth    int       `json:"month"`
	ObservedAt       time.Time `json:"observedAt"` // always UTC
}
