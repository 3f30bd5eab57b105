package recommend

import (
	"math"

	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/i474232898/crop-recommendation/internal/scoring"
)

// ConditionsQuery carries environmental values supplied by the caller
// instead of fetched from providers.
type ConditionsQuery struct {
	TemperatureC float64  `json:"temp"`
	Rainfall     float64  `json:"rainfall" validate:"gte=0"`
	AltitudeM    float64  `json:"altitude"`
	Latitude     float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Month        int      `json:"month" validate:"gte=1,lte=12"`
	SoilPH       *float64 `json:"ph,omitempty" validate:"omitempty,gte=0,lte=14"`
}

// Validate checks latitude, rainfall, month and pH bounds.
func (q ConditionsQuery) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"temp", q.TemperatureC}, {"altitude", q.AltitudeM}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ValidationError{Field: f.name, Message: "must be a finite number"}
		}
	}
	return validationError(validate.Struct(q))
}

// Environment returns the snapshot the scorer sees for q.
func (q ConditionsQuery) Environment() environment.AggregatedEnvironment {
	return environment.AggregatedEnvironment{
		Latitude:         q.Latitude,
		TemperatureC:     q.TemperatureC,
		AnnualRainfallMM: q.Rainfall,
		AltitudeM:        q.AltitudeM,
		ObservedMonth:    q.Month,
	}
}

// Score ranks crops for caller-supplied conditions. No provider is called.
func (p *Pipeline) Score(q ConditionsQuery) ([]scoring.ScoredCrop, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return p.ranker.Rank(q.Environment(), q.Month, q.SoilPH), nil
}
