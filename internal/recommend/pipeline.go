package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/i474232898/crop-recommendation/internal/scoring"
)

var validate = validator.New()

// LocationQuery identifies the point to recommend crops for.
type LocationQuery struct {
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	SoilPH    *float64 `json:"soil_ph,omitempty" validate:"omitempty,gte=0,lte=14"`
}

// ValidationError reports an out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks coordinate and pH bounds.
func (q LocationQuery) Validate() error {
	return validationError(validate.Struct(q))
}

// fieldMessages names each validated field the way clients send it.
var fieldMessages = map[string][2]string{
	"Latitude":  {"latitude", "must be between -90 and 90"},
	"Longitude": {"longitude", "must be between -180 and 180"},
	"SoilPH":    {"soil_ph", "must be between 0 and 14"},
	"Rainfall":  {"rainfall", "must not be negative"},
	"Month":     {"month", "must be between 1 and 12"},
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "query", Message: err.Error()}
	}
	fe := verrs[0]
	if m, ok := fieldMessages[fe.Field()]; ok {
		return &ValidationError{Field: m[0], Message: m[1]}
	}
	return &ValidationError{Field: fe.Field(), Message: fe.Error()}
}

// Recommendation is the ranked result for one query.
type Recommendation struct {
	ID          string                            `json:"id"`
	Environment environment.AggregatedEnvironment `json:"environment"`
	SoilPH      *float64                          `json:"soilPh"`
	Crops       []scoring.ScoredCrop              `json:"crops"`
}

// EnvironmentSource builds an environment snapshot for a point.
type EnvironmentSource interface {
	AggregateAt(ctx context.Context, lat, lon float64, asOf time.Time) (environment.AggregatedEnvironment, error)
}

// Ranker ranks crops for an environment.
type Ranker interface {
	Rank(env environment.AggregatedEnvironment, month int, soilPH *float64) []scoring.ScoredCrop
}

// Pipeline validates a query, aggregates the environment and scores crops.
type Pipeline struct {
	env    EnvironmentSource
	ranker Ranker
	now    func() time.Time
}

// NewPipeline creates a Pipeline.
func NewPipeline(env EnvironmentSource, ranker Ranker) *Pipeline {
	return &Pipeline{
		env:    env,
		ranker: ranker,
		now:    time.Now,
	}
}

// Recommend runs the full pipeline. It returns a *ValidationError before any
// network call for bad input, and an error wrapping *environment.FetchError
// when the environment could not be assembled.
func (p *Pipeline) Recommend(ctx context.Context, q LocationQuery) (Recommendation, error) {
	env, err := p.Environment(ctx, q)
	if err != nil {
		return Recommendation{}, err
	}

	crops := p.ranker.Rank(env, env.ObservedMonth, q.SoilPH)
	rec := Recommendation{
		ID:          uuid.NewString(),
		Environment: env,
		SoilPH:      q.SoilPH,
		Crops:       crops,
	}
	log.Printf("INFO: recommendation %s for %.4f,%.4f (%s, %s): %d crops",
		rec.ID, q.Latitude, q.Longitude, env.LocationName, env.Country, len(crops))
	return rec, nil
}

// Environment validates q and returns the aggregated environment only.
func (p *Pipeline) Environment(ctx context.Context, q LocationQuery) (environment.AggregatedEnvironment, error) {
	if err := q.Validate(); err != nil {
		return environment.AggregatedEnvironment{}, err
	}

	asOf := p.now().UTC()
	env, err := p.env.AggregateAt(ctx, q.Latitude, q.Longitude, asOf)
	if err != nil {
		return environment.AggregatedEnvironment{}, fmt.Errorf("aggregate environment: %w", err)
	}
	return env, nil
}
