package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/i474232898/crop-recommendation/internal/ecology"
	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/i474232898/crop-recommendation/internal/scoring"
)

type fakeEnvSource struct {
	calls int
	asOf  time.Time
	env   environment.AggregatedEnvironment
	err   error
}

func (f *fakeEnvSource) AggregateAt(_ context.Context, lat, lon float64, asOf time.Time) (environment.AggregatedEnvironment, error) {
	f.calls++
	f.asOf = asOf
	if f.err != nil {
		return environment.AggregatedEnvironment{}, f.err
	}
	env := f.env
	env.Latitude, env.Longitude = lat, lon
	env.ObservedMonth = int(asOf.Month())
	return env, nil
}

func ph(v float64) *float64 { return &v }

func testCatalog() *ecology.Registry {
	reg := ecology.NewRegistry(nil)
	reg.Set(ecology.NewCatalog([]ecology.Profile{{
		Crop: "Maize",
		Temperature: ecology.Tolerance{
			Optimal: ecology.Range{Min: 20, Max: 30}, Absolute: ecology.Range{Min: 10, Max: 40},
		},
		Rainfall: ecology.Tolerance{
			Optimal: ecology.Range{Min: 800, Max: 1200}, Absolute: ecology.Range{Min: 400, Max: 2000},
		},
		SoilPH: ecology.Tolerance{
			Optimal: ecology.Range{Min: 6, Max: 7}, Absolute: ecology.Range{Min: 5, Max: 8},
		},
		Latitude: ecology.Tolerance{
			Optimal: ecology.Range{Min: 0, Max: 20}, Absolute: ecology.Range{Min: -30, Max: 35},
		},
		Altitude: ecology.Tolerance{
			Optimal: ecology.Range{Min: 200, Max: 800}, Absolute: ecology.Range{Min: 0, Max: 2000},
		},
		Planting:   ecology.Window{Start: 5, End: 7},
		Harvesting: ecology.Window{Start: 9, End: 11},
	}}))
	return reg
}

func newTestPipeline(src *fakeEnvSource) *Pipeline {
	p := NewPipeline(src, scoring.NewScorer(testCatalog()))
	p.now = func() time.Time {
		return time.Date(2025, time.June, 30, 23, 30, 0, 0, time.FixedZone("NPT", 5*3600+45*60))
	}
	return p
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		q     LocationQuery
		field string
	}{
		{"valid", LocationQuery{Latitude: 10, Longitude: 20}, ""},
		{"valid bounds", LocationQuery{Latitude: -90, Longitude: 180, SoilPH: ph(14)}, ""},
		{"valid ph zero", LocationQuery{SoilPH: ph(0)}, ""},
		{"latitude high", LocationQuery{Latitude: 90.1}, "latitude"},
		{"latitude low", LocationQuery{Latitude: -91}, "latitude"},
		{"longitude", LocationQuery{Longitude: 181}, "longitude"},
		{"soil ph", LocationQuery{SoilPH: ph(14.5)}, "soil_ph"},
		{"soil ph negative", LocationQuery{SoilPH: ph(-1)}, "soil_ph"},
		{"nan latitude", LocationQuery{Latitude: math.NaN()}, "latitude"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	src := &fakeEnvSource{env: environment.AggregatedEnvironment{
		TemperatureC:     25,
		AnnualRainfallMM: 1000,
		AltitudeM:        500,
		LocationName:     "Somewhere",
	}}
	p := newTestPipeline(src)

	rec, err := p.Recommend(context.Background(), LocationQuery{Latitude: 10, Longitude: 76})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 23:30 on June 30 at +05:45 is still June 30 in UTC (17:45).
	if src.asOf.Location() != time.UTC || src.asOf.Month() != time.June {
		t.Errorf("asOf = %s, want June in UTC", src.asOf)
	}
	if rec.ID == "" {
		t.Errorf("missing recommendation id")
	}
	if rec.Environment.LocationName != "Somewhere" || rec.Environment.ObservedMonth != 6 {
		t.Errorf("unexpected environment %+v", rec.Environment)
	}
	if len(rec.Crops) != 1 || rec.Crops[0].Crop != "Maize" || rec.Crops[0].Score != 27 {
		t.Fatalf("unexpected crops %+v", rec.Crops)
	}

	withPH, err := p.Recommend(context.Background(), LocationQuery{Latitude: 10, Longitude: 76, SoilPH: ph(6.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withPH.Crops[0].Score != 30 || withPH.SoilPH == nil || *withPH.SoilPH != 6.5 {
		t.Fatalf("unexpected result with pH: %+v", withPH)
	}
	if withPH.ID == rec.ID {
		t.Fatalf("recommendation ids must be unique")
	}
}

func TestRecommendValidationShortCircuits(t *testing.T) {
	src := &fakeEnvSource{}
	p := newTestPipeline(src)

	_, err := p.Recommend(context.Background(), LocationQuery{Latitude: 100, Longitude: 0})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("environment fetched despite invalid input")
	}
}

func TestRecommendFetchErrorPropagates(t *testing.T) {
	src := &fakeEnvSource{err: &environment.FetchError{
		Source: environment.SourceElevation,
		Err:    errors.New("connection refused"),
	}}
	p := newTestPipeline(src)

	rec, err := p.Recommend(context.Background(), LocationQuery{Latitude: 10, Longitude: 76})
	var ferr *environment.FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *environment.FetchError, got %v", err)
	}
	if ferr.Source != environment.SourceElevation {
		t.Errorf("source = %q", ferr.Source)
	}
	if rec.Crops != nil {
		t.Fatalf("crops scored despite fetch failure")
	}
}

func TestConditionsQueryValidate(t *testing.T) {
	base := ConditionsQuery{TemperatureC: 25, Rainfall: 1000, AltitudeM: 500, Latitude: 27.7, Month: 6}

	tests := []struct {
		name   string
		mutate func(q *ConditionsQuery)
		field  string
	}{
		{"valid", func(q *ConditionsQuery) {}, ""},
		{"valid with ph", func(q *ConditionsQuery) { q.SoilPH = ph(6.5) }, ""},
		{"negative altitude allowed", func(q *ConditionsQuery) { q.AltitudeM = -20 }, ""},
		{"month zero", func(q *ConditionsQuery) { q.Month = 0 }, "month"},
		{"month thirteen", func(q *ConditionsQuery) { q.Month = 13 }, "month"},
		{"latitude", func(q *ConditionsQuery) { q.Latitude = 95 }, "latitude"},
		{"ph", func(q *ConditionsQuery) { q.SoilPH = ph(14.5) }, "soil_ph"},
		{"negative rainfall", func(q *ConditionsQuery) { q.Rainfall = -1 }, "rainfall"},
		{"nan temperature", func(q *ConditionsQuery) { q.TemperatureC = math.NaN() }, "temp"},
		{"infinite altitude", func(q *ConditionsQuery) { q.AltitudeM = math.Inf(1) }, "altitude"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := base
			tc.mutate(&q)
			err := q.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("got %v, want ValidationError on %s", err, tc.field)
			}
		})
	}
}

func TestScoreSuppliedConditions(t *testing.T) {
	src := &fakeEnvSource{}
	p := newTestPipeline(src)

	q := ConditionsQuery{TemperatureC: 25, Rainfall: 1000, AltitudeM: 500, Latitude: 27.7, Month: 6}
	crops, err := p.Score(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 + 3 + 1 (latitude absolute only) + 3 + 15 planting
	if len(crops) != 1 || crops[0].Score != 25 || !crops[0].Planting {
		t.Fatalf("unexpected ranking: %+v", crops)
	}

	q.SoilPH = ph(6.5)
	q.Month = 12
	crops, err = p.Score(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(crops) != 1 || crops[0].Score != 13 || crops[0].Planting || crops[0].Harvesting {
		t.Fatalf("unexpected ranking: %+v", crops)
	}

	if _, err := p.Score(ConditionsQuery{Month: 13}); err == nil {
		t.Fatalf("expected validation error")
	}
	if src.calls != 0 {
		t.Fatalf("scoring supplied conditions must not fetch, got %d calls", src.calls)
	}
}
