package scoring

import (
	"testing"

	"github.com/i474232898/crop-recommendation/internal/ecology"
	"github.com/i474232898/crop-recommendation/internal/environment"
)

func tol(optMin, optMax, absMin, absMax float64) ecology.Tolerance {
	return ecology.Tolerance{
		Optimal:  ecology.Range{Min: optMin, Max: optMax},
		Absolute: ecology.Range{Min: absMin, Max: absMax},
	}
}

// exampleCrop matches the worked example: temp 20-30, rainfall 800-1200,
// latitude 0-20, altitude 200-800, plant May-Jul, harvest Sep-Nov.
func exampleCrop(name string) ecology.Profile {
	return ecology.Profile{
		Crop:        name,
		Temperature: tol(20, 30, 10, 40),
		Rainfall:    tol(800, 1200, 400, 2000),
		SoilPH:      tol(6, 7, 5, 8),
		Latitude:    tol(0, 20, -30, 35),
		Altitude:    tol(200, 800, 0, 2000),
		Planting:    ecology.Window{Start: 5, End: 7},
		Harvesting:  ecology.Window{Start: 9, End: 11},
	}
}

func exampleEnv() environment.AggregatedEnvironment {
	return environment.AggregatedEnvironment{
		Latitude:         10,
		TemperatureC:     25,
		AnnualRainfallMM: 1000,
		AltitudeM:        500,
		ObservedMonth:    6,
	}
}

func ph(v float64) *float64 { return &v }

func TestWorkedExample(t *testing.T) {
	got := Score(exampleEnv(), 6, nil, []ecology.Profile{exampleCrop("Example")})
	if len(got) != 1 {
		t.Fatalf("expected 1 crop, got %d", len(got))
	}
	want := ScoredCrop{Crop: "Example", Score: 27, Planting: true, Harvesting: false}
	if got[0] != want {
		t.Fatalf("got %+v, want %+v", got[0], want)
	}
}

func TestMaximumScores(t *testing.T) {
	p := exampleCrop("Both")
	p.Harvesting = ecology.Window{Start: 6, End: 6}
	profiles := []ecology.Profile{p}

	withPH := Score(exampleEnv(), 6, ph(6.5), profiles)
	if len(withPH) != 1 || withPH[0].Score != 45 {
		t.Fatalf("with pH: got %+v, want score 45", withPH)
	}

	withoutPH := Score(exampleEnv(), 6, nil, profiles)
	if len(withoutPH) != 1 || withoutPH[0].Score != 42 {
		t.Fatalf("without pH: got %+v, want score 42", withoutPH)
	}
}

func TestAbsoluteRangeGrading(t *testing.T) {
	env := exampleEnv()
	env.TemperatureC = 35 // absolute only
	got := Score(env, 6, nil, []ecology.Profile{exampleCrop("Warm")})
	if len(got) != 1 || got[0].Score != 25 {
		t.Fatalf("got %+v, want score 25", got)
	}
}

func TestAnyAbsoluteMissExcludes(t *testing.T) {
	hot, dry, polar, alpine := exampleEnv(), exampleEnv(), exampleEnv(), exampleEnv()
	hot.TemperatureC = 45
	dry.AnnualRainfallMM = 100
	polar.Latitude = 50
	alpine.AltitudeM = 3000

	tests := []struct {
		name   string
		env    environment.AggregatedEnvironment
		soilPH *float64
	}{
		{"temperature", hot, nil},
		{"rainfall", dry, nil},
		{"latitude", polar, nil},
		{"altitude", alpine, nil},
		{"soil pH", exampleEnv(), ph(3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// In both seasons, every other factor optimal: still excluded.
			p := exampleCrop("Gated")
			p.Planting = ecology.Window{Start: 1, End: 12}
			p.Harvesting = ecology.Window{Start: 1, End: 12}

			got := Score(tc.env, 6, tc.soilPH, []ecology.Profile{p})
			if len(got) != 0 {
				t.Fatalf("expected exclusion, got %+v", got)
			}
		})
	}
}

func TestOmittedPHSkipsFactor(t *testing.T) {
	// A crop whose pH tolerance could never match still scores when pH is
	// not supplied.
	p := exampleCrop("Acidic")
	p.SoilPH = tol(1, 2, 0.5, 2.5)

	got := Score(exampleEnv(), 6, nil, []ecology.Profile{p})
	if len(got) != 1 || got[0].Score != 27 {
		t.Fatalf("got %+v, want score 27", got)
	}
	if got := Score(exampleEnv(), 6, ph(7), []ecology.Profile{p}); len(got) != 0 {
		t.Fatalf("supplied pH outside absolute range must exclude, got %+v", got)
	}
}

func TestWrapAroundSeason(t *testing.T) {
	p := exampleCrop("Winter")
	p.Planting = ecology.Window{Start: 11, End: 2}
	p.Harvesting = ecology.Window{Start: 4, End: 4}

	for month := 1; month <= 12; month++ {
		got := Score(exampleEnv(), month, nil, []ecology.Profile{p})
		if len(got) != 1 {
			t.Fatalf("month %d: expected crop present", month)
		}
		inWindow := month >= 11 || month <= 2
		if got[0].Planting != inWindow {
			t.Errorf("month %d: planting = %v, want %v", month, got[0].Planting, inWindow)
		}
		want := 12
		if inWindow {
			want += 15
		}
		if month == 4 {
			want += 15
		}
		if got[0].Score != want {
			t.Errorf("month %d: score = %d, want %d", month, got[0].Score, want)
		}
	}
}

func TestOutOfSeasonStillRanked(t *testing.T) {
	// Seasonal bonuses only rank; a crop inside every range is kept
	// off-season with its factor points alone.
	p := exampleCrop("Marginal")
	p.Planting = ecology.Window{Start: 1, End: 1}
	p.Harvesting = ecology.Window{Start: 2, End: 2}

	got := Score(exampleEnv(), 6, nil, []ecology.Profile{p})
	if len(got) != 1 || got[0].Score != 12 {
		t.Fatalf("got %+v, want score 12", got)
	}
	if got[0].Planting || got[0].Harvesting {
		t.Fatalf("no seasonal flags expected, got %+v", got[0])
	}
}

func TestRankingOrderAndStableTies(t *testing.T) {
	best := exampleCrop("Best")
	best.Harvesting = ecology.Window{Start: 6, End: 6} // 42

	tieA := exampleCrop("TieA") // 27
	tieB := exampleCrop("TieB") // 27

	low := exampleCrop("Low")
	low.Planting = ecology.Window{Start: 1, End: 1} // 12

	excluded := exampleCrop("Excluded")
	excluded.Altitude = tol(0, 10, 0, 20)

	profiles := []ecology.Profile{low, tieA, excluded, best, tieB}
	got := Score(exampleEnv(), 6, nil, profiles)

	wantOrder := []string{"Best", "TieA", "TieB", "Low"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d crops, want %d: %+v", len(got), len(wantOrder), got)
	}
	for i, name := range wantOrder {
		if got[i].Crop != name {
			t.Errorf("position %d = %s, want %s", i, got[i].Crop, name)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("not sorted descending at %d: %d > %d", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestEmptyCatalog(t *testing.T) {
	got := Score(exampleEnv(), 6, nil, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestScorerUsesCurrentCatalog(t *testing.T) {
	reg := ecology.NewRegistry(nil)
	s := NewScorer(reg)

	if got := s.Rank(exampleEnv(), 6, nil); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %+v", got)
	}

	reg.Set(ecology.NewCatalog([]ecology.Profile{exampleCrop("Example")}))
	got := s.Rank(exampleEnv(), 6, nil)
	if len(got) != 1 || got[0].Score != 27 {
		t.Fatalf("got %+v, want one crop scoring 27", got)
	}
}
