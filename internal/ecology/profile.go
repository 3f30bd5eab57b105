package ecology

import (
	"errors"
	"fmt"
	"math"
)

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in the closed interval.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Covers reports whether o lies entirely inside r.
func (r Range) Covers(o Range) bool {
	return r.Min <= o.Min && o.Max <= r.Max
}

// Tolerance pairs the optimal and absolute ranges for one factor.
type Tolerance struct {
	Optimal  Range `json:"optimal" yaml:"optimal"`
	Absolute Range `json:"absolute" yaml:"absolute"`
}

// Window is a month interval. Start > End means it wraps across year-end,
// so {11, 2} covers Nov, Dec, Jan and Feb.
type Window struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether month (1..12) falls inside the window.
func (w Window) Contains(month int) bool {
	if w.Start <= w.End {
		return w.Start <= month && month <= w.End
	}
	return month >= w.Start || month <= w.End
}

// Profile is the ecological tolerance of a single crop.
type Profile struct {
	Crop        string    `json:"crop" yaml:"crop"`
	Temperature Tolerance `json:"temperature" yaml:"temperature"`
	Rainfall    Tolerance `json:"rainfall" yaml:"rainfall"`
	SoilPH      Tolerance `json:"soilPh" yaml:"soil_ph"`
	Latitude    Tolerance `json:"latitude" yaml:"latitude"`
	Altitude    Tolerance `json:"altitude" yaml:"altitude"`
	Planting    Window    `json:"planting" yaml:"planting"`
	Harvesting  Window    `json:"harvesting" yaml:"harvesting"`
}

var (
	// ErrMalformedProfile marks problems that make a profile unusable.
	ErrMalformedProfile = errors.New("malformed crop profile")
	// ErrInconsistentProfile marks profiles that can be scored but whose
	// ranges disagree with each other (inverted, or optimal outside absolute).
	ErrInconsistentProfile = errors.New("inconsistent crop profile")
)

// Validate checks the profile. It returns an error wrapping
// ErrMalformedProfile for missing names, NaN bounds or months outside 1..12,
// and an error wrapping ErrInconsistentProfile for range problems.
func (p Profile) Validate() error {
	if p.Crop == "" {
		return fmt.Errorf("%w: empty crop name", ErrMalformedProfile)
	}
	for _, w := range []struct {
		name string
		w    Window
	}{{"planting", p.Planting}, {"harvesting", p.Harvesting}} {
		if !validMonth(w.w.Start) || !validMonth(w.w.End) {
			return fmt.Errorf("%w: %s: %s window %d-%d outside 1..12",
				ErrMalformedProfile, p.Crop, w.name, w.w.Start, w.w.End)
		}
	}

	for _, f := range p.factors() {
		for _, v := range []float64{f.tol.Optimal.Min, f.tol.Optimal.Max, f.tol.Absolute.Min, f.tol.Absolute.Max} {
			if math.IsNaN(v) {
				return fmt.Errorf("%w: %s: %s range has NaN bound", ErrMalformedProfile, p.Crop, f.name)
			}
		}
	}

	var problems []error
	for _, f := range p.factors() {
		t := f.tol
		if t.Optimal.Min > t.Optimal.Max {
			problems = append(problems, fmt.Errorf("%s optimal range inverted (%g > %g)", f.name, t.Optimal.Min, t.Optimal.Max))
		}
		if t.Absolute.Min > t.Absolute.Max {
			problems = append(problems, fmt.Errorf("%s absolute range inverted (%g > %g)", f.name, t.Absolute.Min, t.Absolute.Max))
		}
		if !t.Absolute.Covers(t.Optimal) {
			problems = append(problems, fmt.Errorf("%s optimal range [%g, %g] not within absolute [%g, %g]",
				f.name, t.Optimal.Min, t.Optimal.Max, t.Absolute.Min, t.Absolute.Max))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s: %w", ErrInconsistentProfile, p.Crop, errors.Join(problems...))
	}
	return nil
}

type namedTolerance struct {
	name string
	tol  Tolerance
}

func (p Profile) factors() []namedTolerance {
	return []namedTolerance{
		{"temperature", p.Temperature},
		{"rainfall", p.Rainfall},
		{"soil pH", p.SoilPH},
		{"latitude", p.Latitude},
		{"altitude", p.Altitude},
	}
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}
