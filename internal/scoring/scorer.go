// Package scoring ranks crops by how well their ecological tolerances match
// an environment snapshot and the calendar month.
package scoring

import (
	"sort"

	"github.com/i474232898/crop-recommendation/internal/ecology"
	"github.com/i474232898/crop-recommendation/internal/environment"
)

const (
	optimalPoints  = 3
	absolutePoints = 1
	// exclusionPenalty outweighs every bonus combined, so a single factor
	// outside its absolute range always removes the crop.
	exclusionPenalty = -100
	seasonBonus      = 15
)

// ScoredCrop is one entry of a ranking.
type ScoredCrop struct {
	Crop       string `json:"crop"`
	Score      int    `json:"score"`
	Planting   bool   `json:"planting"`
	Harvesting bool   `json:"harvesting"`
}

// Score evaluates every profile against env and month and returns the crops
// with a positive score, best first. Ties keep catalog order. soilPH is
// optional; when nil the pH factor is skipped entirely.
func Score(env environment.AggregatedEnvironment, month int, soilPH *float64, profiles []ecology.Profile) []ScoredCrop {
	ranked := make([]ScoredCrop, 0, len(profiles))
	for _, p := range profiles {
		sc := scoreProfile(p, env, month, soilPH)
		if sc.Score > 0 {
			ranked = append(ranked, sc)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func scoreProfile(p ecology.Profile, env environment.AggregatedEnvironment, month int, soilPH *float64) ScoredCrop {
	score := factor(p.Temperature, env.TemperatureC) +
		factor(p.Rainfall, env.AnnualRainfallMM) +
		factor(p.Latitude, env.Latitude) +
		factor(p.Altitude, env.AltitudeM)
	if soilPH != nil {
		score += factor(p.SoilPH, *soilPH)
	}

	sc := ScoredCrop{
		Crop:       p.Crop,
		Planting:   p.Planting.Contains(month),
		Harvesting: p.Harvesting.Contains(month),
	}
	if sc.Planting {
		score += seasonBonus
	}
	if sc.Harvesting {
		score += seasonBonus
	}
	sc.Score = score
	return sc
}

func factor(t ecology.Tolerance, v float64) int {
	switch {
	case t.Optimal.Contains(v):
		return optimalPoints
	case t.Absolute.Contains(v):
		return absolutePoints
	default:
		return exclusionPenalty
	}
}

// CatalogProvider exposes the catalog currently in use.
type CatalogProvider interface {
	Current() *ecology.Catalog
}

// Scorer scores against whatever catalog its provider currently serves.
type Scorer struct {
	catalogs CatalogProvider
}

// NewScorer creates a Scorer bound to catalogs.
func NewScorer(catalogs CatalogProvider) *Scorer {
	return &Scorer{catalogs: catalogs}
}

// Rank scores env against the current catalog.
func (s *Scorer) Rank(env environment.AggregatedEnvironment, month int, soilPH *float64) []ScoredCrop {
	return Score(env, month, soilPH, s.catalogs.Current().Profiles())
}
