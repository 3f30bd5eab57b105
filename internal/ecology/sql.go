package ecology

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// profileRow mirrors one row of the crop_ecology table.
type profileRow struct {
	Crop string `db:"crop"`

	TempOptimalMin  float64 `db:"temp_optimal_min"`
	TempOptimalMax  float64 `db:"temp_optimal_max"`
	TempAbsoluteMin float64 `db:"temp_absolute_min"`
	TempAbsoluteMax float64 `db:"temp_absolute_max"`

	RainfallOptimalMin  float64 `db:"rainfall_annual_optimal_min"`
	RainfallOptimalMax  float64 `db:"rainfall_annual_optimal_max"`
	RainfallAbsoluteMin float64 `db:"rainfall_annual_absolute_min"`
	RainfallAbsoluteMax float64 `db:"rainfall_annual_absolute_max"`

	PHOptimalMin  float64 `db:"soil_ph_optimal_min"`
	PHOptimalMax  float64 `db:"soil_ph_optimal_max"`
	PHAbsoluteMin float64 `db:"soil_ph_absolute_min"`
	PHAbsoluteMax float64 `db:"soil_ph_absolute_max"`

	LatOptimalMin  float64 `db:"latitude_optimal_min"`
	LatOptimalMax  float64 `db:"latitude_optimal_max"`
	LatAbsoluteMin float64 `db:"latitude_absolute_min"`
	LatAbsoluteMax float64 `db:"latitude_absolute_max"`

	AltOptimalMin  float64 `db:"altitude_optimal_min"`
	AltOptimalMax  float64 `db:"altitude_optimal_max"`
	AltAbsoluteMin float64 `db:"altitude_absolute_min"`
	AltAbsoluteMax float64 `db:"altitude_absolute_max"`

	PlantingStart   int `db:"planting_start_month"`
	PlantingEnd     int `db:"planting_end_month"`
	HarvestingStart int `db:"harvesting_start_month"`
	HarvestingEnd   int `db:"harvesting_end_month"`
}

func (r profileRow) profile() Profile {
	return Profile{
		Crop: r.Crop,
		Temperature: Tolerance{
			Optimal:  Range{r.TempOptimalMin, r.TempOptimalMax},
			Absolute: Range{r.TempAbsoluteMin, r.TempAbsoluteMax},
		},
		Rainfall: Tolerance{
			Optimal:  Range{r.RainfallOptimalMin, r.RainfallOptimalMax},
			Absolute: Range{r.RainfallAbsoluteMin, r.RainfallAbsoluteMax},
		},
		SoilPH: Tolerance{
			Optimal:  Range{r.PHOptimalMin, r.PHOptimalMax},
			Absolute: Range{r.PHAbsoluteMin, r.PHAbsoluteMax},
		},
		Latitude: Tolerance{
			Optimal:  Range{r.LatOptimalMin, r.LatOptimalMax},
			Absolute: Range{r.LatAbsoluteMin, r.LatAbsoluteMax},
		},
		Altitude: Tolerance{
			Optimal:  Range{r.AltOptimalMin, r.AltOptimalMax},
			Absolute: Range{r.AltAbsoluteMin, r.AltAbsoluteMax},
		},
		Planting:   Window{r.PlantingStart, r.PlantingEnd},
		Harvesting: Window{r.HarvestingStart, r.HarvestingEnd},
	}
}

const selectProfiles = `
SELECT crop,
       temp_optimal_min, temp_optimal_max, temp_absolute_min, temp_absolute_max,
       rainfall_annual_optimal_min, rainfall_annual_optimal_max,
       rainfall_annual_absolute_min, rainfall_annual_absolute_max,
       soil_ph_optimal_min, soil_ph_optimal_max, soil_ph_absolute_min, soil_ph_absolute_max,
       latitude_optimal_min, latitude_optimal_max, latitude_absolute_min, latitude_absolute_max,
       altitude_optimal_min, altitude_optimal_max, altitude_absolute_min, altitude_absolute_max,
       planting_start_month, planting_end_month, harvesting_start_month, harvesting_end_month
FROM crop_ecology
ORDER BY id`

// SQLSource loads the catalog from the crop_ecology table in PostgreSQL.
type SQLSource struct {
	DB     *sqlx.DB
	Strict bool
}

// OpenSQLSource connects to dsn with the postgres driver.
func OpenSQLSource(ctx context.Context, dsn string, strict bool) (*SQLSource, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect catalog database: %w", err)
	}
	return &SQLSource{DB: db, Strict: strict}, nil
}

// Load selects every profile row in id order.
func (s *SQLSource) Load(ctx context.Context) (*Catalog, error) {
	var rows []profileRow
	if err := s.DB.SelectContext(ctx, &rows, selectProfiles); err != nil {
		return nil, fmt.Errorf("select crop_ecology: %w", err)
	}
	profiles := make([]Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.profile())
	}
	return Build(profiles, s.Strict)
}

// Close releases the database handle.
func (s *SQLSource) Close() error {
	return s.DB.Close()
}
