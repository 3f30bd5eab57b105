package ecology

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
)

// column binds a CSV header to the profile field it fills.
type column struct {
	header string
	set    func(p *Profile, v float64)
	month  bool
}

var numericColumns = []column{
	{"Ecology_Temp_Optimal_Min", func(p *Profile, v float64) { p.Temperature.Optimal.Min = v }, false},
	{"Ecology_Temp_Optimal_Max", func(p *Profile, v float64) { p.Temperature.Optimal.Max = v }, false},
	{"Ecology_Temp_Absolute_Min", func(p *Profile, v float64) { p.Temperature.Absolute.Min = v }, false},
	{"Ecology_Temp_Absolute_Max", func(p *Profile, v float64) { p.Temperature.Absolute.Max = v }, false},
	{"Ecology_Rainfall_Annual_Optimal_Min", func(p *Profile, v float64) { p.Rainfall.Optimal.Min = v }, false},
	{"Ecology_Rainfall_Annual_Optimal_Max", func(p *Profile, v float64) { p.Rainfall.Optimal.Max = v }, false},
	{"Ecology_Rainfall_Annual_Absolute_Min", func(p *Profile, v float64) { p.Rainfall.Absolute.Min = v }, false},
	{"Ecology_Rainfall_Annual_Absolute_Max", func(p *Profile, v float64) { p.Rainfall.Absolute.Max = v }, false},
	{"Ecology_Soil_PH_Optimal_Min", func(p *Profile, v float64) { p.SoilPH.Optimal.Min = v }, false},
	{"Ecology_Soil_PH_Optimal_Max", func(p *Profile, v float64) { p.SoilPH.Optimal.Max = v }, false},
	{"Ecology_Soil_PH_Absolute_Min", func(p *Profile, v float64) { p.SoilPH.Absolute.Min = v }, false},
	{"Ecology_Soil_PH_Absolute_Max", func(p *Profile, v float64) { p.SoilPH.Absolute.Max = v }, false},
	{"Ecology_Latitude_Optimal_Min", func(p *Profile, v float64) { p.Latitude.Optimal.Min = v }, false},
	{"Ecology_Latitude_Optimal_Max", func(p *Profile, v float64) { p.Latitude.Optimal.Max = v }, false},
	{"Ecology_Latitude_Absolute_Min", func(p *Profile, v float64) { p.Latitude.Absolute.Min = v }, false},
	{"Ecology_Latitude_Absolute_Max", func(p *Profile, v float64) { p.Latitude.Absolute.Max = v }, false},
	{"Ecology_Altitude_Optimal_Min", func(p *Profile, v float64) { p.Altitude.Optimal.Min = v }, false},
	{"Ecology_Altitude_Optimal_Max", func(p *Profile, v float64) { p.Altitude.Optimal.Max = v }, false},
	{"Ecology_Altitude_Absolute_Min", func(p *Profile, v float64) { p.Altitude.Absolute.Min = v }, false},
	{"Ecology_Altitude_Absolute_Max", func(p *Profile, v float64) { p.Altitude.Absolute.Max = v }, false},
	{"Planting_Start_Month", func(p *Profile, v float64) { p.Planting.Start = int(v) }, true},
	{"Planting_End_Month", func(p *Profile, v float64) { p.Planting.End = int(v) }, true},
	{"Harvesting_Start_Month", func(p *Profile, v float64) { p.Harvesting.Start = int(v) }, true},
	{"Harvesting_End_Month", func(p *Profile, v float64) { p.Harvesting.End = int(v) }, true},
}

const cropColumn = "Crop"

var errMissingColumn = errors.New("missing column")

// ParseCSV reads crop profiles from a CSV table with one header row.
// Columns are located by header name; extra columns (including the
// "Unnamed: N" index columns spreadsheet exports add) are ignored.
//
// Rows with unparsable or non-finite numbers or fractional months are skipped
// with a warning, or fail the parse when strict is set.
func ParseCSV(r io.Reader, strict bool) ([]Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" || strings.HasPrefix(h, "Unnamed") {
			continue
		}
		index[h] = i
	}

	cropIdx, ok := index[cropColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errMissingColumn, cropColumn)
	}
	for _, c := range numericColumns {
		if _, ok := index[c.header]; !ok {
			return nil, fmt.Errorf("%w: %s", errMissingColumn, c.header)
		}
	}

	var profiles []Profile
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		p, err := parseRecord(rec, cropIdx, index)
		if err != nil {
			err = fmt.Errorf("%w: line %d: %w", ErrMalformedProfile, line, err)
			if strict {
				return nil, err
			}
			log.Printf("WARN: catalog: skipping row: %v", err)
			continue
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

func parseRecord(rec []string, cropIdx int, index map[string]int) (Profile, error) {
	var p Profile
	if cropIdx >= len(rec) {
		return p, fmt.Errorf("short row (%d fields)", len(rec))
	}
	p.Crop = strings.TrimSpace(rec[cropIdx])

	for _, c := range numericColumns {
		i := index[c.header]
		if i >= len(rec) {
			return p, fmt.Errorf("%s: missing value", c.header)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return p, fmt.Errorf("%s: %w", c.header, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return p, fmt.Errorf("%s: not a finite number", c.header)
		}
		if c.month && v != math.Trunc(v) {
			return p, fmt.Errorf("%s: month %g is not a whole number", c.header, v)
		}
		c.set(&p, v)
	}
	return p, nil
}
