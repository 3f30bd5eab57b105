package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/crop-recommendation/internal/ecology"
	"github.com/i474232898/crop-recommendation/internal/environment"
	"github.com/i474232898/crop-recommendation/internal/recommend"
)

var validate = validator.New()

// CatalogProvider exposes the catalog currently served.
type CatalogProvider interface {
	Current() *ecology.Catalog
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, pipeline *recommend.Pipeline, catalogs CatalogProvider) {
	v1 := app.Group("/api/v1")

	v1.Post("/recommendations", func(c *fiber.Ctx) error {
		var body locationBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		q, err := body.toQuery()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return recommendHandler(c, pipeline, q)
	})

	v1.Get("/recommendations", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return recommendHandler(c, pipeline, q)
	})

	v1.Get("/environment", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		env, err := pipeline.Environment(c.UserContext(), q)
		if err != nil {
			return mapPipelineError(err)
		}
		return c.JSON(env)
	})

	v1.Get("/scores", func(c *fiber.Ctx) error {
		q, err := parseConditionsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		crops, err := pipeline.Score(q)
		if err != nil {
			return mapPipelineError(err)
		}
		return c.JSON(fiber.Map{
			"month": q.Month,
			"crops": crops,
		})
	})

	v1.Get("/crops", func(c *fiber.Ctx) error {
		cat := catalogs.Current()
		return c.JSON(fiber.Map{
			"count": cat.Len(),
			"crops": cat.Profiles(),
		})
	})
}

func recommendHandler(c *fiber.Ctx, pipeline *recommend.Pipeline, q recommend.LocationQuery) error {
	rec, err := pipeline.Recommend(c.UserContext(), q)
	if err != nil {
		return mapPipelineError(err)
	}
	return c.JSON(rec)
}

// mapPipelineError turns pipeline errors into HTTP errors. Fetch details stay
// in the server logs.
func mapPipelineError(err error) error {
	var verr *recommend.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	}
	var ferr *environment.FetchError
	if errors.As(err, &ferr) {
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch environmental data")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to build recommendation")
}

// locationBody is the JSON body of POST /recommendations.
type locationBody struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	SoilPH    *float64 `json:"soil_ph"`
}

func (b locationBody) toQuery() (recommend.LocationQuery, error) {
	if err := validate.Struct(b); err != nil {
		return recommend.LocationQuery{}, errors.New("latitude and longitude are required")
	}
	return recommend.LocationQuery{
		Latitude:  *b.Latitude,
		Longitude: *b.Longitude,
		SoilPH:    b.SoilPH,
	}, nil
}

func parseLocationQuery(c *fiber.Ctx) (recommend.LocationQuery, error) {
	var q recommend.LocationQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("lon must be a number")
	}
	q.Latitude, q.Longitude = lat, lon

	if phStr := c.Query("soil_ph"); phStr != "" {
		ph, err := strconv.ParseFloat(phStr, 64)
		if err != nil {
			return q, errors.New("soil_ph must be a number")
		}
		q.SoilPH = &ph
	}

	return q, nil
}

// parseConditionsQuery reads temp, rainfall, altitude, latitude and month
// (all required) and an optional ph.
func parseConditionsQuery(c *fiber.Ctx) (recommend.ConditionsQuery, error) {
	var q recommend.ConditionsQuery

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"temp", &q.TemperatureC},
		{"rainfall", &q.Rainfall},
		{"altitude", &q.AltitudeM},
		{"latitude", &q.Latitude},
	} {
		raw := c.Query(f.name)
		if raw == "" {
			return q, fmt.Errorf("%s query parameter is required", f.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = v
	}

	raw := c.Query("month")
	if raw == "" {
		return q, errors.New("month query parameter is required")
	}
	month, err := strconv.Atoi(raw)
	if err != nil {
		return q, errors.New("month must be an integer")
	}
	q.Month = month

	if phStr := c.Query("ph"); phStr != "" {
		ph, err := strconv.ParseFloat(phStr, 64)
		if err != nil {
			return q, errors.New("ph must be a number")
		}
		q.SoilPH = &ph
	}

	return q, nil
}
