package environment

import (
	"errors"
	"fmt"
)

// Source identifies which upstream fetch failed.
type Source string

const (
	SourceRainfall  Source = "rainfall"
	SourceElevation Source = "elevation"
	SourceWeather   Source = "weather"
)

// ErrNoData is wrapped by providers when a response lacks the expected fields.
var ErrNoData = errors.New("no data in response")

// FetchError reports that one of the environment sources could not be used,
// whether it was unreachable, timed out, or answered without the expected
// fields.
type FetchError struct {
	Source Source
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
