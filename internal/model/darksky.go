package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingField = errors.New("missing field")

// DarkSkyForecast is the subset of the forecast response the screen uses.
// Pointer fields distinguish absent values from zero values.
type DarkSkyForecast struct {
	Timezone  *string           `json:"timezone"`
	Currently *DarkSkyCurrently `json:"currently"`
}

type DarkSkyCurrently struct {
	Time              *int64   `json:"time"`
	Icon              *string  `json:"icon"`
	WindSpeed         *float64 `json:"windSpeed"`
	Temperature       *float64 `json:"temperature"`
	PrecipProbability *float64 `json:"precipProbability"`
	Summary           *string  `json:"summary"`
}

// ParseForecast decodes a forecast body into a snapshot. It fails unless every field is present.
func ParseForecast(data []byte) (*WeatherSnapshot, error) {
	var f DarkSkyForecast
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Snapshot()
}

// Snapshot converts the payload, reporting the first missing field.
func (f *DarkSkyForecast) Snapshot() (*WeatherSnapshot, error) {
	if f.Timezone == nil {
		return nil, fmt.Errorf("%w: timezone", ErrMissingField)
	}
	c := f.Currently
	if c == nil {
		return nil, fmt.Errorf("%w: currently", ErrMissingField)
	}
	switch {
	case c.Time == nil:
		return nil, fmt.Errorf("%w: currently.time", ErrMissingField)
	case c.Icon == nil:
		return nil, fmt.Errorf("%w: currently.icon", ErrMissingField)
	case c.WindSpeed == nil:
		return nil, fmt.Errorf("%w: currently.windSpeed", ErrMissingField)
	case c.Temperature == nil:
		return nil, fmt.Errorf("%w: currently.temperature", ErrMissingField)
	case c.PrecipProbability == nil:
		return nil, fmt.Errorf("%w: currently.precipProbability", ErrMissingField)
	case c.Summary == nil:
		return nil, fmt.Errorf("%w: currently.summary", ErrMissingField)
	}
	return &WeatherSnapshot{
		Time:              *c.Time,
		Icon:              *c.Icon,
		WindSpeed:         *c.WindSpeed,
		Temperature:       *c.Temperature,
		PrecipProbability: *c.PrecipProbability,
		Summary:           *c.Summary,
		TimeZone:          *f.Timezone,
	}, nil
}
