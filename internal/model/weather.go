package model

import (
	"math"
	"time"
	_ "time/tzdata"
)

// WeatherSnapshot holds the current conditions parsed from one forecast response.
type WeatherSnapshot struct {
	Time              int64   `json:"time"`
	Icon              string  `json:"icon"`
	WindSpeed         float64 `json:"windSpeed"`
	Temperature       float64 `json:"temperature"`
	PrecipProbability float64 `json:"precipProbability"`
	Summary           string  `json:"summary"`
	TimeZone          string  `json:"timezone"`
}

// Location resolves TimeZone, falling back to UTC for unknown names.
func (w *WeatherSnapshot) Location() *time.Location {
	loc, err := time.LoadLocation(w.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormattedTime renders the observation time as a local clock time, e.g. "3:04 PM".
func (w *WeatherSnapshot) FormattedTime() string {
	return time.Unix(w.Time, 0).In(w.Location()).Format("3:04 PM")
}

// PrecipChance is the precipitation probability as a whole percentage.
func (w *WeatherSnapshot) PrecipChance() int {
	return int(math.Round(w.PrecipProbability * 100))
}

func (w *WeatherSnapshot) RoundedTemperature() int {
	return int(math.Round(w.Temperature))
}

// WeatherView is the display-ready form of a snapshot.
type WeatherView struct {
	Time         string  `json:"time"`
	Temperature  int     `json:"temperature"`
	WindSpeed    float64 `json:"windSpeed"`
	WindUnit     string  `json:"windUnit"`
	PrecipChance int     `json:"precipChance"`
	Summary      string  `json:"summary"`
	Icon         string  `json:"icon"`
	IconAsset    string  `json:"iconAsset"`
}

// WindUnit returns the wind speed label for a Dark Sky unit system.
func WindUnit(units string) string {
	switch units {
	case "ca":
		return "km/h"
	case "us", "uk2":
		return "mph"
	default:
		return "m/s"
	}
}
