package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/model"
)

var (
	ErrAPIKeyMissing    = errors.New("API key missing")
	ErrTransport        = errors.New("forecast request failed")
	ErrMalformedPayload = errors.New("malformed forecast payload")
)

// StatusError is returned for any non-success HTTP status, whatever the body says.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("forecast API returned status %d", e.StatusCode)
}

// ForecastRepository fetches current conditions for the configured location.
type ForecastRepository interface {
	GetCurrentWeather(ctx context.Context) (*model.WeatherSnapshot, error)
}

type forecastRepository struct {
	httpClient *http.Client
	apiURL     string
	units      string
	latitude   float64
	longitude  float64
	apiKey     func() string
}

// NewForecastRepository creates a repository for the configured endpoint and coordinates.
func NewForecastRepository(httpClient ...*http.Client) ForecastRepository {
	client := &http.Client{Timeout: config.GetForecastTimeout()}
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	lat, lon := config.GetLocation()
	return &forecastRepository{
		httpClient: client,
		apiURL:     config.GetForecastApiUrl(),
		units:      config.GetForecastUnits(),
		latitude:   lat,
		longitude:  lon,
		apiKey:     config.GetForecastAPIKey,
	}
}

// BuildForecastURL returns {base}/{key}/{lat},{lon}?units={units}.
func BuildForecastURL(base, apiKey string, latitude, longitude float64, units string) string {
	u := fmt.Sprintf("%s/%s/%s,%s", base, apiKey,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64))
	if units != "" {
		u += "?units=" + units
	}
	return u
}

// GetCurrentWeather issues one GET and parses the body into a snapshot.
func (r *forecastRepository) GetCurrentWeather(ctx context.Context) (*model.WeatherSnapshot, error) {
	log := config.GetLogger()

	apiKey := r.apiKey()
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	url := BuildForecastURL(r.apiURL, apiKey, r.latitude, r.longitude, r.units)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	log.Debugw("Forecast response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	snapshot, err := model.ParseForecast(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	log.Debugw("Parsed forecast", "time", snapshot.FormattedTime(), "timezone", snapshot.TimeZone)
	return snapshot, nil
}
