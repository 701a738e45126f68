package service

import (
	"context"
	"errors"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/model"
	"github.com/fakhrymubarak/moonshine/internal/network"
	"github.com/fakhrymubarak/moonshine/internal/repository"
)

var ErrNetworkUnavailable = errors.New("network is unavailable")

// Callback receives the outcome of one asynchronous fetch. It runs on the fetch goroutine.
type Callback func(snapshot *model.WeatherSnapshot, err error)

type ForecastServiceInterface interface {
	NetworkAvailable() bool
	GetForecast(ctx context.Context) (*model.WeatherSnapshot, error)
	FetchAsync(ctx context.Context, done Callback) error
}

type ForecastService struct {
	ForecastRepo repository.ForecastRepository
	Network      network.Checker
}

func NewForecastService(repo repository.ForecastRepository, checker network.Checker) *ForecastService {
	if repo == nil {
		repo = repository.NewForecastRepository()
	}
	if checker == nil {
		checker = network.NewChecker()
	}
	return &ForecastService{
		ForecastRepo: repo,
		Network:      checker,
	}
}

func (s *ForecastService) NetworkAvailable() bool {
	return s.Network.IsNetworkAvailable()
}

// GetForecast performs one synchronous fetch.
func (s *ForecastService) GetForecast(ctx context.Context) (*model.WeatherSnapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	snapshot, err := s.ForecastRepo.GetCurrentWeather(ctx)
	if err != nil {
		config.GetLogger().Errorw("Forecast fetch failed", "error", err)
		return nil, err
	}
	config.GetLogger().Infow("Forecast fetched",
		"summary", snapshot.Summary,
		"temperature", snapshot.Temperature,
		"timezone", snapshot.TimeZone)
	return snapshot, nil
}

// FetchAsync starts one fetch in its own goroutine and reports the result to done.
// When the network is down it returns ErrNetworkUnavailable and makes no request.
// Calls are independent: a second call does not wait for or cancel the first.
func (s *ForecastService) FetchAsync(ctx context.Context, done Callback) error {
	if !s.NetworkAvailable() {
		config.GetLogger().Warnw("Skipping forecast fetch, network unavailable")
		return ErrNetworkUnavailable
	}
	go func() {
		snapshot, err := s.GetForecast(ctx)
		done(snapshot, err)
	}()
	return nil
}
