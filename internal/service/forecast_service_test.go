package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fakhrymubarak/moonshine/internal/model"
	"github.com/fakhrymubarak/moonshine/internal/network"
	"github.com/fakhrymubarak/moonshine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock repository for testing
type mockForecastRepository struct {
	calls     int32
	responses []*model.WeatherSnapshot
	err       error
}

func (m *mockForecastRepository) GetCurrentWeather(ctx context.Context) (*model.WeatherSnapshot, error) {
	i := atomic.AddInt32(&m.calls, 1) - 1
	if m.err != nil {
		return nil, m.err
	}
	return m.responses[int(i)%len(m.responses)], nil
}

var _ ForecastServiceInterface = (*ForecastService)(nil)

func waitResult(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not invoked")
		return result{}
	}
}

type result struct {
	snapshot *model.WeatherSnapshot
	err      error
}

func TestForecastService_GetForecast(t *testing.T) {
	tests := []struct {
		name        string
		repo        *mockForecastRepository
		expectError bool
	}{
		{
			name:        "Successful forecast retrieval",
			repo:        &mockForecastRepository{responses: []*model.WeatherSnapshot{{Summary: "Clear", TimeZone: "UTC"}}},
			expectError: false,
		},
		{
			name:        "Repository error",
			repo:        &mockForecastRepository{err: &repository.StatusError{StatusCode: 403}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &ForecastService{ForecastRepo: tt.repo, Network: network.Static(true)}
			snap, err := service.GetForecast(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, snap)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Clear", snap.Summary)
		})
	}
}

func TestForecastService_GetForecast_NilContext(t *testing.T) {
	repo := &mockForecastRepository{responses: []*model.WeatherSnapshot{{Summary: "Fog"}}}
	service := &ForecastService{ForecastRepo: repo, Network: network.Static(true)}
	//nolint:staticcheck // nil context is tolerated
	snap, err := service.GetForecast(nil)
	require.NoError(t, err)
	assert.Equal(t, "Fog", snap.Summary)
}

func TestForecastService_FetchAsync_Success(t *testing.T) {
	snap := &model.WeatherSnapshot{Summary: "Rain", Icon: "rain", TimeZone: "UTC"}
	service := NewForecastService(&mockForecastRepository{responses: []*model.WeatherSnapshot{snap}}, network.Static(true))

	ch := make(chan result, 1)
	err := service.FetchAsync(context.Background(), func(s *model.WeatherSnapshot, err error) {
		ch <- result{s, err}
	})
	require.NoError(t, err)

	r := waitResult(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, snap, r.snapshot)
}

func TestForecastService_FetchAsync_Failure(t *testing.T) {
	service := NewForecastService(&mockForecastRepository{err: repository.ErrTransport}, network.Static(true))

	ch := make(chan result, 1)
	require.NoError(t, service.FetchAsync(context.Background(), func(s *model.WeatherSnapshot, err error) {
		ch <- result{s, err}
	}))

	r := waitResult(t, ch)
	assert.Nil(t, r.snapshot)
	assert.True(t, errors.Is(r.err, repository.ErrTransport))
}

func TestForecastService_FetchAsync_Offline(t *testing.T) {
	repo := &mockForecastRepository{responses: []*model.WeatherSnapshot{{}}}
	service := NewForecastService(repo, network.Static(false))

	var invoked int32
	err := service.FetchAsync(context.Background(), func(*model.WeatherSnapshot, error) {
		atomic.AddInt32(&invoked, 1)
	})
	assert.ErrorIs(t, err, ErrNetworkUnavailable)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&repo.calls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&invoked))
}

func TestForecastService_FetchAsync_BackToBack(t *testing.T) {
	first := &model.WeatherSnapshot{Summary: "Rain", Time: 1}
	second := &model.WeatherSnapshot{Summary: "Snow", Time: 2}
	repo := &mockForecastRepository{responses: []*model.WeatherSnapshot{first, second}}
	service := NewForecastService(repo, network.Static(true))

	var mu sync.Mutex
	var got []*model.WeatherSnapshot
	var wg sync.WaitGroup
	wg.Add(2)
	cb := func(s *model.WeatherSnapshot, err error) {
		defer wg.Done()
		assert.NoError(t, err)
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	}
	require.NoError(t, service.FetchAsync(context.Background(), cb))
	require.NoError(t, service.FetchAsync(context.Background(), cb))
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&repo.calls))
	assert.ElementsMatch(t, []*model.WeatherSnapshot{first, second}, got)
}

func TestNewForecastService_Defaults(t *testing.T) {
	service := NewForecastService(nil, nil)
	require.NotNil(t, service)
	assert.NotNil(t, service.ForecastRepo)
	assert.True(t, service.NetworkAvailable())
}
