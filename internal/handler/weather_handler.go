package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/model"
	"github.com/fakhrymubarak/moonshine/internal/repository"
	"github.com/fakhrymubarak/moonshine/internal/service"
	"github.com/fakhrymubarak/moonshine/internal/view"
)

// Refresher starts a user-initiated fetch.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type WeatherHandler struct {
	Snapshots repository.SnapshotStore
	Refresher Refresher
	Units     string
	// Ctx outlives single requests; refreshes started over HTTP run under it.
	Ctx context.Context
}

func NewWeatherHandler(ctx context.Context, snapshots repository.SnapshotStore, refresher Refresher) *WeatherHandler {
	return &WeatherHandler{
		Snapshots: snapshots,
		Refresher: refresher,
		Units:     config.GetForecastUnits(),
		Ctx:       ctx,
	}
}

// Routes registers the weather endpoints, each wrapped by wrap when it is non-nil.
func (h *WeatherHandler) Routes(wrap func(http.Handler) http.Handler) *http.ServeMux {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}
	mux := http.NewServeMux()
	mux.Handle("/weather", wrap(http.HandlerFunc(h.HandleWeather)))
	mux.Handle("/weather/refresh", wrap(http.HandlerFunc(h.HandleRefresh)))
	return mux
}

func (h *WeatherHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *WeatherHandler) methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	h.writeJSONResponse(w, http.StatusMethodNotAllowed, model.ErrorResponse("Error", "Method not allowed"))
}

// HandleWeather serves the latest snapshot as display values.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, http.MethodGet)
		return
	}

	snapshot, err := h.Snapshots.Latest(r.Context())
	if errors.Is(err, repository.ErrNoSnapshot) {
		h.writeJSONResponse(w, http.StatusServiceUnavailable, model.ErrorResponse("Error", "No weather data yet"))
		return
	}
	if err != nil {
		config.GetLogger().Errorw("Could not read snapshot", "error", err)
		h.writeJSONResponse(w, http.StatusInternalServerError, model.ErrorResponse("Error", "Failed to read weather data"))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, model.SuccessResponse(view.BuildView(snapshot, h.Units, view.DefaultIcons)))
}

// HandleRefresh starts a fetch, like the refresh control on the screen.
func (h *WeatherHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	ctx := h.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.Refresher.Refresh(ctx); err != nil {
		if errors.Is(err, service.ErrNetworkUnavailable) {
			h.writeJSONResponse(w, http.StatusServiceUnavailable, model.ErrorResponse("Error", view.NetworkUnavailableNotice))
			return
		}
		h.writeJSONResponse(w, http.StatusInternalServerError, model.ErrorResponse("Error", "Failed to start refresh"))
		return
	}
	h.writeJSONResponse(w, http.StatusAccepted, model.Response{Message: "Refresh started"})
}
