package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/model"
	"github.com/fakhrymubarak/moonshine/internal/repository"
	"github.com/fakhrymubarak/moonshine/internal/service"
)

// State is a copy of what the screen currently shows.
type State struct {
	Loading        bool
	RefreshVisible bool
	Snapshot       *model.WeatherSnapshot
	View           *model.WeatherView
	Dialog         *Dialog
	Notice         string
}

// Screen is the single weather screen. Its fields below the dependencies are
// owned by the loop goroutine and must only be touched from posted tasks.
type Screen struct {
	loop    *Loop
	out     io.Writer
	service service.ForecastServiceInterface
	store   repository.SnapshotStore
	icons   IconResolver
	units   string

	inFlight int
	snapshot *model.WeatherSnapshot
	view     *model.WeatherView
	dialog   *Dialog
	notice   string
	closed   bool
}

func NewScreen(loop *Loop, out io.Writer, svc service.ForecastServiceInterface, store repository.SnapshotStore, units string) *Screen {
	if store == nil {
		store = repository.NewMemorySnapshotStore()
	}
	return &Screen{
		loop:    loop,
		out:     out,
		service: svc,
		store:   store,
		icons:   DefaultIcons,
		units:   units,
	}
}

// BuildView projects a snapshot into display values.
func BuildView(snapshot *model.WeatherSnapshot, units string, icons IconResolver) *model.WeatherView {
	icon := icons.Resolve(snapshot.Icon)
	return &model.WeatherView{
		Time:         snapshot.FormattedTime(),
		Temperature:  snapshot.RoundedTemperature(),
		WindSpeed:    snapshot.WindSpeed,
		WindUnit:     model.WindUnit(units),
		PrecipChance: snapshot.PrecipChance(),
		Summary:      snapshot.Summary,
		Icon:         snapshot.Icon,
		IconAsset:    icon.Asset,
	}
}

// Refresh starts one fetch, as a tap on the refresh control does. It returns
// service.ErrNetworkUnavailable when offline, after showing the notice; the
// progress indicator is not shown in that case.
func (s *Screen) Refresh(ctx context.Context) error {
	if !s.service.NetworkAvailable() {
		s.loop.Post(func() { s.showNotice(NetworkUnavailableNotice) })
		return service.ErrNetworkUnavailable
	}
	s.loop.Post(s.fetchStarted)
	err := s.service.FetchAsync(ctx, s.onForecast)
	if err != nil {
		// connectivity dropped between the two checks
		s.loop.Post(func() {
			s.fetchFinished()
			s.render()
			if errors.Is(err, service.ErrNetworkUnavailable) {
				s.showNotice(NetworkUnavailableNotice)
			} else {
				s.showErrorDialog()
			}
		})
		return err
	}
	return nil
}

// onForecast runs on the fetch goroutine. The snapshot is saved from the loop
// so the holder and the screen always agree and nothing is saved after Close.
func (s *Screen) onForecast(snapshot *model.WeatherSnapshot, err error) {
	if err != nil {
		config.GetLogger().Errorw("Could not load forecast", "error", err)
		s.loop.Post(func() {
			s.fetchFinished()
			s.showErrorDialog()
		})
		return
	}
	s.loop.Post(func() {
		s.fetchFinished()
		if s.closed {
			return
		}
		if err := s.store.Save(context.Background(), snapshot); err != nil {
			config.GetLogger().Warnw("Could not save snapshot", "error", err)
		}
		s.updateViews(snapshot)
	})
}

// DismissDialog closes the error dialog, if one is showing.
func (s *Screen) DismissDialog() {
	s.loop.Post(func() {
		if s.dialog == nil {
			return
		}
		s.dialog = nil
		s.render()
	})
}

// State returns a copy of the screen state read on the loop goroutine.
func (s *Screen) State() State {
	var st State
	s.loop.Call(func() {
		st = State{
			Loading:        s.inFlight > 0,
			RefreshVisible: s.inFlight == 0,
			Notice:         s.notice,
		}
		if s.snapshot != nil {
			snap := *s.snapshot
			st.Snapshot = &snap
		}
		if s.view != nil {
			v := *s.view
			st.View = &v
		}
		if s.dialog != nil {
			d := *s.dialog
			st.Dialog = &d
		}
	})
	return st
}

// Close discards the snapshot. Later updates are ignored.
func (s *Screen) Close(ctx context.Context) error {
	s.loop.Call(func() {
		s.closed = true
		s.snapshot = nil
		s.view = nil
	})
	return s.store.Clear(ctx)
}

func (s *Screen) fetchStarted() {
	s.inFlight++
	s.render()
}

func (s *Screen) fetchFinished() {
	if s.inFlight > 0 {
		s.inFlight--
	}
}

func (s *Screen) updateViews(snapshot *model.WeatherSnapshot) {
	if s.closed {
		return
	}
	s.snapshot = snapshot
	s.view = BuildView(snapshot, s.units, s.icons)
	s.render()
}

func (s *Screen) showErrorDialog() {
	s.dialog = GenericErrorDialog()
	s.render()
}

func (s *Screen) showNotice(msg string) {
	s.notice = msg
	if s.closed {
		return
	}
	fmt.Fprintln(s.out, msg)
}

func (s *Screen) render() {
	if s.closed {
		return
	}
	var b strings.Builder
	b.WriteString("----------------------------------------\n")
	if v := s.view; v != nil {
		icon := s.icons.Resolve(v.Icon)
		fmt.Fprintf(&b, "The weather at %s is\n", v.Time)
		fmt.Fprintf(&b, "%d°  %s %s\n", v.Temperature, icon.Glyph, v.IconAsset)
		fmt.Fprintf(&b, "Wind: %s %s   Precip: %d%%\n",
			strconv.FormatFloat(v.WindSpeed, 'f', -1, 64), v.WindUnit, v.PrecipChance)
		fmt.Fprintf(&b, "%s\n", v.Summary)
	} else {
		b.WriteString("--\n")
	}
	if s.inFlight > 0 {
		b.WriteString("Refreshing...\n")
	} else {
		b.WriteString("[r] refresh  [q] quit\n")
	}
	if s.dialog != nil {
		b.WriteString(s.dialog.String())
	}
	_, _ = io.WriteString(s.out, b.String())
}
