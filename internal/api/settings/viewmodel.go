package settings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

const (
	// DefaultPulseDuration is how long the "saved" indicator stays on.
	DefaultPulseDuration = 1200 * time.Millisecond

	// ErrSaveFailedMessage is shown when a write to storage fails.
	ErrSaveFailedMessage = "Could not save your settings right now. Check the settings storage and try again."
)

// Status is the save indicator shown next to the settings form.
type Status struct {
	Saving    bool       `json:"saving"`
	SavedAt   *time.Time `json:"savedAt,omitempty"`
	SavePulse bool       `json:"savePulse"`
	Error     string     `json:"error,omitempty"`
}

// State is everything the settings view renders.
type State struct {
	Settings types.SettingsRecord `json:"settings"`
	Status   Status               `json:"status"`
}

// Action is one of Load, Patch, Reset or SetStatus.
type Action interface {
	isAction()
}

// Load replaces the settings wholesale.
type Load struct {
	Settings types.SettingsRecord
}

// Patch overlays a partial record on the live settings.
type Patch struct {
	Patch types.StoredSettingsRecord
}

// Reset replaces the settings and reports an immediate save at At.
type Reset struct {
	Settings types.SettingsRecord
	At       time.Time
}

// SetStatus updates only the status fields that are set.
type SetStatus struct {
	Saving     *bool
	SavedAt    *time.Time
	SavePulse  *bool
	Error      *string
	ClearError bool
}

func (Load) isAction()      {}
func (Patch) isAction()     {}
func (Reset) isAction()     {}
func (SetStatus) isAction() {}

// Reduce applies action to state and returns the new state.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case Load:
		state.Settings = a.Settings
	case Patch:
		state.Settings = Overlay(state.Settings, &a.Patch)
	case Reset:
		at := a.At
		state = State{
			Settings: a.Settings,
			Status:   Status{SavedAt: &at, SavePulse: true},
		}
	case SetStatus:
		set(&state.Status.Saving, a.Saving)
		set(&state.Status.SavePulse, a.SavePulse)
		if a.SavedAt != nil {
			at := *a.SavedAt
			state.Status.SavedAt = &at
		}
		if a.ClearError {
			state.Status.Error = ""
		}
		set(&state.Status.Error, a.Error)
	}
	return state
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPulseDuration overrides DefaultPulseDuration. Zero or less keeps the
// pulse on until the next action.
func WithPulseDuration(d time.Duration) SessionOption {
	return func(s *Session) { s.pulse = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// Session owns the settings state of one view. Its operations never return
// errors; failures end up in State().Status.
type Session struct {
	mu      sync.Mutex
	state   State
	adapter Adapter
	theme   ThemeOwner
	logger  *slog.Logger
	now     func() time.Time
	pulse   time.Duration
	timer   *time.Timer
}

func NewSession(adapter Adapter, theme ThemeOwner, logger *slog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		state:   State{Settings: Merge(nil, theme)},
		adapter: adapter,
		theme:   theme,
		logger:  logger,
		now:     time.Now,
		pulse:   DefaultPulseDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and returns the resulting state.
func (s *Session) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
	return s.state
}

// Load reads storage, merges it with the defaults and replaces the settings.
func (s *Session) Load(ctx context.Context) State {
	stored := s.adapter.Load(ctx)
	return s.Dispatch(Load{Settings: Merge(stored, s.theme)})
}

// Update patches the live settings. In per-field mode the patch is written
// immediately; in whole-object mode it waits for Save.
func (s *Session) Update(ctx context.Context, patch types.StoredSettingsRecord) State {
	state := s.Dispatch(Patch{Patch: patch})
	if s.adapter.Mode() != ModePerField {
		return state
	}
	if err := s.adapter.Write(ctx, forStorage(patch, s.theme)); err != nil {
		return s.fail(ctx, err)
	}
	return s.saved()
}

// Save writes the whole record, without theme unless it is owned locally.
func (s *Session) Save(ctx context.Context) State {
	state := s.Dispatch(SetStatus{Saving: types.Ptr(true), ClearError: true})
	if err := s.adapter.Write(ctx, Stored(state.Settings, s.theme)); err != nil {
		return s.fail(ctx, err)
	}
	return s.saved()
}

// Reset clears storage and goes back to the defaults. A failing clear is
// logged and otherwise ignored.
func (s *Session) Reset(ctx context.Context) State {
	if err := s.adapter.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "Clearing stored settings failed", slog.Any("error", err))
	}
	state := s.Dispatch(Reset{Settings: DefaultSettings(), At: s.now()})
	s.schedulePulseOff()
	return state
}

// Close stops the pending pulse timer, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) fail(ctx context.Context, err error) State {
	s.logger.ErrorContext(ctx, "Saving settings failed", slog.Any("error", err))
	return s.Dispatch(SetStatus{Saving: types.Ptr(false), Error: types.Ptr(ErrSaveFailedMessage)})
}

func (s *Session) saved() State {
	now := s.now()
	state := s.Dispatch(SetStatus{
		Saving:     types.Ptr(false),
		SavedAt:    &now,
		SavePulse:  types.Ptr(true),
		ClearError: true,
	})
	s.schedulePulseOff()
	return state
}

func (s *Session) schedulePulseOff() {
	if s.pulse <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.pulse, func() {
		s.Dispatch(SetStatus{SavePulse: types.Ptr(false)})
	})
}
