package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/rotinaai-settings/app/observability/metrics"
	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

var _ SettingsService = (*SettingsServiceImpl)(nil)

// SettingsService runs settings operations for one user at a time. theme is
// the request's theme channel; it is only consulted when theme is owned
// externally.
//
// Every method returns the resulting State. When a write failed the State
// carries the failure status and the error wraps types.ErrStorageUnavailable.
type SettingsService interface {
	GetSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource) (State, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource, patch types.StoredSettingsRecord) (State, error)
	ReplaceSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource, record types.SettingsRecord) (State, error)
	ResetSettings(ctx context.Context, userID uuid.UUID) (State, error)
	ExportSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource) ([]byte, error)
	Ownership() Ownership
	PulseDuration() time.Duration
}

type SettingsServiceImpl struct {
	logger    *slog.Logger
	repo      SettingsRepository
	ownership Ownership
	pulse     time.Duration
	metrics   *metrics.AppMetrics
}

// NewSettingsService creates the service. m may be nil.
func NewSettingsService(repo SettingsRepository, ownership Ownership, pulse time.Duration, m *metrics.AppMetrics, logger *slog.Logger) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		logger:    logger,
		repo:      repo,
		ownership: ownership,
		pulse:     pulse,
		metrics:   m,
	}
}

func (s *SettingsServiceImpl) Ownership() Ownership { return s.ownership }

// PulseDuration is how long a client should show the "saved" indicator.
func (s *SettingsServiceImpl) PulseDuration() time.Duration { return s.pulse }

// session builds a request-scoped Session. It is closed before the pulse
// could fire, so it runs without a timer and the client reverts the pulse.
func (s *SettingsServiceImpl) session(userID uuid.UUID, theme ThemeSource, l *slog.Logger) *Session {
	return NewSession(s.repo.ForUser(userID), OwnerFor(s.ownership, theme), l, WithPulseDuration(0))
}

func (s *SettingsServiceImpl) start(ctx context.Context, method string, userID uuid.UUID) (context.Context, trace.Span, *slog.Logger) {
	ctx, span := otel.Tracer("SettingsService").Start(ctx, method, trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("settings.mode", string(s.repo.Mode())),
		attribute.String("settings.theme_owner", string(s.ownership)),
	))
	l := s.logger.With(slog.String("method", method), slog.String("userID", userID.String()))
	return ctx, span, l
}

func (s *SettingsServiceImpl) GetSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource) (State, error) {
	ctx, span, l := s.start(ctx, "GetSettings", userID)
	defer span.End()
	l.DebugContext(ctx, "Loading user settings")

	sess := s.session(userID, theme, l)
	defer sess.Close()
	state := sess.Load(ctx)
	s.countLoad(ctx)

	span.SetStatus(codes.Ok, "User settings loaded")
	return state, nil
}

func (s *SettingsServiceImpl) UpdateSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource, patch types.StoredSettingsRecord) (State, error) {
	ctx, span, l := s.start(ctx, "UpdateSettings", userID)
	defer span.End()
	l.DebugContext(ctx, "Updating user settings")

	sess := s.session(userID, theme, l)
	defer sess.Close()
	sess.Load(ctx)
	state := sess.Update(ctx, patch)
	if sess.adapter.Mode() == ModeWholeObject {
		state = sess.Save(ctx)
	}
	return s.finishSave(ctx, span, l, state)
}

func (s *SettingsServiceImpl) ReplaceSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource, record types.SettingsRecord) (State, error) {
	ctx, span, l := s.start(ctx, "ReplaceSettings", userID)
	defer span.End()
	l.DebugContext(ctx, "Replacing user settings")

	sess := s.session(userID, theme, l)
	defer sess.Close()
	sess.Load(ctx)
	sess.Dispatch(Load{Settings: record})
	state := sess.Save(ctx)
	return s.finishSave(ctx, span, l, state)
}

func (s *SettingsServiceImpl) ResetSettings(ctx context.Context, userID uuid.UUID) (State, error) {
	ctx, span, l := s.start(ctx, "ResetSettings", userID)
	defer span.End()
	l.InfoContext(ctx, "Resetting user settings")

	sess := s.session(userID, nil, l)
	defer sess.Close()
	state := sess.Reset(ctx)
	if s.metrics != nil {
		s.metrics.SettingsResetsTotal.Add(ctx, 1)
	}

	span.SetStatus(codes.Ok, "User settings reset")
	return state, nil
}

func (s *SettingsServiceImpl) ExportSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource) ([]byte, error) {
	ctx, span, l := s.start(ctx, "ExportSettings", userID)
	defer span.End()

	sess := s.session(userID, theme, l)
	defer sess.Close()
	state := sess.Load(ctx)
	s.countLoad(ctx)

	payload, err := json.MarshalIndent(state.Settings, "", "  ")
	if err != nil {
		l.ErrorContext(ctx, "Failed to encode settings export", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode settings export")
		return nil, fmt.Errorf("error encoding settings export: %w", err)
	}
	span.SetStatus(codes.Ok, "User settings exported")
	return payload, nil
}

func (s *SettingsServiceImpl) finishSave(ctx context.Context, span trace.Span, l *slog.Logger, state State) (State, error) {
	result := "ok"
	if state.Status.Error != "" {
		result = "error"
	}
	if s.metrics != nil {
		s.metrics.SettingsSavesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}

	if state.Status.Error != "" {
		err := fmt.Errorf("error saving user settings: %w", types.ErrStorageUnavailable)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save user settings")
		return state, err
	}
	l.InfoContext(ctx, "User settings saved")
	span.SetStatus(codes.Ok, "User settings saved")
	return state, nil
}

func (s *SettingsServiceImpl) countLoad(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.SettingsLoadsTotal.Add(ctx, 1)
	}
}
