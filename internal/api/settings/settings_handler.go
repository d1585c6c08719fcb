package settings

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/rotinaai-settings/internal/api"
	"github.com/FACorreiaa/rotinaai-settings/internal/api/auth"
	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

const (
	// DefaultThemeCookie carries the theme chosen in the UI theme provider.
	DefaultThemeCookie = "theme"
	// ExportFilename is the name of the downloaded preferences file.
	ExportFilename = "rotinaai-settings.json"
	// PulseHeader tells the client, in milliseconds, when to turn the
	// "saved" indicator off.
	PulseHeader = "X-Save-Pulse-Ms"

	themeCookieMaxAge = 365 * 24 * time.Hour
)

type SettingsHandler struct {
	SettingsService SettingsService
	logger          *slog.Logger
	themeCookie     string
}

// NewSettingsHandler creates the handler. An empty themeCookie falls back to
// DefaultThemeCookie.
func NewSettingsHandler(service SettingsService, themeCookie string, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		panic("PANIC: Attempting to create SettingsHandler with nil logger!")
	}
	if themeCookie == "" {
		themeCookie = DefaultThemeCookie
	}
	return &SettingsHandler{
		SettingsService: service,
		logger:          logger,
		themeCookie:     themeCookie,
	}
}

// GetSettings returns the merged settings of the authenticated user.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "GetSettings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetSettings"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}

	state, err := h.SettingsService.GetSettings(ctx, userID, h.cookieTheme(r))
	if err != nil {
		l.ErrorContext(ctx, "Failed to load settings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load settings")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	span.SetStatus(codes.Ok, "Settings loaded")
	api.WriteJSONResponse(w, r, http.StatusOK, state)
}

// UpdateSettings applies a partial record.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "UpdateSettings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateSettings"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}

	var patch types.StoredSettingsRecord
	if err := api.DecodeJSONBody(w, r, &patch); err != nil {
		l.WarnContext(ctx, "Invalid settings patch body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := ValidatePatch(patch); err != nil {
		l.WarnContext(ctx, "Settings patch failed validation", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.SettingsService.UpdateSettings(ctx, userID, h.cookieTheme(r), patch)
	if patch.Appearance != nil && patch.Appearance.Theme != nil {
		h.writeThemeCookie(w, state.Settings.Appearance.Theme)
	}
	h.respondSaved(w, r, span, l, state, err)
}

// ReplaceSettings overwrites every preference with the request body.
func (h *SettingsHandler) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "ReplaceSettings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ReplaceSettings"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}

	var record types.SettingsRecord
	if err := api.DecodeJSONBody(w, r, &record); err != nil {
		l.WarnContext(ctx, "Invalid settings body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := ValidateRecord(record); err != nil {
		l.WarnContext(ctx, "Settings failed validation", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.SettingsService.ReplaceSettings(ctx, userID, h.cookieTheme(r), record)
	h.writeThemeCookie(w, state.Settings.Appearance.Theme)
	h.respondSaved(w, r, span, l, state, err)
}

// ResetSettings restores the defaults, theme cookie included.
func (h *SettingsHandler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "ResetSettings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ResetSettings"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}

	state, err := h.SettingsService.ResetSettings(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to reset settings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to reset settings")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to reset settings")
		return
	}

	h.writeThemeCookie(w, state.Settings.Appearance.Theme)
	h.writePulseHeader(w, state)
	span.SetStatus(codes.Ok, "Settings reset")
	api.WriteJSONResponse(w, r, http.StatusOK, state)
}

// ExportSettings sends the merged settings as a JSON file download.
func (h *SettingsHandler) ExportSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "ExportSettings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ExportSettings"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}

	payload, err := h.SettingsService.ExportSettings(ctx, userID, h.cookieTheme(r))
	if err != nil {
		l.ErrorContext(ctx, "Failed to export settings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to export settings")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to export settings")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		l.ErrorContext(ctx, "Failed to write settings export", slog.Any("error", err))
	}
	span.SetStatus(codes.Ok, "Settings exported")
}

func (h *SettingsHandler) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return otel.Tracer("SettingsHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(r.URL.Path),
	))
}

func (h *SettingsHandler) userID(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger) (uuid.UUID, bool) {
	ctx := r.Context()
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		l.WarnContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Authentication required")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(ctx, "Invalid user ID format in context", slog.String("user_id_str", userIDStr), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid User ID in token")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *SettingsHandler) respondSaved(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger, state State, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, types.ErrStorageUnavailable):
		l.ErrorContext(ctx, "Settings could not be saved", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Settings could not be saved")
		api.WriteJSONResponse(w, r, http.StatusServiceUnavailable, state)
	case err != nil:
		l.ErrorContext(ctx, "Failed to save settings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save settings")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save settings")
	default:
		h.writePulseHeader(w, state)
		span.SetStatus(codes.Ok, "Settings saved")
		api.WriteJSONResponse(w, r, http.StatusOK, state)
	}
}

func (h *SettingsHandler) writePulseHeader(w http.ResponseWriter, state State) {
	if !state.Status.SavePulse {
		return
	}
	d := h.SettingsService.PulseDuration()
	if d <= 0 {
		return
	}
	w.Header().Set(PulseHeader, strconv.FormatInt(d.Milliseconds(), 10))
}

// cookieTheme reads the theme channel lazily, only when a ThemeOwner asks.
func (h *SettingsHandler) cookieTheme(r *http.Request) ThemeSource {
	return ThemeSourceFunc(func() (types.Theme, bool) {
		c, err := r.Cookie(h.themeCookie)
		if err != nil {
			return "", false
		}
		return types.ParseTheme(c.Value)
	})
}

// writeThemeCookie publishes theme on the theme channel. Nothing is written
// while theme is owned locally.
func (h *SettingsHandler) writeThemeCookie(w http.ResponseWriter, theme types.Theme) {
	if h.SettingsService.Ownership() != OwnedExternally || !theme.Valid() {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.themeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   int(themeCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
