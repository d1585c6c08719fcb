package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/rotinaai-settings/internal/api/auth"
	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

// MockSettingsService is a mock implementation of SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource) (State, error) {
	args := m.Called(ctx, userID, theme)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockSettingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource, patch types.StoredSettingsRecord) (State, error) {
	args := m.Called(ctx, userID, theme, patch)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockSettingsService) ReplaceSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource, record types.SettingsRecord) (State, error) {
	args := m.Called(ctx, userID, theme, record)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockSettingsService) ResetSettings(ctx context.Context, userID uuid.UUID) (State, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(State), args.Error(1)
}

func (m *MockSettingsService) ExportSettings(ctx context.Context, userID uuid.UUID, theme ThemeSource) ([]byte, error) {
	args := m.Called(ctx, userID, theme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSettingsService) Ownership() Ownership {
	return m.Called().Get(0).(Ownership)
}

func (m *MockSettingsService) PulseDuration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

type handlerFixture struct {
	handler *SettingsHandler
	store   *faultyStore
	userID  uuid.UUID
}

func newHandlerFixture(t *testing.T, mode Mode, ownership Ownership) *handlerFixture {
	t.Helper()
	store := newFaultyStore()
	repo, err := NewKVSettingsRepo(store, mode, discardLogger())
	require.NoError(t, err)
	svc := NewSettingsService(repo, ownership, 0, nil, discardLogger())
	return &handlerFixture{
		handler: NewSettingsHandler(svc, "", discardLogger()),
		store:   store,
		userID:  uuid.New(),
	}
}

func (f *handlerFixture) request(method, body string, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/v1/settings", nil)
	} else {
		req = httptest.NewRequest(method, "/api/v1/settings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req.WithContext(auth.WithUserID(req.Context(), f.userID.String()))
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) State {
	t.Helper()
	var state State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	return state
}

func themeCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == DefaultThemeCookie {
			return c
		}
	}
	return nil
}

func TestSettingsHandler_RequiresUser(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)

	tests := []struct {
		name   string
		ctx    context.Context
		status int
	}{
		{name: "missing user", ctx: context.Background(), status: http.StatusUnauthorized},
		{name: "malformed user", ctx: auth.WithUserID(context.Background(), "not-a-uuid"), status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil).WithContext(tt.ctx)
			rr := httptest.NewRecorder()
			f.handler.GetSettings(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestSettingsHandler_GetSettingsReadsThemeCookie(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)

	rr := httptest.NewRecorder()
	f.handler.GetSettings(rr, f.request(http.MethodGet, "", &http.Cookie{Name: "theme", Value: "dark"}))

	require.Equal(t, http.StatusOK, rr.Code)
	state := decodeState(t, rr)
	assert.Equal(t, types.ThemeDark, state.Settings.Appearance.Theme)
	assert.Equal(t, DefaultSettings().Profile, state.Settings.Profile)
}

func TestSettingsHandler_GetSettingsIgnoresBadCookie(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)

	rr := httptest.NewRecorder()
	f.handler.GetSettings(rr, f.request(http.MethodGet, "", &http.Cookie{Name: "theme", Value: "sepia"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, types.ThemeSystem, decodeState(t, rr).Settings.Appearance.Theme)
}

func TestSettingsHandler_UpdateSettings(t *testing.T) {
	f := newHandlerFixture(t, ModePerField, OwnedExternally)

	rr := httptest.NewRecorder()
	f.handler.UpdateSettings(rr, f.request(http.MethodPatch, `{"appearance":{"theme":"dark","reduceMotion":true}}`))

	require.Equal(t, http.StatusOK, rr.Code)
	state := decodeState(t, rr)
	assert.Equal(t, types.ThemeDark, state.Settings.Appearance.Theme)
	assert.True(t, state.Settings.Appearance.ReduceMotion)
	assert.True(t, state.Status.SavePulse)

	c := themeCookie(rr)
	require.NotNil(t, c)
	assert.Equal(t, "dark", c.Value)
	assert.Equal(t, "/", c.Path)

	_, ok, err := f.store.Get(context.Background(), UserKeyPrefix(f.userID)+FieldKey("appearance.theme"))
	require.NoError(t, err)
	assert.False(t, ok, "the theme is left to the cookie")
}

func TestSettingsHandler_UpdateWithoutThemeLeavesCookie(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)

	rr := httptest.NewRecorder()
	f.handler.UpdateSettings(rr, f.request(http.MethodPatch, `{"privacy":{"analytics":false}}`))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, themeCookie(rr))
}

func TestSettingsHandler_UpdateSettingsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown theme", body: `{"appearance":{"theme":"sepia"}}`},
		{name: "malformed time", body: `{"ai":{"dailyPlanTime":"7am"}}`},
		{name: "unknown field", body: `{"appearance":{"fontSize":14}}`},
		{name: "wrong type", body: `{"privacy":{"analytics":"no"}}`},
		{name: "empty body", body: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)
			rr := httptest.NewRecorder()
			f.handler.UpdateSettings(rr, f.request(http.MethodPatch, tt.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, f.store.Keys())
		})
	}
}

func TestSettingsHandler_UpdateSettingsStorageFailure(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)
	f.store.setErr = errQuota

	rr := httptest.NewRecorder()
	f.handler.UpdateSettings(rr, f.request(http.MethodPatch, `{"notifications":{"reminders":false}}`))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	state := decodeState(t, rr)
	assert.Equal(t, ErrSaveFailedMessage, state.Status.Error)
	assert.False(t, state.Settings.Notifications.Reminders)
}

func TestSettingsHandler_ReplaceSettings(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)
	body, err := json.Marshal(customSettings())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	f.handler.ReplaceSettings(rr, f.request(http.MethodPut, string(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, customSettings(), decodeState(t, rr).Settings)
	c := themeCookie(rr)
	require.NotNil(t, c)
	assert.Equal(t, "dark", c.Value)
}

func TestSettingsHandler_ReplaceSettingsRequiresCompleteRecord(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)

	rr := httptest.NewRecorder()
	f.handler.ReplaceSettings(rr, f.request(http.MethodPut, `{"profile":{"displayName":"Ana"}}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "timezone")
}

func TestSettingsHandler_ResetSettings(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)
	require.NoError(t, f.store.Set(context.Background(), UserKeyPrefix(f.userID)+WholeObjectKey, `{"privacy":{"analytics":false}}`))

	rr := httptest.NewRecorder()
	f.handler.ResetSettings(rr, f.request(http.MethodDelete, "", &http.Cookie{Name: "theme", Value: "dark"}))

	require.Equal(t, http.StatusOK, rr.Code)
	state := decodeState(t, rr)
	assert.Equal(t, DefaultSettings(), state.Settings)
	assert.True(t, state.Status.SavePulse)
	assert.Empty(t, f.store.Keys())

	c := themeCookie(rr)
	require.NotNil(t, c)
	assert.Equal(t, string(types.ThemeSystem), c.Value)
}

func TestSettingsHandler_LocalThemeSetsNoCookie(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedLocally)

	rr := httptest.NewRecorder()
	f.handler.UpdateSettings(rr, f.request(http.MethodPatch, `{"appearance":{"theme":"light"}}`))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, themeCookie(rr))

	raw, ok, err := f.store.Get(context.Background(), UserKeyPrefix(f.userID)+WholeObjectKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"theme":"light"`)
}

func TestSettingsHandler_ExportSettings(t *testing.T) {
	f := newHandlerFixture(t, ModeWholeObject, OwnedExternally)

	rr := httptest.NewRecorder()
	f.handler.ExportSettings(rr, f.request(http.MethodGet, "", &http.Cookie{Name: "theme", Value: "light"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="rotinaai-settings.json"`, rr.Header().Get("Content-Disposition"))

	var exported types.SettingsRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &exported))
	assert.Equal(t, withTheme(DefaultSettings(), types.ThemeLight), exported)
}

func TestSettingsHandler_ServiceErrors(t *testing.T) {
	userID := uuid.New()
	svc := new(MockSettingsService)
	svc.On("GetSettings", mock.Anything, userID, mock.Anything).Return(State{}, errors.New("boom"))
	svc.On("ExportSettings", mock.Anything, userID, mock.Anything).Return(nil, errors.New("boom"))
	svc.On("ResetSettings", mock.Anything, userID).Return(State{}, errors.New("boom"))
	h := NewSettingsHandler(svc, "ui-theme", discardLogger())

	f := &handlerFixture{handler: h, userID: userID}
	for name, fn := range map[string]http.HandlerFunc{
		"get":    h.GetSettings,
		"export": h.ExportSettings,
		"reset":  h.ResetSettings,
	} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			fn(rr, f.request(http.MethodGet, ""))
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Contains(t, rr.Body.String(), `"success":false`)
		})
	}
	svc.AssertExpectations(t)
}

func TestSettingsHandler_CustomCookieName(t *testing.T) {
	userID := uuid.New()
	svc := new(MockSettingsService)
	svc.On("Ownership").Return(OwnedExternally)
	svc.On("ResetSettings", mock.Anything, userID).Return(State{Settings: DefaultSettings()}, nil)
	h := NewSettingsHandler(svc, "ui-theme", discardLogger())

	f := &handlerFixture{handler: h, userID: userID}
	rr := httptest.NewRecorder()
	h.ResetSettings(rr, f.request(http.MethodDelete, ""))

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "ui-theme", cookies[0].Name)
}

func TestSettingsHandler_PulseHeader(t *testing.T) {
	store := newFaultyStore()
	repo, err := NewKVSettingsRepo(store, ModePerField, discardLogger())
	require.NoError(t, err)
	svc := NewSettingsService(repo, OwnedExternally, 1200*time.Millisecond, nil, discardLogger())
	f := &handlerFixture{handler: NewSettingsHandler(svc, "", discardLogger()), store: store, userID: uuid.New()}

	rr := httptest.NewRecorder()
	f.handler.UpdateSettings(rr, f.request(http.MethodPatch, `{"privacy":{"analytics":true}}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1200", rr.Header().Get(PulseHeader))

	rr = httptest.NewRecorder()
	f.handler.GetSettings(rr, f.request(http.MethodGet, ""))
	assert.Empty(t, rr.Header().Get(PulseHeader), "reads do not pulse")

	store.setErr = errQuota
	rr = httptest.NewRecorder()
	f.handler.UpdateSettings(rr, f.request(http.MethodPatch, `{"privacy":{"analytics":false}}`))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, rr.Header().Get(PulseHeader))
}

func TestNewSettingsHandler_PanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { NewSettingsHandler(new(MockSettingsService), "", nil) })
}
