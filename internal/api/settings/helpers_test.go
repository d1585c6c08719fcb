package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/FACorreiaa/rotinaai-settings/internal/kv"
	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

var errQuota = errors.New("quota exceeded")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// faultyStore is an in-memory store whose operations can be made to fail.
type faultyStore struct {
	*kv.Memory
	getErr    error
	setErr    error
	removeErr error
	// failSetAt makes only the Nth Set call (1-based) fail with setErr.
	failSetAt int
	sets      int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Memory: kv.NewMemory()}
}

func (f *faultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key, value string) error {
	f.sets++
	if f.setErr != nil && (f.failSetAt == 0 || f.sets == f.failSetAt) {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *faultyStore) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.Memory.Remove(ctx, key)
}

// customSettings differs from the defaults in every leaf.
func customSettings() types.SettingsRecord {
	return types.SettingsRecord{
		Profile: types.ProfileSettings{
			DisplayName:  "Ana Souza",
			Timezone:     "Europe/Lisbon",
			WeekStartsOn: types.WeekStartSunday,
			WorkingHours: types.TimeRange{Start: "08:30", End: "17:00"},
		},
		Appearance: types.AppearanceSettings{
			Theme:        types.ThemeDark,
			Density:      types.DensityCompact,
			ReduceMotion: true,
		},
		Notifications: types.NotificationSettings{
			Email:             false,
			ProductUpdates:    false,
			WeeklyDigest:      false,
			Reminders:         false,
			QuietHoursEnabled: true,
			QuietHours:        types.TimeRange{Start: "23:00", End: "06:30"},
		},
		AI: types.AISettings{
			AutoPrioritize:     false,
			AutoSchedule:       false,
			ExplainSuggestions: false,
			DailyPlanTime:      "06:45",
			PlanningStyle:      types.PlanningStyleAggressive,
		},
		Privacy: types.PrivacySettings{
			Analytics:     false,
			UsageInsights: false,
		},
	}
}

func withTheme(r types.SettingsRecord, t types.Theme) types.SettingsRecord {
	r.Appearance.Theme = t
	return r
}
