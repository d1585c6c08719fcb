package settings

import "github.com/FACorreiaa/rotinaai-settings/internal/types"

// DefaultTimezone is used until the user picks one.
const DefaultTimezone = "America/Sao_Paulo"

// DefaultSettings returns the canonical defaults. Every call builds a new
// value, so callers are free to mutate the result.
func DefaultSettings() types.SettingsRecord {
	return types.SettingsRecord{
		Profile: types.ProfileSettings{
			DisplayName:  "",
			Timezone:     DefaultTimezone,
			WeekStartsOn: types.WeekStartMonday,
			WorkingHours: types.TimeRange{Start: "09:00", End: "18:00"},
		},
		Appearance: types.AppearanceSettings{
			Theme:        types.ThemeSystem,
			Density:      types.DensityComfortable,
			ReduceMotion: false,
		},
		Notifications: types.NotificationSettings{
			Email:             true,
			ProductUpdates:    true,
			WeeklyDigest:      true,
			Reminders:         true,
			QuietHoursEnabled: false,
			QuietHours:        types.TimeRange{Start: "22:00", End: "07:00"},
		},
		AI: types.AISettings{
			AutoPrioritize:     true,
			AutoSchedule:       true,
			ExplainSuggestions: true,
			DailyPlanTime:      "07:30",
			PlanningStyle:      types.PlanningStyleBalanced,
		},
		Privacy: types.PrivacySettings{
			Analytics:     true,
			UsageInsights: true,
		},
	}
}
