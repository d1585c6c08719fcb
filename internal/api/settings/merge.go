package settings

import "github.com/FACorreiaa/rotinaai-settings/internal/types"

// Merge builds a complete record from the defaults overlaid with whatever
// stored carries. Theme always resolves through theme, never from stored
// unless the owner is local. A nil theme owner resolves to the default theme.
func Merge(stored *types.StoredSettingsRecord, theme ThemeOwner) types.SettingsRecord {
	merged := Overlay(DefaultSettings(), stored)
	if theme == nil {
		theme = ExternalTheme(nil)
	}
	var appearance *types.StoredAppearance
	if stored != nil {
		appearance = stored.Appearance
	}
	merged.Appearance.Theme = theme.resolveTheme(appearance)
	return merged
}

// Overlay copies every present leaf of patch onto base. Enum leaves holding
// an undeclared value are skipped, so the result keeps base's value.
func Overlay(base types.SettingsRecord, patch *types.StoredSettingsRecord) types.SettingsRecord {
	if patch == nil {
		return base
	}

	if p := patch.Profile; p != nil {
		set(&base.Profile.DisplayName, p.DisplayName)
		set(&base.Profile.Timezone, p.Timezone)
		setEnum(&base.Profile.WeekStartsOn, p.WeekStartsOn)
		overlayRange(&base.Profile.WorkingHours, p.WorkingHours)
	}

	if a := patch.Appearance; a != nil {
		setEnum(&base.Appearance.Theme, a.Theme)
		setEnum(&base.Appearance.Density, a.Density)
		set(&base.Appearance.ReduceMotion, a.ReduceMotion)
	}

	if n := patch.Notifications; n != nil {
		set(&base.Notifications.Email, n.Email)
		set(&base.Notifications.ProductUpdates, n.ProductUpdates)
		set(&base.Notifications.WeeklyDigest, n.WeeklyDigest)
		set(&base.Notifications.Reminders, n.Reminders)
		set(&base.Notifications.QuietHoursEnabled, n.QuietHoursEnabled)
		overlayRange(&base.Notifications.QuietHours, n.QuietHours)
	}

	if ai := patch.AI; ai != nil {
		set(&base.AI.AutoPrioritize, ai.AutoPrioritize)
		set(&base.AI.AutoSchedule, ai.AutoSchedule)
		set(&base.AI.ExplainSuggestions, ai.ExplainSuggestions)
		set(&base.AI.DailyPlanTime, ai.DailyPlanTime)
		setEnum(&base.AI.PlanningStyle, ai.PlanningStyle)
	}

	if pr := patch.Privacy; pr != nil {
		set(&base.Privacy.Analytics, pr.Analytics)
		set(&base.Privacy.UsageInsights, pr.UsageInsights)
	}

	return base
}

// Stored converts a complete record into a fully populated partial record,
// ready to be written. Theme is left out unless owner persists it.
func Stored(record types.SettingsRecord, owner ThemeOwner) types.StoredSettingsRecord {
	out := types.StoredSettingsRecord{
		Profile: &types.StoredProfile{
			DisplayName:  types.Ptr(record.Profile.DisplayName),
			Timezone:     types.Ptr(record.Profile.Timezone),
			WeekStartsOn: types.Ptr(record.Profile.WeekStartsOn),
			WorkingHours: storedRange(record.Profile.WorkingHours),
		},
		Appearance: &types.StoredAppearance{
			Density:      types.Ptr(record.Appearance.Density),
			ReduceMotion: types.Ptr(record.Appearance.ReduceMotion),
		},
		Notifications: &types.StoredNotifications{
			Email:             types.Ptr(record.Notifications.Email),
			ProductUpdates:    types.Ptr(record.Notifications.ProductUpdates),
			WeeklyDigest:      types.Ptr(record.Notifications.WeeklyDigest),
			Reminders:         types.Ptr(record.Notifications.Reminders),
			QuietHoursEnabled: types.Ptr(record.Notifications.QuietHoursEnabled),
			QuietHours:        storedRange(record.Notifications.QuietHours),
		},
		AI: &types.StoredAI{
			AutoPrioritize:     types.Ptr(record.AI.AutoPrioritize),
			AutoSchedule:       types.Ptr(record.AI.AutoSchedule),
			ExplainSuggestions: types.Ptr(record.AI.ExplainSuggestions),
			DailyPlanTime:      types.Ptr(record.AI.DailyPlanTime),
			PlanningStyle:      types.Ptr(record.AI.PlanningStyle),
		},
		Privacy: &types.StoredPrivacy{
			Analytics:     types.Ptr(record.Privacy.Analytics),
			UsageInsights: types.Ptr(record.Privacy.UsageInsights),
		},
	}
	if persistsTheme(owner) {
		out.Appearance.Theme = types.Ptr(record.Appearance.Theme)
	}
	return out
}

// forStorage drops the theme leaf from patch when owner keeps theme out of
// storage. patch itself is left untouched.
func forStorage(patch types.StoredSettingsRecord, owner ThemeOwner) types.StoredSettingsRecord {
	if persistsTheme(owner) || patch.Appearance == nil || patch.Appearance.Theme == nil {
		return patch
	}
	appearance := *patch.Appearance
	appearance.Theme = nil
	if appearance == (types.StoredAppearance{}) {
		patch.Appearance = nil
	} else {
		patch.Appearance = &appearance
	}
	return patch
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

type enum interface {
	~string
	Valid() bool
}

func setEnum[T enum](dst *T, src *T) {
	if src != nil && (*src).Valid() {
		*dst = *src
	}
}

func overlayRange(dst *types.TimeRange, src *types.StoredTimeRange) {
	if src == nil {
		return
	}
	set(&dst.Start, src.Start)
	set(&dst.End, src.End)
}

func storedRange(r types.TimeRange) *types.StoredTimeRange {
	return &types.StoredTimeRange{Start: types.Ptr(r.Start), End: types.Ptr(r.End)}
}
