package settings

import (
	"regexp"
	"time"
	_ "time/tzdata"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

// MaxDisplayNameLength caps profile.displayName, in characters.
const MaxDisplayNameLength = 80

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var (
	clockRule    = validation.Match(clockPattern).Error("must be a time in HH:MM format")
	timezoneRule = validation.By(loadableTimezone)
	nameRule     = validation.RuneLength(0, MaxDisplayNameLength)
)

// ValidatePatch checks every present leaf of a partial record. Absent leaves
// are fine; present ones must be non-empty (displayName aside) and well
// formed.
func ValidatePatch(p types.StoredSettingsRecord) error {
	return validation.Errors{
		"profile":       validateStoredProfile(p.Profile),
		"appearance":    validateStoredAppearance(p.Appearance),
		"notifications": validateStoredNotifications(p.Notifications),
		"ai":            validateStoredAI(p.AI),
	}.Filter()
}

// ValidateRecord checks a complete record, as sent to replace the settings.
func ValidateRecord(r types.SettingsRecord) error {
	return validation.Errors{
		"profile": validation.ValidateStruct(&r.Profile,
			validation.Field(&r.Profile.DisplayName, nameRule),
			validation.Field(&r.Profile.Timezone, validation.Required, timezoneRule),
			validation.Field(&r.Profile.WeekStartsOn, validation.Required, validation.In(anyOf(types.WeekStarts)...)),
			validation.Field(&r.Profile.WorkingHours, validation.By(completeRange)),
		),
		"appearance": validation.ValidateStruct(&r.Appearance,
			validation.Field(&r.Appearance.Theme, validation.Required, validation.In(anyOf(types.Themes)...)),
			validation.Field(&r.Appearance.Density, validation.Required, validation.In(anyOf(types.Densities)...)),
		),
		"notifications": validation.ValidateStruct(&r.Notifications,
			validation.Field(&r.Notifications.QuietHours, validation.By(completeRange)),
		),
		"ai": validation.ValidateStruct(&r.AI,
			validation.Field(&r.AI.DailyPlanTime, validation.Required, clockRule),
			validation.Field(&r.AI.PlanningStyle, validation.Required, validation.In(anyOf(types.PlanningStyles)...)),
		),
	}.Filter()
}

func validateStoredProfile(p *types.StoredProfile) error {
	if p == nil {
		return nil
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.DisplayName, nameRule),
		validation.Field(&p.Timezone, validation.NilOrNotEmpty, timezoneRule),
		validation.Field(&p.WeekStartsOn, validation.NilOrNotEmpty, validation.In(anyOf(types.WeekStarts)...)),
		validation.Field(&p.WorkingHours, validation.By(partialRange)),
	)
}

func validateStoredAppearance(a *types.StoredAppearance) error {
	if a == nil {
		return nil
	}
	return validation.ValidateStruct(a,
		validation.Field(&a.Theme, validation.NilOrNotEmpty, validation.In(anyOf(types.Themes)...)),
		validation.Field(&a.Density, validation.NilOrNotEmpty, validation.In(anyOf(types.Densities)...)),
	)
}

func validateStoredNotifications(n *types.StoredNotifications) error {
	if n == nil {
		return nil
	}
	return validation.ValidateStruct(n,
		validation.Field(&n.QuietHours, validation.By(partialRange)),
	)
}

func validateStoredAI(ai *types.StoredAI) error {
	if ai == nil {
		return nil
	}
	return validation.ValidateStruct(ai,
		validation.Field(&ai.DailyPlanTime, validation.NilOrNotEmpty, clockRule),
		validation.Field(&ai.PlanningStyle, validation.NilOrNotEmpty, validation.In(anyOf(types.PlanningStyles)...)),
	)
}

func partialRange(value interface{}) error {
	r, _ := value.(*types.StoredTimeRange)
	if r == nil {
		return nil
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Start, validation.NilOrNotEmpty, clockRule),
		validation.Field(&r.End, validation.NilOrNotEmpty, clockRule),
	)
}

func completeRange(value interface{}) error {
	r, ok := value.(types.TimeRange)
	if !ok {
		return nil
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Start, validation.Required, clockRule),
		validation.Field(&r.End, validation.Required, clockRule),
	)
}

func loadableTimezone(value interface{}) error {
	tz, isNil := validation.Indirect(value)
	name, _ := tz.(string)
	if isNil || name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return validation.NewError("validation_timezone_unknown", "must be an IANA time zone name")
	}
	return nil
}

func anyOf[T any](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
