package types

// WeekStart is the first day shown in weekly views.
type WeekStart string

const (
	WeekStartMonday WeekStart = "monday"
	WeekStartSunday WeekStart = "sunday"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// Density controls spacing in dashboard views.
type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
)

// PlanningStyle tells the assistant how densely to pack a day.
type PlanningStyle string

const (
	PlanningStyleRelaxed    PlanningStyle = "relaxed"
	PlanningStyleBalanced   PlanningStyle = "balanced"
	PlanningStyleAggressive PlanningStyle = "aggressive"
)

var (
	WeekStarts     = []WeekStart{WeekStartMonday, WeekStartSunday}
	Themes         = []Theme{ThemeSystem, ThemeLight, ThemeDark}
	Densities      = []Density{DensityComfortable, DensityCompact}
	PlanningStyles = []PlanningStyle{PlanningStyleRelaxed, PlanningStyleBalanced, PlanningStyleAggressive}
)

func (w WeekStart) Valid() bool {
	_, ok := ParseWeekStart(string(w))
	return ok
}

func (t Theme) Valid() bool {
	_, ok := ParseTheme(string(t))
	return ok
}

func (d Density) Valid() bool {
	_, ok := ParseDensity(string(d))
	return ok
}

func (p PlanningStyle) Valid() bool {
	_, ok := ParsePlanningStyle(string(p))
	return ok
}

// ParseWeekStart returns the WeekStart for raw if it is an allowed value.
func ParseWeekStart(raw string) (WeekStart, bool) {
	return parseEnum(raw, WeekStarts)
}

// ParseTheme returns the Theme for raw if it is an allowed value.
func ParseTheme(raw string) (Theme, bool) {
	return parseEnum(raw, Themes)
}

// ParseDensity returns the Density for raw if it is an allowed value.
func ParseDensity(raw string) (Density, bool) {
	return parseEnum(raw, Densities)
}

// ParsePlanningStyle returns the PlanningStyle for raw if it is an allowed value.
func ParsePlanningStyle(raw string) (PlanningStyle, bool) {
	return parseEnum(raw, PlanningStyles)
}

func parseEnum[T ~string](raw string, allowed []T) (T, bool) {
	for _, v := range allowed {
		if string(v) == raw {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// TimeRange is a free-form "HH:MM" pair. Start is not required to precede End.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ProfileSettings struct {
	DisplayName  string    `json:"displayName"`
	Timezone     string    `json:"timezone"`
	WeekStartsOn WeekStart `json:"weekStartsOn"`
	WorkingHours TimeRange `json:"workingHours"`
}

type AppearanceSettings struct {
	Theme        Theme   `json:"theme"`
	Density      Density `json:"density"`
	ReduceMotion bool    `json:"reduceMotion"`
}

type NotificationSettings struct {
	Email             bool      `json:"email"`
	ProductUpdates    bool      `json:"productUpdates"`
	WeeklyDigest      bool      `json:"weeklyDigest"`
	Reminders         bool      `json:"reminders"`
	QuietHoursEnabled bool      `json:"quietHoursEnabled"`
	QuietHours        TimeRange `json:"quietHours"`
}

type AISettings struct {
	AutoPrioritize     bool          `json:"autoPrioritize"`
	AutoSchedule       bool          `json:"autoSchedule"`
	ExplainSuggestions bool          `json:"explainSuggestions"`
	DailyPlanTime      string        `json:"dailyPlanTime"`
	PlanningStyle      PlanningStyle `json:"planningStyle"`
}

type PrivacySettings struct {
	Analytics     bool `json:"analytics"`
	UsageInsights bool `json:"usageInsights"`
}

// SettingsRecord is the complete preference set for one user. Once built
// from defaults every field holds a usable value.
type SettingsRecord struct {
	Profile       ProfileSettings      `json:"profile"`
	Appearance    AppearanceSettings   `json:"appearance"`
	Notifications NotificationSettings `json:"notifications"`
	AI            AISettings           `json:"ai"`
	Privacy       PrivacySettings      `json:"privacy"`
}

// StoredTimeRange is the partial form of TimeRange.
type StoredTimeRange struct {
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
}

type StoredProfile struct {
	DisplayName  *string          `json:"displayName,omitempty"`
	Timezone     *string          `json:"timezone,omitempty"`
	WeekStartsOn *WeekStart       `json:"weekStartsOn,omitempty"`
	WorkingHours *StoredTimeRange `json:"workingHours,omitempty"`
}

type StoredAppearance struct {
	Theme        *Theme   `json:"theme,omitempty"`
	Density      *Density `json:"density,omitempty"`
	ReduceMotion *bool    `json:"reduceMotion,omitempty"`
}

type StoredNotifications struct {
	Email             *bool            `json:"email,omitempty"`
	ProductUpdates    *bool            `json:"productUpdates,omitempty"`
	WeeklyDigest      *bool            `json:"weeklyDigest,omitempty"`
	Reminders         *bool            `json:"reminders,omitempty"`
	QuietHoursEnabled *bool            `json:"quietHoursEnabled,omitempty"`
	QuietHours        *StoredTimeRange `json:"quietHours,omitempty"`
}

type StoredAI struct {
	AutoPrioritize     *bool          `json:"autoPrioritize,omitempty"`
	AutoSchedule       *bool          `json:"autoSchedule,omitempty"`
	ExplainSuggestions *bool          `json:"explainSuggestions,omitempty"`
	DailyPlanTime      *string        `json:"dailyPlanTime,omitempty"`
	PlanningStyle      *PlanningStyle `json:"planningStyle,omitempty"`
}

type StoredPrivacy struct {
	Analytics     *bool `json:"analytics,omitempty"`
	UsageInsights *bool `json:"usageInsights,omitempty"`
}

// StoredSettingsRecord is the deep-partial shape held by storage and used
// for patches. Any group and any field may be absent.
type StoredSettingsRecord struct {
	Profile       *StoredProfile       `json:"profile,omitempty"`
	Appearance    *StoredAppearance    `json:"appearance,omitempty"`
	Notifications *StoredNotifications `json:"notifications,omitempty"`
	AI            *StoredAI            `json:"ai,omitempty"`
	Privacy       *StoredPrivacy       `json:"privacy,omitempty"`
}

// IsEmpty reports whether no group carries a value.
func (s *StoredSettingsRecord) IsEmpty() bool {
	return s == nil || (s.Profile == nil && s.Appearance == nil && s.Notifications == nil && s.AI == nil && s.Privacy == nil)
}

// Ptr returns a pointer to v. Handy for building partial records.
func Ptr[T any](v T) *T {
	return &v
}
