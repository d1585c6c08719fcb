package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

// Storage is the key-value port the adapters persist through. Get reports
// ok=false for a missing key; an error means the backend itself failed.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Mode selects the persistence strategy.
type Mode string

const (
	// ModeWholeObject keeps the whole record as one JSON value and batches
	// edits until an explicit save.
	ModeWholeObject Mode = "whole"
	// ModePerField keeps one key per leaf and saves on every change.
	ModePerField Mode = "field"
)

// Adapter reads and writes settings records through a Storage.
//
// Load never fails: unreadable or malformed data is reported as nil, the
// same as no data at all. Write and Clear return the backend error so the
// caller can surface it as status.
type Adapter interface {
	Mode() Mode
	Load(ctx context.Context) *types.StoredSettingsRecord
	Write(ctx context.Context, record types.StoredSettingsRecord) error
	Clear(ctx context.Context) error
}

// NewAdapter returns the adapter for mode over store.
func NewAdapter(mode Mode, store Storage, logger *slog.Logger) (Adapter, error) {
	switch mode {
	case ModeWholeObject:
		return NewWholeObjectAdapter(store, logger), nil
	case ModePerField:
		return NewPerFieldAdapter(store, logger), nil
	default:
		return nil, fmt.Errorf("unknown persistence mode %q: %w", mode, types.ErrInvalidInput)
	}
}

// fieldSource yields raw leaf values addressed by dotted path, such as
// "profile.workingHours.start". ok is false for absent or mistyped leaves.
type fieldSource interface {
	str(path string) (string, bool)
	boolean(path string) (bool, bool)
}

// fieldSink receives leaf values addressed by dotted path.
type fieldSink interface {
	putString(path, value string)
	putBool(path string, value bool)
}

// decodeStored walks every known leaf. Enum leaves outside their allow-list
// are dropped. It returns nil when nothing usable was found.
func decodeStored(src fieldSource) *types.StoredSettingsRecord {
	var rec types.StoredSettingsRecord

	profile := types.StoredProfile{
		DisplayName:  readString(src, "profile.displayName"),
		Timezone:     readString(src, "profile.timezone"),
		WeekStartsOn: readEnum(src, "profile.weekStartsOn", types.ParseWeekStart),
		WorkingHours: readRange(src, "profile.workingHours"),
	}
	if profile != (types.StoredProfile{}) {
		rec.Profile = &profile
	}

	appearance := types.StoredAppearance{
		Theme:        readEnum(src, "appearance.theme", types.ParseTheme),
		Density:      readEnum(src, "appearance.density", types.ParseDensity),
		ReduceMotion: readBool(src, "appearance.reduceMotion"),
	}
	if appearance != (types.StoredAppearance{}) {
		rec.Appearance = &appearance
	}

	notifications := types.StoredNotifications{
		Email:             readBool(src, "notifications.email"),
		ProductUpdates:    readBool(src, "notifications.productUpdates"),
		WeeklyDigest:      readBool(src, "notifications.weeklyDigest"),
		Reminders:         readBool(src, "notifications.reminders"),
		QuietHoursEnabled: readBool(src, "notifications.quietHoursEnabled"),
		QuietHours:        readRange(src, "notifications.quietHours"),
	}
	if notifications != (types.StoredNotifications{}) {
		rec.Notifications = &notifications
	}

	ai := types.StoredAI{
		AutoPrioritize:     readBool(src, "ai.autoPrioritize"),
		AutoSchedule:       readBool(src, "ai.autoSchedule"),
		ExplainSuggestions: readBool(src, "ai.explainSuggestions"),
		DailyPlanTime:      readString(src, "ai.dailyPlanTime"),
		PlanningStyle:      readEnum(src, "ai.planningStyle", types.ParsePlanningStyle),
	}
	if ai != (types.StoredAI{}) {
		rec.AI = &ai
	}

	privacy := types.StoredPrivacy{
		Analytics:     readBool(src, "privacy.analytics"),
		UsageInsights: readBool(src, "privacy.usageInsights"),
	}
	if privacy != (types.StoredPrivacy{}) {
		rec.Privacy = &privacy
	}

	if rec.IsEmpty() {
		return nil
	}
	return &rec
}

// encodeStored emits every present leaf of rec into sink.
func encodeStored(rec types.StoredSettingsRecord, sink fieldSink) {
	if p := rec.Profile; p != nil {
		putString(sink, "profile.displayName", p.DisplayName)
		putString(sink, "profile.timezone", p.Timezone)
		putEnum(sink, "profile.weekStartsOn", p.WeekStartsOn)
		putRange(sink, "profile.workingHours", p.WorkingHours)
	}
	if a := rec.Appearance; a != nil {
		putEnum(sink, "appearance.theme", a.Theme)
		putEnum(sink, "appearance.density", a.Density)
		putBool(sink, "appearance.reduceMotion", a.ReduceMotion)
	}
	if n := rec.Notifications; n != nil {
		putBool(sink, "notifications.email", n.Email)
		putBool(sink, "notifications.productUpdates", n.ProductUpdates)
		putBool(sink, "notifications.weeklyDigest", n.WeeklyDigest)
		putBool(sink, "notifications.reminders", n.Reminders)
		putBool(sink, "notifications.quietHoursEnabled", n.QuietHoursEnabled)
		putRange(sink, "notifications.quietHours", n.QuietHours)
	}
	if ai := rec.AI; ai != nil {
		putBool(sink, "ai.autoPrioritize", ai.AutoPrioritize)
		putBool(sink, "ai.autoSchedule", ai.AutoSchedule)
		putBool(sink, "ai.explainSuggestions", ai.ExplainSuggestions)
		putString(sink, "ai.dailyPlanTime", ai.DailyPlanTime)
		putEnum(sink, "ai.planningStyle", ai.PlanningStyle)
	}
	if pr := rec.Privacy; pr != nil {
		putBool(sink, "privacy.analytics", pr.Analytics)
		putBool(sink, "privacy.usageInsights", pr.UsageInsights)
	}
}

// leafPaths lists the dotted path of every leaf in the schema.
func leafPaths() []string {
	var c pathCollector
	encodeStored(Stored(DefaultSettings(), LocalTheme()), &c)
	return c.paths
}

type pathCollector struct {
	paths []string
}

func (c *pathCollector) putString(path, _ string)    { c.paths = append(c.paths, path) }
func (c *pathCollector) putBool(path string, _ bool) { c.paths = append(c.paths, path) }

func readString(src fieldSource, path string) *string {
	if v, ok := src.str(path); ok {
		return &v
	}
	return nil
}

func readBool(src fieldSource, path string) *bool {
	if v, ok := src.boolean(path); ok {
		return &v
	}
	return nil
}

func readEnum[T ~string](src fieldSource, path string, parse func(string) (T, bool)) *T {
	raw, ok := src.str(path)
	if !ok {
		return nil
	}
	if v, ok := parse(raw); ok {
		return &v
	}
	return nil
}

func readRange(src fieldSource, path string) *types.StoredTimeRange {
	r := types.StoredTimeRange{
		Start: readString(src, path+".start"),
		End:   readString(src, path+".end"),
	}
	if r.Start == nil && r.End == nil {
		return nil
	}
	return &r
}

func putString(sink fieldSink, path string, v *string) {
	if v != nil {
		sink.putString(path, *v)
	}
}

func putBool(sink fieldSink, path string, v *bool) {
	if v != nil {
		sink.putBool(path, *v)
	}
}

func putEnum[T enum](sink fieldSink, path string, v *T) {
	if v != nil && (*v).Valid() {
		sink.putString(path, string(*v))
	}
}

func putRange(sink fieldSink, path string, r *types.StoredTimeRange) {
	if r == nil {
		return
	}
	putString(sink, path+".start", r.Start)
	putString(sink, path+".end", r.End)
}
