package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

const (
	// WholeObjectKey holds the current JSON payload.
	WholeObjectKey = "rotinaai_settings_v2"
	// LegacyWholeObjectKey held the payload before theme moved to its own
	// channel. It is still read as a fallback and removed on Clear.
	LegacyWholeObjectKey = "rotinaai_settings_v1"
)

var _ Adapter = (*WholeObjectAdapter)(nil)

// WholeObjectAdapter stores the record as a single JSON object.
type WholeObjectAdapter struct {
	store  Storage
	logger *slog.Logger
}

func NewWholeObjectAdapter(store Storage, logger *slog.Logger) *WholeObjectAdapter {
	return &WholeObjectAdapter{store: store, logger: logger}
}

func (a *WholeObjectAdapter) Mode() Mode { return ModeWholeObject }

// Load reads the current key, falling back to the v1 key when the current
// one has never been written.
func (a *WholeObjectAdapter) Load(ctx context.Context) *types.StoredSettingsRecord {
	for _, key := range []string{WholeObjectKey, LegacyWholeObjectKey} {
		raw, ok, err := a.store.Get(ctx, key)
		if err != nil {
			a.logger.WarnContext(ctx, "Reading stored settings failed, using defaults",
				slog.String("key", key), slog.Any("error", err))
			return nil
		}
		if !ok {
			continue
		}
		rec, err := DecodeSettingsJSON([]byte(raw))
		if err != nil {
			a.logger.WarnContext(ctx, "Ignoring malformed stored settings",
				slog.String("key", key), slog.Any("error", err))
			return nil
		}
		return rec
	}
	return nil
}

// Write overwrites the payload with record.
func (a *WholeObjectAdapter) Write(ctx context.Context, record types.StoredSettingsRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := a.store.Set(ctx, WholeObjectKey, string(payload)); err != nil {
		return fmt.Errorf("writing %s: %w", WholeObjectKey, err)
	}
	return nil
}

// Clear removes the current and legacy payloads. Every key is attempted
// even if an earlier removal fails.
func (a *WholeObjectAdapter) Clear(ctx context.Context) error {
	return removeKeys(ctx, a.store, []string{WholeObjectKey, LegacyWholeObjectKey})
}

// DecodeSettingsJSON validates raw as a JSON object and extracts every known
// leaf that has the expected JSON type. Unknown keys are ignored. A nil
// record with a nil error means the object held nothing usable.
func DecodeSettingsJSON(raw []byte) (*types.StoredSettingsRecord, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("payload is not valid JSON: %w", types.ErrInvalidInput)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("payload is not a JSON object: %w", types.ErrInvalidInput)
	}
	return decodeStored(jsonSource{root: root}), nil
}

type jsonSource struct {
	root gjson.Result
}

func (s jsonSource) str(path string) (string, bool) {
	r := s.root.Get(path)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

func (s jsonSource) boolean(path string) (bool, bool) {
	switch s.root.Get(path).Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	default:
		return false, false
	}
}

func removeKeys(ctx context.Context, store Storage, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("removing %s: %w", key, err)
		}
	}
	return firstErr
}
