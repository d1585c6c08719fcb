package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/rotinaai-settings/internal/types"
)

// FieldKeyPrefix namespaces the per-field keys.
const FieldKeyPrefix = "rotinaai:settings:"

const (
	boolTrue  = "1"
	boolFalse = "0"
)

// LegacyFieldKeys were written by earlier schema versions and are only ever
// removed.
var LegacyFieldKeys = []string{
	LegacyWholeObjectKey,
	FieldKeyPrefix + "appearance:theme",
}

var _ Adapter = (*PerFieldAdapter)(nil)

// PerFieldAdapter stores each leaf under its own key, e.g.
// "rotinaai:settings:profile:workingHours:start".
type PerFieldAdapter struct {
	store  Storage
	logger *slog.Logger
}

func NewPerFieldAdapter(store Storage, logger *slog.Logger) *PerFieldAdapter {
	return &PerFieldAdapter{store: store, logger: logger}
}

func (a *PerFieldAdapter) Mode() Mode { return ModePerField }

// FieldKey returns the storage key for a dotted leaf path.
func FieldKey(path string) string {
	return FieldKeyPrefix + strings.ReplaceAll(path, ".", ":")
}

// FieldKeys lists the key of every tracked leaf.
func FieldKeys() []string {
	paths := leafPaths()
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, FieldKey(p))
	}
	return keys
}

// Load reads every tracked key. Values that are missing, empty or fail
// their type check are left out; filling them is Merge's job.
func (a *PerFieldAdapter) Load(ctx context.Context) *types.StoredSettingsRecord {
	src := &keySource{ctx: ctx, store: a.store}
	rec := decodeStored(src)
	if src.err != nil {
		a.logger.WarnContext(ctx, "Reading stored settings failed, using defaults", slog.Any("error", src.err))
		return nil
	}
	return rec
}

// Write sets one key per present leaf. The prior value of every target key
// is read first; if a set fails, the keys already written are put back so a
// failed write leaves storage as it was.
func (a *PerFieldAdapter) Write(ctx context.Context, record types.StoredSettingsRecord) error {
	var sink keySink
	encodeStored(record, &sink)

	prior := make([]priorValue, 0, len(sink.pairs))
	for _, kv := range sink.pairs {
		v, ok, err := a.store.Get(ctx, kv[0])
		if err != nil {
			return fmt.Errorf("reading %s before write: %w", kv[0], err)
		}
		prior = append(prior, priorValue{key: kv[0], value: v, present: ok})
	}

	for i, kv := range sink.pairs {
		if err := a.store.Set(ctx, kv[0], kv[1]); err != nil {
			a.rollback(ctx, prior[:i])
			return fmt.Errorf("writing %s: %w", kv[0], err)
		}
	}
	return nil
}

type priorValue struct {
	key     string
	value   string
	present bool
}

// rollback restores written keys in reverse order. Failures are logged and
// the rest are still attempted.
func (a *PerFieldAdapter) rollback(ctx context.Context, written []priorValue) {
	for i := len(written) - 1; i >= 0; i-- {
		p := written[i]
		var err error
		if p.present {
			err = a.store.Set(ctx, p.key, p.value)
		} else {
			err = a.store.Remove(ctx, p.key)
		}
		if err != nil {
			a.logger.WarnContext(ctx, "Restoring settings key failed", slog.String("key", p.key), slog.Any("error", err))
		}
	}
}

// Clear removes every tracked key and the legacy keys.
func (a *PerFieldAdapter) Clear(ctx context.Context) error {
	keys := append(FieldKeys(), LegacyFieldKeys...)
	return removeKeys(ctx, a.store, keys)
}

// keySource reads leaves from individual keys. The first backend error is
// kept and every later read reports absent.
type keySource struct {
	ctx   context.Context
	store Storage
	err   error
}

func (s *keySource) raw(path string) (string, bool) {
	if s.err != nil {
		return "", false
	}
	v, ok, err := s.store.Get(s.ctx, FieldKey(path))
	if err != nil {
		s.err = fmt.Errorf("reading %s: %w", FieldKey(path), err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *keySource) str(path string) (string, bool) {
	return s.raw(path)
}

func (s *keySource) boolean(path string) (bool, bool) {
	v, ok := s.raw(path)
	if !ok {
		return false, false
	}
	switch v {
	case boolTrue, "true":
		return true, true
	case boolFalse, "false":
		return false, true
	default:
		return false, false
	}
}

type keySink struct {
	pairs [][2]string
}

func (s *keySink) putString(path, value string) {
	s.pairs = append(s.pairs, [2]string{FieldKey(path), value})
}

func (s *keySink) putBool(path string, value bool) {
	encoded := boolFalse
	if value {
		encoded = boolTrue
	}
	s.pairs = append(s.pairs, [2]string{FieldKey(path), encoded})
}
