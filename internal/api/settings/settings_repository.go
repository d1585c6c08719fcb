package settings

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/rotinaai-settings/internal/kv"
)

var _ SettingsRepository = (*KVSettingsRepo)(nil)

type SettingsRepository interface {
	// Mode reports the persistence mode of every adapter this repository
	// hands out.
	Mode() Mode

	// ForUser returns an adapter whose keys are scoped to userID.
	ForUser(userID uuid.UUID) Adapter
}

// KVSettingsRepo hands out per-user adapters over one shared store.
type KVSettingsRepo struct {
	logger *slog.Logger
	store  kv.Store
	mode   Mode
}

func NewKVSettingsRepo(store kv.Store, mode Mode, logger *slog.Logger) (*KVSettingsRepo, error) {
	if _, err := NewAdapter(mode, store, logger); err != nil {
		return nil, err
	}
	return &KVSettingsRepo{
		logger: logger,
		store:  store,
		mode:   mode,
	}, nil
}

// UserKeyPrefix is the namespace of userID's keys in stores that scope by
// prefix.
func UserKeyPrefix(userID uuid.UUID) string {
	return kv.UserKeyPrefix(userID)
}

func (r *KVSettingsRepo) Mode() Mode { return r.mode }

func (r *KVSettingsRepo) ForUser(userID uuid.UUID) Adapter {
	store := kv.ForUser(r.store, userID)
	l := r.logger.With(slog.String("userID", userID.String()), slog.String("mode", string(r.mode)))
	if r.mode == ModePerField {
		return NewPerFieldAdapter(store, l)
	}
	return NewWholeObjectAdapter(store, l)
}
