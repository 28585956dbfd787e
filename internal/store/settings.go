package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fitjournal/internal/db"
	"fitjournal/internal/models"
)

// SettingsStore holds the singleton user profile. Saves overwrite the
// record wholesale; there is no field-level merge.
type SettingsStore struct {
	mu       sync.Mutex
	kv       *db.KV
	logger   *zap.Logger
	settings models.UserSettings
}

// NewSettingsStore loads the persisted settings. Missing or unreadable
// state degrades to the default record; corruption is logged, not
// surfaced.
func NewSettingsStore(kv *db.KV, logger *zap.Logger) *SettingsStore {
	s := &SettingsStore{kv: kv, logger: logger, settings: models.DefaultSettings()}

	raw, ok, err := kv.Get(settingsKey)
	if err != nil {
		logger.Warn("could not read persisted settings; using defaults", zap.Error(err))
		return s
	}
	if !ok {
		return s
	}

	var loaded models.UserSettings
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		logger.Warn("persisted settings are corrupt; using defaults", zap.Error(err))
		return s
	}
	s.settings = coerceSettings(loaded)
	return s
}

// coerceSettings maps out-of-range height and weigh-in day to "absent".
func coerceSettings(in models.UserSettings) models.UserSettings {
	if in.HeightCm != nil && *in.HeightCm <= 0 {
		in.HeightCm = nil
	}
	if in.WeighInDay != nil && (*in.WeighInDay < 0 || *in.WeighInDay > 6) {
		in.WeighInDay = nil
	}
	return in
}

// Save overwrites the singleton record.
func (s *SettingsStore) Save(settings models.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coerced := coerceSettings(settings)
	raw, err := json.Marshal(coerced)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Put(settingsKey, string(raw)); err != nil {
		return err
	}
	s.settings = coerced
	return nil
}

// Load returns the last-saved settings, or the default record when
// nothing has been saved.
func (s *SettingsStore) Load() models.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.settings
	if out.HeightCm != nil {
		h := *out.HeightCm
		out.HeightCm = &h
	}
	if out.WeighInDay != nil {
		d := *out.WeighInDay
		out.WeighInDay = &d
	}
	return out
}
