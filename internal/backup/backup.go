// Package backup serializes the stores to portable formats (versioned
// JSON envelope, CSV) and parses backup payloads back into store
// records. Parsing is lenient per field and strict per envelope: bad
// field values coerce to "absent", a bad envelope rejects the whole
// import.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"fitjournal/internal/models"
)

// FormatVersion identifies the backup envelope format.
const FormatVersion = 1

var (
	// ErrMalformedBackup means the payload is not a parseable backup
	// envelope; the stores must be left untouched.
	ErrMalformedBackup = errors.New("malformed JSON backup")
	// ErrNoData means there is nothing to export.
	ErrNoData = errors.New("no data to export")
)

// Envelope is the parsed backup payload. UserSettings is nil when the
// backup carries no settings; Logs is nil when it carries no logs.
type Envelope struct {
	Version      int
	ExportedAt   string
	UserSettings *models.UserSettings
	Logs         []models.LogEntry
}

type wireEnvelope struct {
	Version      int           `json:"version"`
	ExportedAt   string        `json:"exportedAt"`
	UserSettings *wireSettings `json:"userSettings"`
	Logs         []wireLog     `json:"logs"`
}

type wireSettings struct {
	FirstName     string    `json:"firstName"`
	HeightCm      flexFloat `json:"heightCm"`
	WeighInDay    flexInt   `json:"weighInDay"`
	ProfilePicURL string    `json:"profilePicUrl"`
}

type wireLog struct {
	Date            string    `json:"date"`
	Weight          flexFloat `json:"weight"`
	ActivityType    string    `json:"activityType"`
	DurationMinutes flexInt   `json:"durationMinutes"`
	Notes           string    `json:"notes"`
}

// isJSONNull guards the flex types: unmarshalling null into a float64
// succeeds without touching it, which would read as a present zero.
func isJSONNull(b []byte) bool {
	return string(bytes.TrimSpace(b)) == "null"
}

// flexFloat accepts a JSON number or a numeric string; anything else
// (including null) decodes as absent, never as an error.
type flexFloat struct {
	value float64
	ok    bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	f.ok = false
	if isJSONNull(b) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.value, f.ok = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.value, f.ok = v, true
		}
	}
	return nil
}

// flexInt accepts a JSON number (truncated) or an integer string.
type flexInt struct {
	value int
	ok    bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.ok = false
	if isJSONNull(b) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.value, f.ok = int(n), true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			f.value, f.ok = v, true
		}
	}
	return nil
}

// ParseBackup parses text as a backup envelope. Only envelope-level
// failures return an error; per-field problems coerce to absent.
func ParseBackup(text string) (*Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, ErrMalformedBackup
	}

	env := &Envelope{Version: wire.Version, ExportedAt: wire.ExportedAt}

	if wire.UserSettings != nil {
		s := models.UserSettings{
			FirstName:     wire.UserSettings.FirstName,
			ProfilePicURL: wire.UserSettings.ProfilePicURL,
		}
		if wire.UserSettings.HeightCm.ok {
			s.HeightCm = models.Float64Ptr(wire.UserSettings.HeightCm.value)
		}
		if wire.UserSettings.WeighInDay.ok {
			s.WeighInDay = models.IntPtr(wire.UserSettings.WeighInDay.value)
		}
		env.UserSettings = &s
	}

	if wire.Logs != nil {
		env.Logs = make([]models.LogEntry, 0, len(wire.Logs))
		for _, l := range wire.Logs {
			e := models.LogEntry{
				Date:         l.Date,
				ActivityType: l.ActivityType,
				Notes:        l.Notes,
			}
			if l.Weight.ok {
				e.Weight = models.Float64Ptr(l.Weight.value)
			}
			if l.DurationMinutes.ok {
				e.DurationMinutes = models.IntPtr(l.DurationMinutes.value)
			}
			env.Logs = append(env.Logs, e)
		}
	}

	return env, nil
}

// exportEnvelope mirrors the on-disk format with native number fields.
type exportEnvelope struct {
	Version      int                 `json:"version"`
	ExportedAt   string              `json:"exportedAt"`
	UserSettings models.UserSettings `json:"userSettings"`
	Logs         []models.LogEntry   `json:"logs"`
}

// ExportBackup produces the versioned JSON envelope. Logs is always an
// array, even when the store is empty.
func ExportBackup(entries []models.LogEntry, settings models.UserSettings, now time.Time) ([]byte, error) {
	if entries == nil {
		entries = []models.LogEntry{}
	}
	env := exportEnvelope{
		Version:      FormatVersion,
		ExportedAt:   now.UTC().Format(time.RFC3339),
		UserSettings: settings,
		Logs:         entries,
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}
	return raw, nil
}
