package models

// Activity labels recognized by the calorie engine. Anything else is
// treated like ActivityOther when looking up MET values.
const (
	ActivityWalking = "walking"
	ActivityRunning = "running"
	ActivityCycling = "cycling"
	ActivityGym     = "gym"
	ActivityOther   = "other"
)

// LogEntry is one day's recorded weight and/or activity. Date is the
// natural key (YYYY-MM-DD): the store holds at most one entry per date.
// Pointer fields distinguish "not recorded" from zero.
type LogEntry struct {
	Date            string   `json:"date"`
	Weight          *float64 `json:"weight,omitempty"` // kg
	ActivityType    string   `json:"activityType,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// UserSettings is the singleton profile record. It is overwritten
// wholesale on every save or import; fields are never merged.
type UserSettings struct {
	FirstName     string   `json:"firstName"`
	HeightCm      *float64 `json:"heightCm,omitempty"`
	WeighInDay    *int     `json:"weighInDay,omitempty"` // weekday index, 0=Sunday
	ProfilePicURL string   `json:"profilePicUrl,omitempty"`
}

// DefaultSettings is what Load returns when nothing has been saved yet
// or the persisted record is unreadable.
func DefaultSettings() UserSettings {
	return UserSettings{}
}

// Float64Ptr and IntPtr are small helpers for building optional fields.
func Float64Ptr(v float64) *float64 { return &v }
func IntPtr(v int) *int             { return &v }
