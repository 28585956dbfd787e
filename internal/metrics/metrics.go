// Package metrics computes all derived values from an entry snapshot and
// the user settings. Every function is pure: same inputs, same outputs,
// no I/O and no retained references. Nothing here is ever persisted;
// callers recompute from the full snapshot on demand.
package metrics

import (
	"time"

	"fitjournal/internal/models"
)

const dateLayout = "2006-01-02"

// LatestWeightUpTo returns the weight of the most recent weight-bearing
// entry. A non-empty cutoff (YYYY-MM-DD) excludes entries dated after it.
// The second return value is false when no eligible entry exists.
// ISO dates compare correctly as strings, so no parsing is needed here.
func LatestWeightUpTo(entries []models.LogEntry, cutoff string) (float64, bool) {
	var (
		best     float64
		bestDate string
		found    bool
	)
	for _, e := range entries {
		if e.Weight == nil || *e.Weight <= 0 {
			continue
		}
		if cutoff != "" && e.Date > cutoff {
			continue
		}
		if !found || e.Date > bestDate {
			best = *e.Weight
			bestDate = e.Date
			found = true
		}
	}
	return best, found
}

// METForActivity returns the metabolic equivalent for an activity label.
// Unknown labels fall back to the "other" value.
func METForActivity(activity string) float64 {
	switch activity {
	case models.ActivityWalking:
		return 4.0
	case models.ActivityRunning:
		return 10.0
	case models.ActivityCycling:
		return 8.0
	case models.ActivityGym:
		return 5.0
	default:
		return 5.0
	}
}

// CaloriesForEntry estimates the calories burned by one entry's activity
// using MET x weight_kg x hours. It returns false (undefined, distinct
// from zero) when the entry has no positive duration or no weight can be
// resolved. The weight is the entry's own when recorded, otherwise the
// latest recorded weight up to the entry's date.
func CaloriesForEntry(e models.LogEntry, entries []models.LogEntry) (float64, bool) {
	if e.DurationMinutes == nil || *e.DurationMinutes <= 0 {
		return 0, false
	}

	var weight float64
	if e.Weight != nil && *e.Weight > 0 {
		weight = *e.Weight
	} else {
		w, ok := LatestWeightUpTo(entries, e.Date)
		if !ok {
			return 0, false
		}
		weight = w
	}

	cal := METForActivity(e.ActivityType) * weight * (float64(*e.DurationMinutes) / 60.0)
	if cal <= 0 {
		return 0, false
	}
	return cal, true
}

// WeeklyCalories sums the calories of entries in the trailing 7-day
// window ending at today (inclusive). Entries without a defined calorie
// value contribute nothing.
func WeeklyCalories(entries []models.LogEntry, today time.Time) float64 {
	from := today.AddDate(0, 0, -6).Format(dateLayout)
	to := today.Format(dateLayout)

	var sum float64
	for _, e := range entries {
		if e.Date < from || e.Date > to {
			continue
		}
		if cal, ok := CaloriesForEntry(e, entries); ok {
			sum += cal
		}
	}
	return sum
}

// CurrentStreak counts consecutive logged days ending at the most recent
// entry. The streak is alive only while the most recent entry is today
// or yesterday relative to now; it then counts the unbroken run backward
// from that entry, not from now. A day after a missed log the count can
// therefore hold its old value before dropping to zero.
func CurrentStreak(entries []models.LogEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}

	logged := make(map[string]bool, len(entries))
	var mostRecent string
	for _, e := range entries {
		logged[e.Date] = true
		if e.Date > mostRecent {
			mostRecent = e.Date
		}
	}

	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if mostRecent != today && mostRecent != yesterday {
		return 0
	}

	day, err := time.Parse(dateLayout, mostRecent)
	if err != nil {
		return 0
	}

	streak := 1
	for {
		day = day.AddDate(0, 0, -1)
		if !logged[day.Format(dateLayout)] {
			break
		}
		streak++
	}
	return streak
}

// BMI categories. Boundaries are inclusive on the lower side: exactly
// 18.5 is "normal".
const (
	CategoryUnderweight = "underweight"
	CategoryNormal      = "normal"
	CategoryOverweight  = "overweight"
	CategoryObese       = "obese"
)

// BMI computes body mass index from the latest weight-bearing entry and
// the configured height. Returns false when no height is set or no
// weight has ever been recorded.
func BMI(entries []models.LogEntry, settings models.UserSettings) (float64, string, bool) {
	if settings.HeightCm == nil || *settings.HeightCm <= 0 {
		return 0, "", false
	}
	weight, ok := LatestWeightUpTo(entries, "")
	if !ok {
		return 0, "", false
	}

	h := *settings.HeightCm / 100.0
	bmi := weight / (h * h)

	var category string
	switch {
	case bmi < 18.5:
		category = CategoryUnderweight
	case bmi < 25.0:
		category = CategoryNormal
	case bmi < 30.0:
		category = CategoryOverweight
	default:
		category = CategoryObese
	}
	return bmi, category, true
}
