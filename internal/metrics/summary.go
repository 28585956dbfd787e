package metrics

import (
	"fmt"
	"net/url"
	"time"

	"fitjournal/internal/models"
)

// TrendPoint is one day on the weight trend chart. Weight is nil on
// days without a recorded weight.
type TrendPoint struct {
	Date   string   `json:"date"`
	Weight *float64 `json:"weight"`
}

// DashboardSummary bundles every derived value the dashboard shows.
type DashboardSummary struct {
	ReferenceDate     string       `json:"referenceDate"`
	HasTodayEntry     bool         `json:"hasTodayEntry"`
	CurrentWeight     *float64     `json:"currentWeight"`
	TotalChange       *float64     `json:"totalChange"` // positive = loss
	EntriesThisWeek   int          `json:"entriesThisWeek"`
	WeeklyCalories    float64      `json:"weeklyCalories"`
	CurrentStreakDays int          `json:"currentStreakDays"`
	BMI               *float64     `json:"bmi"`
	BMICategory       string       `json:"bmiCategory,omitempty"`
	Last7DaysTrend    []TrendPoint `json:"last7DaysTrend"`
}

// Summary recomputes the dashboard from scratch; nothing is cached.
// today is the user's reference date.
func Summary(entries []models.LogEntry, settings models.UserSettings, today time.Time) DashboardSummary {
	todayStr := today.Format(dateLayout)
	from := today.AddDate(0, 0, -6).Format(dateLayout)

	out := DashboardSummary{
		ReferenceDate:     todayStr,
		WeeklyCalories:    WeeklyCalories(entries, today),
		CurrentStreakDays: CurrentStreak(entries, today),
	}

	// Earliest and latest weight-bearing entries drive current weight
	// and total change (earliest minus latest; losing weight is
	// positive).
	var (
		firstWeight, lastWeight float64
		firstDate, lastDate     string
		haveWeight              bool
	)
	byDate := make(map[string]models.LogEntry, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
		if e.Date == todayStr {
			out.HasTodayEntry = true
		}
		if e.Date >= from && e.Date <= todayStr {
			out.EntriesThisWeek++
		}
		if e.Weight == nil || *e.Weight <= 0 {
			continue
		}
		if !haveWeight {
			firstWeight, lastWeight = *e.Weight, *e.Weight
			firstDate, lastDate = e.Date, e.Date
			haveWeight = true
			continue
		}
		if e.Date < firstDate {
			firstWeight, firstDate = *e.Weight, e.Date
		}
		if e.Date > lastDate {
			lastWeight, lastDate = *e.Weight, e.Date
		}
	}
	if haveWeight {
		current := lastWeight
		change := firstWeight - lastWeight
		out.CurrentWeight = &current
		out.TotalChange = &change
	}

	if bmi, category, ok := BMI(entries, settings); ok {
		out.BMI = &bmi
		out.BMICategory = category
	}

	out.Last7DaysTrend = make([]TrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i).Format(dateLayout)
		point := TrendPoint{Date: d}
		if e, ok := byDate[d]; ok && e.Weight != nil && *e.Weight > 0 {
			w := *e.Weight
			point.Weight = &w
		}
		out.Last7DaysTrend = append(out.Last7DaysTrend, point)
	}

	return out
}

// rruleDays maps weekday index 0-6 (Sunday first) to RRULE BYDAY codes.
var rruleDays = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// ReminderLink builds a calendar deep link for a weekly weigh-in
// reminder on the configured day, starting from the next occurrence of
// that weekday. Returns false when no weigh-in day is set.
func ReminderLink(settings models.UserSettings, now time.Time) (string, bool) {
	if settings.WeighInDay == nil || *settings.WeighInDay < 0 || *settings.WeighInDay > 6 {
		return "", false
	}

	day := *settings.WeighInDay
	start := now
	for int(start.Weekday()) != day {
		start = start.AddDate(0, 0, 1)
	}
	// Floating local time, 08:00-08:15.
	dates := fmt.Sprintf("%sT080000/%sT081500", start.Format("20060102"), start.Format("20060102"))

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", "Weekly weigh-in")
	q.Set("details", "Step on the scale and log your weight.")
	q.Set("dates", dates)
	q.Set("recur", "RRULE:FREQ=WEEKLY;BYDAY="+rruleDays[day])

	return "https://calendar.google.com/calendar/render?" + q.Encode(), true
}
