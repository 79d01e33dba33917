package agents

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Derived metrics the orchestrator computes itself before fanning out to the
// analytic agents. Malformed timestamps are skipped, never fatal.

const dateLayout = "2006-01-02"

// mealDate extracts the calendar date of a meal: the explicit Date field
// when set, otherwise the date portion of the ISO CreatedAt timestamp.
func mealDate(m MealRecord) (time.Time, bool) {
	raw := m.Date
	if raw == "" {
		if idx := strings.Index(m.CreatedAt, "T"); idx > 0 {
			raw = m.CreatedAt[:idx]
		} else {
			raw = m.CreatedAt
		}
	}
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// mealHour extracts the hour-of-day (with minutes as a fraction) from the
// meal's HH:MM field, falling back to the CreatedAt timestamp.
func mealHour(m MealRecord) (float64, bool) {
	if h, ok := parseClock(m.Time); ok {
		return h, true
	}
	if idx := strings.Index(m.CreatedAt, "T"); idx >= 0 && idx+1 < len(m.CreatedAt) {
		return parseClock(m.CreatedAt[idx+1:])
	}
	return 0, false
}

func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minStr := parts[1]
	if len(minStr) > 2 {
		minStr = minStr[:2]
	}
	minute, err := strconv.Atoi(minStr)
	if err != nil || minute < 0 || minute > 59 {
		return float64(hour), true
	}
	return float64(hour) + float64(minute)/60, true
}

// distinctDates returns the sorted unique meal dates.
func distinctDates(meals []MealRecord) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, m := range meals {
		if d, ok := mealDate(m); ok {
			seen[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// ActiveDayCount counts distinct calendar dates among the meals.
func ActiveDayCount(meals []MealRecord) int {
	return len(distinctDates(meals))
}

// StreakLength returns the longest run of consecutive calendar dates present
// among the meals.
func StreakLength(meals []MealRecord) int {
	dates := distinctDates(meals)
	if len(dates) == 0 {
		return 0
	}

	best, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	return best
}

// LoggingGapDays returns the calendar days between now (UTC) and the most
// recent meal date, or 0 when there are no dated meals.
func LoggingGapDays(meals []MealRecord, now time.Time) int {
	dates := distinctDates(meals)
	if len(dates) == 0 {
		return 0
	}
	latest := dates[len(dates)-1]
	today := now.UTC().Truncate(24 * time.Hour)
	gap := int(today.Sub(latest).Hours() / 24)
	if gap < 0 {
		return 0
	}
	return gap
}

// ExtractEnergyTags collects each meal's energy tag, preferring the explicit
// tag over the post-meal rating, skipping meals with neither.
func ExtractEnergyTags(meals []MealRecord) []string {
	tags := make([]string, 0, len(meals))
	for _, m := range meals {
		switch {
		case m.EnergyTag != "":
			tags = append(tags, m.EnergyTag)
		case m.EnergyAfter != "":
			tags = append(tags, m.EnergyAfter)
		}
	}
	return tags
}

// AvgEnergyScore maps recent energy tags onto a 0..1 scale and averages
// them. Meals without tags are skipped; no tags at all yields a neutral 0.6.
func AvgEnergyScore(meals []MealRecord) float64 {
	tags := ExtractEnergyTags(meals)
	if len(tags) == 0 {
		return 0.6
	}
	var sum float64
	for _, t := range tags {
		switch t {
		case "high", "good":
			sum += 1.0
		case "low":
			sum += 0.2
		default:
			sum += 0.6
		}
	}
	return sum / float64(len(tags))
}

// mealTypeForHour buckets an hour-of-day into a meal type.
func mealTypeForHour(hour float64) string {
	switch {
	case hour >= 6 && hour < 12:
		return "breakfast"
	case hour >= 12 && hour < 17:
		return "lunch"
	case hour >= 17 && hour < 21:
		return "dinner"
	default:
		return "snack"
	}
}
