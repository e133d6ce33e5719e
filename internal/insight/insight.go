// Package insight buckets normalized activity records into time periods
// and derives productivity metrics per bucket.
package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/workpulse/dashd/internal/domain"
	apperrors "github.com/workpulse/dashd/internal/errors"
)

// GroupBy selects the period bucketing granularity.
type GroupBy string

const (
	GroupDaily   GroupBy = "daily"
	GroupWeekly  GroupBy = "weekly"
	GroupMonthly GroupBy = "monthly"
)

// ParseGroupBy validates a user-supplied grouping. Empty input defaults
// to daily.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "":
		return GroupDaily, nil
	case GroupDaily, GroupWeekly, GroupMonthly:
		return GroupBy(s), nil
	default:
		return "", fmt.Errorf("%w: unknown group_by %q (want daily, weekly or monthly)", apperrors.ErrInvalidInput, s)
	}
}

// productiveKinds is the closed, case-sensitive set of activity types
// that count toward productive time.
var productiveKinds = map[string]bool{
	"code":     true,
	"build":    true,
	"test":     true,
	"debug":    true,
	"research": true,
	"design":   true,
}

// Computer buckets records into periods in a fixed location. The
// location pins which wall-clock day a timestamp belongs to.
type Computer struct {
	loc *time.Location
}

func New(loc *time.Location) *Computer {
	if loc == nil {
		loc = time.Local
	}
	return &Computer{loc: loc}
}

// group holds one period's records in encounter order. Encounter order
// matters: top-app and top-kind ties resolve to the earliest-seen value.
type group struct {
	records []domain.ActivityRecord
}

// ComputePeriods filters records to [start, end], buckets them by the
// requested granularity and computes per-period metrics. Output is
// sorted ascending by period key; the key formats (YYYY-MM-DD for daily
// and weekly, YYYY-MM for monthly) make string order chronological.
func (c *Computer) ComputePeriods(records []domain.ActivityRecord, groupBy GroupBy, start, end time.Time) []domain.PeriodMetrics {
	startMs := start.UnixMilli()
	endMs := end.UnixMilli()

	groups := make(map[string]*group)
	for _, rec := range records {
		if rec.Timestamp < startMs || rec.Timestamp > endMs {
			continue
		}
		key := c.periodKey(rec.Timestamp, groupBy)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.records = append(g.records, rec)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	periods := make([]domain.PeriodMetrics, 0, len(keys))
	for _, key := range keys {
		periods = append(periods, computeGroup(key, groups[key].records))
	}
	return periods
}

// periodKey maps an epoch-millisecond timestamp to its bucket key.
// Weekly buckets key on the Sunday on or before the record's date.
func (c *Computer) periodKey(epochMs int64, groupBy GroupBy) string {
	t := time.UnixMilli(epochMs).In(c.loc)
	switch groupBy {
	case GroupWeekly:
		sunday := t.AddDate(0, 0, -int(t.Weekday()))
		return sunday.Format("2006-01-02")
	case GroupMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func computeGroup(key string, records []domain.ActivityRecord) domain.PeriodMetrics {
	var totalSec, productiveSec int
	projects := make(map[string]bool)
	for _, rec := range records {
		totalSec += rec.DurationSeconds
		if productiveKinds[rec.ActivityType] {
			productiveSec += rec.DurationSeconds
		}
		if rec.ProjectName != nil {
			projects[*rec.ProjectName] = true
		}
	}

	pct := 0
	if totalSec > 0 {
		pct = int(math.Round(float64(productiveSec) / float64(totalSec) * 100))
	}

	return domain.PeriodMetrics{
		Period:                key,
		TotalTimeSeconds:      totalSec,
		ProductiveTimeSeconds: productiveSec,
		ProductivityPct:       pct,
		ActivityCount:         len(records),
		TopActivityType:       topValue(records, func(r domain.ActivityRecord) string { return r.ActivityType }),
		TopApp:                topValue(records, func(r domain.ActivityRecord) string { return r.AppName }),
		ProjectsWorked:        len(projects),
		FocusScore:            focusScore(productiveSec),
	}
}

// topValue returns the most frequent value of field across records.
// Candidates are walked in first-seen order and a challenger must be
// strictly more frequent to displace the incumbent, so ties go to the
// earliest-encountered value.
func topValue(records []domain.ActivityRecord, field func(domain.ActivityRecord) string) string {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		v := field(rec)
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

// focusScore is a capped linear scale: 25 points per productive hour,
// so 4 productive hours scores 100.
func focusScore(productiveSec int) int {
	score := int(math.Round(float64(productiveSec) / 3600 * 25))
	if score > 100 {
		score = 100
	}
	return score
}

// Summarize aggregates across computed periods. The mean productivity
// percentage is an unweighted mean of per-period percentages, not a
// duration-weighted one.
func Summarize(periods []domain.PeriodMetrics) domain.Summary {
	if len(periods) == 0 {
		return domain.Summary{}
	}

	var totalSec, totalActivities, pctSum int
	best := periods[0]
	for _, p := range periods {
		totalSec += p.TotalTimeSeconds
		totalActivities += p.ActivityCount
		pctSum += p.ProductivityPct
		if p.ProductivityPct > best.ProductivityPct {
			best = p
		}
	}

	totalHours := round2(float64(totalSec) / 3600)
	return domain.Summary{
		TotalHours:         totalHours,
		AvgDailyHours:      round2(totalHours / float64(len(periods))),
		AvgProductivityPct: int(math.Round(float64(pctSum) / float64(len(periods)))),
		BestPeriod:         best.Period,
		BestPeriodPct:      best.ProductivityPct,
		TotalActivities:    totalActivities,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
