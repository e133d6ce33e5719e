// Package normalize maps heterogeneous raw activity payloads into the
// canonical ActivityRecord shape. Recovery is per record: one corrupt
// record is replaced by a safe sentinel, never dropped, so downstream
// consumers that count records see the true batch size.
package normalize

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/workpulse/dashd/internal/domain"
)

// Sentinel values substituted for absent or unparsable fields.
const (
	DefaultActivityType = "other"
	DefaultAppName      = "Unknown"
)

// Raw is one undecoded upstream record. The peer process and older store
// schemas disagree on field types, so everything is interface-typed until
// normalized.
type Raw map[string]any

// Normalizer converts raw records to canonical ones. The clock is
// injectable so sentinel timestamps are testable.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer using the wall clock.
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a Normalizer with a fixed clock, for tests.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Batch normalizes every record, preserving batch size and order.
func (n *Normalizer) Batch(raws []Raw) []domain.ActivityRecord {
	records := make([]domain.ActivityRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, n.Record(raw))
	}
	return records
}

// Record normalizes a single raw record, substituting defaults for
// anything missing or malformed.
func (n *Normalizer) Record(raw Raw) domain.ActivityRecord {
	ts, ok := parseTimestamp(raw["timestamp"])
	if !ok {
		// Unparsable timestamp: keep the record with a now-stamped
		// sentinel rather than skewing downstream counts by dropping it.
		ts = n.now().UnixMilli()
	}

	rec := domain.ActivityRecord{
		Timestamp:       ts,
		ActivityType:    stringOr(raw["activity_type"], DefaultActivityType),
		AppName:         stringOr(raw["app_name"], DefaultAppName),
		DurationSeconds: durationOrZero(raw["duration_seconds"]),
	}

	if p, ok := raw["project_name"].(string); ok && p != "" {
		rec.ProjectName = &p
	}

	return rec
}

// parseTimestamp accepts epoch millis (any numeric encoding), RFC 3339,
// or a bare date.
func parseTimestamp(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return 0, false
		}
		return int64(t), true
	case int64:
		if t <= 0 {
			return 0, false
		}
		return t, true
	case int:
		if t <= 0 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		ms, err := t.Int64()
		if err != nil || ms <= 0 {
			return 0, false
		}
		return ms, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UnixMilli(), true
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed.UnixMilli(), true
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed.UnixMilli(), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// durationOrZero clamps to the durationSeconds >= 0 invariant.
func durationOrZero(v any) int {
	var d float64
	switch t := v.(type) {
	case float64:
		d = t
	case int:
		d = float64(t)
	case int64:
		d = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		d = f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		d = f
	default:
		return 0
	}
	if d < 0 {
		return 0
	}
	return int(d)
}
