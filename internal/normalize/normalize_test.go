package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() (time.Time, func() time.Time) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	return now, func() time.Time { return now }
}

func TestRecord_CompleteInput(t *testing.T) {
	n := New()
	rec := n.Record(Raw{
		"timestamp":        float64(1756200000000),
		"activity_type":    "code",
		"app_name":         "Zed",
		"duration_seconds": float64(300),
		"project_name":     "dashd",
	})

	assert.Equal(t, int64(1756200000000), rec.Timestamp)
	assert.Equal(t, "code", rec.ActivityType)
	assert.Equal(t, "Zed", rec.AppName)
	assert.Equal(t, 300, rec.DurationSeconds)
	require.NotNil(t, rec.ProjectName)
	assert.Equal(t, "dashd", *rec.ProjectName)
}

func TestRecord_MissingFieldsGetSentinels(t *testing.T) {
	n := New()
	rec := n.Record(Raw{"timestamp": float64(1756200000000)})

	assert.Equal(t, DefaultActivityType, rec.ActivityType)
	assert.Equal(t, DefaultAppName, rec.AppName)
	assert.Equal(t, 0, rec.DurationSeconds)
	assert.Nil(t, rec.ProjectName)
}

func TestRecord_NegativeDurationClamped(t *testing.T) {
	n := New()
	rec := n.Record(Raw{"timestamp": float64(1756200000000), "duration_seconds": float64(-17)})
	assert.Equal(t, 0, rec.DurationSeconds)
}

func TestRecord_MalformedDurationZero(t *testing.T) {
	n := New()
	rec := n.Record(Raw{"timestamp": float64(1756200000000), "duration_seconds": "not a number"})
	assert.Equal(t, 0, rec.DurationSeconds)
}

func TestRecord_StringTimestamps(t *testing.T) {
	n := New()

	rfc := n.Record(Raw{"timestamp": "2026-08-26T10:30:00Z"})
	assert.Equal(t, time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC).UnixMilli(), rfc.Timestamp)

	day := n.Record(Raw{"timestamp": "2026-08-26"})
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC).UnixMilli(), day.Timestamp)
}

func TestRecord_UnparsableTimestampGetsSentinel(t *testing.T) {
	now, clock := fixedClock()
	n := NewWithClock(clock)

	rec := n.Record(Raw{"timestamp": "yesterday-ish", "activity_type": "code"})
	assert.Equal(t, now.UnixMilli(), rec.Timestamp)
	assert.Equal(t, "code", rec.ActivityType, "only the corrupt field is replaced")
}

func TestBatch_SizePreservedUnderCorruption(t *testing.T) {
	_, clock := fixedClock()
	n := NewWithClock(clock)

	raws := []Raw{
		{"timestamp": float64(1756200000000), "activity_type": "code"},
		{"timestamp": nil},       // corrupt
		{},                       // empty
		{"timestamp": "garbage"}, // unparsable
	}

	records := n.Batch(raws)
	assert.Len(t, records, len(raws), "one bad record never fails or shrinks the batch")
	for _, rec := range records {
		assert.NotEmpty(t, rec.ActivityType)
		assert.NotEmpty(t, rec.AppName)
		assert.GreaterOrEqual(t, rec.DurationSeconds, 0)
		assert.Positive(t, rec.Timestamp)
	}
}

func TestBatch_Empty(t *testing.T) {
	n := New()
	assert.Empty(t, n.Batch(nil))
}
