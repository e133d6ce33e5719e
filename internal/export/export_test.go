package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/dashd/internal/domain"
	apperrors "github.com/workpulse/dashd/internal/errors"
)

var samplePeriods = []domain.PeriodMetrics{
	{
		Period:                "2026-08-03",
		TotalTimeSeconds:      7200,
		ProductiveTimeSeconds: 5400,
		ProductivityPct:       75,
		ActivityCount:         4,
		TopActivityType:       "code",
		TopApp:                "Zed",
		ProjectsWorked:        2,
		FocusScore:            38,
	},
	{
		Period:                "2026-08-04",
		TotalTimeSeconds:      3600,
		ProductiveTimeSeconds: 3600,
		ProductivityPct:       100,
		ActivityCount:         1,
		TopActivityType:       "test",
		TopApp:                "Terminal",
		ProjectsWorked:        1,
		FocusScore:            25,
	},
}

var sampleSummary = domain.Summary{
	TotalHours:         3,
	AvgDailyHours:      1.5,
	AvgProductivityPct: 88,
	BestPeriod:         "2026-08-04",
	BestPeriodPct:      100,
	TotalActivities:    5,
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"csv":   FormatCSV,
		"json":  FormatJSON,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestRenderCSV_ColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePeriods, sampleSummary, FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"period", "total_time_hours", "productive_time_hours",
		"productivity_percentage", "activity_count", "top_activity_type",
		"top_app", "projects_worked", "focus_score",
	}, rows[0])
	assert.Equal(t, []string{"2026-08-03", "2.00", "1.50", "75", "4", "code", "Zed", "2", "38"}, rows[1])
	assert.Equal(t, []string{"2026-08-04", "1.00", "1.00", "100", "1", "test", "Terminal", "1", "25"}, rows[2])
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePeriods, sampleSummary, FormatJSON))

	var report Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	require.Len(t, report.Periods, 2)
	assert.Equal(t, "2026-08-03", report.Periods[0].Period)
	assert.Equal(t, sampleSummary, report.Summary)
}

func TestRenderJSON_EmptyPeriodsIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, domain.Summary{}, FormatJSON))
	assert.Contains(t, buf.String(), `"periods": []`)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePeriods, sampleSummary, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "2026-08-03")
	assert.Contains(t, out, "Terminal")
	assert.Contains(t, out, "Best period: 2026-08-04 (100%)")
	// Header comes before data rows.
	assert.Less(t, strings.Index(strings.ToLower(out), "period"), strings.Index(out, "2026-08-03"))
}
