// Package export renders computed period metrics as a table, CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/workpulse/dashd/internal/domain"
	apperrors "github.com/workpulse/dashd/internal/errors"
)

// Format selects the export rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user-supplied format. Empty input defaults
// to table.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want table, csv or json)", apperrors.ErrInvalidInput, s)
	}
}

// columns is the fixed export column order. Consumers parse exports
// positionally, so it never changes.
var columns = []string{
	"period",
	"total_time_hours",
	"productive_time_hours",
	"productivity_percentage",
	"activity_count",
	"top_activity_type",
	"top_app",
	"projects_worked",
	"focus_score",
}

// Report pairs the per-period metrics with the overall summary for
// the JSON rendering.
type Report struct {
	Periods []domain.PeriodMetrics `json:"periods"`
	Summary domain.Summary         `json:"summary"`
}

// Render writes the report to w in the requested format.
func Render(w io.Writer, periods []domain.PeriodMetrics, summary domain.Summary, format Format) error {
	switch format {
	case FormatCSV:
		return renderCSV(w, periods)
	case FormatJSON:
		return renderJSON(w, periods, summary)
	default:
		return renderTable(w, periods, summary)
	}
}

func row(p domain.PeriodMetrics) []string {
	return []string{
		p.Period,
		fmt.Sprintf("%.2f", float64(p.TotalTimeSeconds)/3600),
		fmt.Sprintf("%.2f", float64(p.ProductiveTimeSeconds)/3600),
		fmt.Sprintf("%d", p.ProductivityPct),
		fmt.Sprintf("%d", p.ActivityCount),
		p.TopActivityType,
		p.TopApp,
		fmt.Sprintf("%d", p.ProjectsWorked),
		fmt.Sprintf("%d", p.FocusScore),
	}
}

func renderTable(w io.Writer, periods []domain.PeriodMetrics, summary domain.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header(columns)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range periods {
		data = append(data, row(p))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w,
		"Total: %.2fh across %d periods (avg %.2fh, %d%% productive). Best period: %s (%d%%). %d activities.\n",
		summary.TotalHours, len(periods), summary.AvgDailyHours,
		summary.AvgProductivityPct, summary.BestPeriod, summary.BestPeriodPct,
		summary.TotalActivities)
	return err
}

func renderCSV(w io.Writer, periods []domain.PeriodMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, p := range periods {
		if err := cw.Write(row(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, periods []domain.PeriodMetrics, summary domain.Summary) error {
	if periods == nil {
		periods = []domain.PeriodMetrics{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Report{Periods: periods, Summary: summary})
}
