// Command dashql queries a running dashd daemon and renders period
// metrics as a table, CSV or JSON.
//
// Usage:
//
//	dashql -group-by weekly -start 2026-08-01 -end 2026-08-26 -format csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/workpulse/dashd/internal/domain"
	"github.com/workpulse/dashd/internal/export"
	"github.com/workpulse/dashd/internal/insight"
)

// metricsResponse mirrors the daemon's /api/v1/metrics body.
type metricsResponse struct {
	Periods  []domain.PeriodMetrics `json:"periods"`
	Summary  domain.Summary         `json:"summary"`
	Metadata domain.Metadata        `json:"metadata"`
}

func main() {
	addr := flag.String("addr", "http://localhost:5174", "dashd base URL")
	groupBy := flag.String("group-by", "daily", "bucket granularity: daily, weekly or monthly")
	start := flag.String("start", "", "range start (YYYY-MM-DD, default 30 days back)")
	end := flag.String("end", "", "range end (YYYY-MM-DD, default today)")
	format := flag.String("format", "table", "output format: table, csv or json")
	flag.Parse()

	if _, err := insight.ParseGroupBy(*groupBy); err != nil {
		fatal(err)
	}
	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		fatal(err)
	}

	report, err := fetch(*addr, *groupBy, *start, *end)
	if err != nil {
		fatal(err)
	}

	if report.Metadata.HasFailures {
		fmt.Fprintf(os.Stderr, "warning: data is degraded (source: %s)\n", report.Metadata.Source)
	}

	if err := export.Render(os.Stdout, report.Periods, report.Summary, outFormat); err != nil {
		fatal(err)
	}
}

func fetch(addr, groupBy, start, end string) (*metricsResponse, error) {
	q := url.Values{}
	q.Set("group_by", groupBy)
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(addr + "/api/v1/metrics?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("querying dashd at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashd returned %d: %s", resp.StatusCode, body)
	}

	var report metricsResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decoding metrics response: %w", err)
	}
	return &report, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "dashql:", err)
	os.Exit(1)
}
