// Package domain holds the data model shared by the aggregation core.
package domain

// Provenance identifies which tier ultimately produced a response.
type Provenance string

const (
	ProvenanceCache      Provenance = "cache"
	ProvenancePeer       Provenance = "peer"
	ProvenanceLocalStore Provenance = "local-store"
	ProvenanceFallback   Provenance = "fallback"
)

// ActivityRecord is the canonical activity shape. It is produced by the
// normalizer and immutable afterwards. ActivityType and AppName are never
// empty; missing values are replaced with the "other"/"Unknown" sentinels.
type ActivityRecord struct {
	Timestamp       int64   `json:"timestamp"` // epoch millis
	ActivityType    string  `json:"activity_type"`
	AppName         string  `json:"app_name"`
	DurationSeconds int     `json:"duration_seconds"`
	ProjectName     *string `json:"project_name"`
}

// ProjectRecord passes through the aggregation layer opaquely; the core
// never inspects it beyond identity.
type ProjectRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color,omitempty"`
	LastActiveAt int64  `json:"last_active_at,omitempty"`
}

// DailyStats summarizes one day. The zero value is the canonical "no data"
// representation and is exactly what total source exhaustion returns.
type DailyStats struct {
	TotalTimeSeconds   int    `json:"total_time_seconds"`
	ActivityCount      int    `json:"activity_count"`
	ActiveProjectCount int    `json:"active_project_count"`
	AvgSessionSeconds  int    `json:"avg_session_seconds"`
	TopApp             string `json:"top_app"`
	ProductivityScore  int    `json:"productivity_score"`
}

// PeriodMetrics is one time bucket of computed productivity metrics.
type PeriodMetrics struct {
	Period                string `json:"period"`
	TotalTimeSeconds      int    `json:"total_time_seconds"`
	ProductiveTimeSeconds int    `json:"productive_time_seconds"`
	ProductivityPct       int    `json:"productivity_percentage"`
	ActivityCount         int    `json:"activity_count"`
	TopActivityType       string `json:"top_activity_type"`
	TopApp                string `json:"top_app"`
	ProjectsWorked        int    `json:"projects_worked"`
	FocusScore            int    `json:"focus_score"`
}

// Summary aggregates across all computed periods.
type Summary struct {
	TotalHours        float64 `json:"total_hours"`
	AvgDailyHours     float64 `json:"avg_daily_hours"`
	AvgProductivityPct int    `json:"avg_productivity_percentage"`
	BestPeriod        string  `json:"best_period"`
	BestPeriodPct     int     `json:"best_period_percentage"`
	TotalActivities   int     `json:"total_activities"`
}

// Failure records one absorbed sub-query failure.
type Failure struct {
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// Metadata is the degradation contract the UI keys off: source tells it
// which tier answered, hasFailures whether to show a degraded-data banner.
type Metadata struct {
	Source         Provenance `json:"source"`
	ResponseTimeMs int64      `json:"responseTimeMs"`
	HasFailures    bool       `json:"hasFailures"`
	Failures       []Failure  `json:"failures"`
}

// Snapshot is the aggregated best-effort answer for one day.
type Snapshot struct {
	Activities []ActivityRecord `json:"activities"`
	Projects   []ProjectRecord  `json:"projects"`
	Stats      DailyStats       `json:"stats"`
	Metadata   Metadata         `json:"metadata"`
}

// EmptySnapshot returns the documented fallback payload: empty collections,
// all-zero stats. Total unavailability is a normal operating mode, so this
// is a well-formed response, not an error.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Activities: []ActivityRecord{},
		Projects:   []ProjectRecord{},
		Stats:      DailyStats{},
		Metadata: Metadata{
			Source:   ProvenanceFallback,
			Failures: []Failure{},
		},
	}
}
