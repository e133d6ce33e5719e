package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/workpulse/dashd/internal/domain"
	"github.com/workpulse/dashd/internal/normalize"
)

// GetActivities returns activities with timestamps inside [start, end],
// oldest first. limit <= 0 means no limit.
func (s *Store) GetActivities(ctx context.Context, start, end time.Time, limit int) ([]domain.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT timestamp, activity_type, app_name, duration_seconds, project_name
	FROM activities
	WHERE timestamp BETWEEN ? AND ?
	ORDER BY timestamp ASC
	`
	args := []any{start.UnixMilli(), end.UnixMilli()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	records := []domain.ActivityRecord{}
	for rows.Next() {
		var (
			rec          domain.ActivityRecord
			activityType sql.NullString
			appName      sql.NullString
			projectName  sql.NullString
			duration     sql.NullInt64
		)

		if err := rows.Scan(&rec.Timestamp, &activityType, &appName, &duration, &projectName); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		// Same defaulting rules as the normalizer: rows written by older
		// collector versions may carry NULLs.
		rec.ActivityType = normalize.DefaultActivityType
		if activityType.Valid && activityType.String != "" {
			rec.ActivityType = activityType.String
		}
		rec.AppName = normalize.DefaultAppName
		if appName.Valid && appName.String != "" {
			rec.AppName = appName.String
		}
		if duration.Valid && duration.Int64 > 0 {
			rec.DurationSeconds = int(duration.Int64)
		}
		if projectName.Valid && projectName.String != "" {
			p := projectName.String
			rec.ProjectName = &p
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return records, nil
}

// GetProjects returns all known projects, most recently active first.
func (s *Store) GetProjects(ctx context.Context) ([]domain.ProjectRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, name, color, last_active_at
	FROM projects
	ORDER BY last_active_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.ProjectRecord{}
	for rows.Next() {
		var (
			p            domain.ProjectRecord
			color        sql.NullString
			lastActiveAt sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &color, &lastActiveAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if color.Valid {
			p.Color = color.String
		}
		if lastActiveAt.Valid {
			p.LastActiveAt = lastActiveAt.Int64
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// GetDailyStats returns the stats row for a date (YYYY-MM-DD). A missing
// row is not an error: the zero-value DailyStats is the canonical "no
// data" representation.
func (s *Store) GetDailyStats(ctx context.Context, date string) (domain.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		stats  domain.DailyStats
		topApp sql.NullString
	)

	query := `
	SELECT total_time_seconds, activity_count, active_project_count,
	       avg_session_seconds, top_app, productivity_score
	FROM daily_stats WHERE date = ?
	`

	err := s.db.QueryRowContext(ctx, query, date).Scan(
		&stats.TotalTimeSeconds, &stats.ActivityCount, &stats.ActiveProjectCount,
		&stats.AvgSessionSeconds, &topApp, &stats.ProductivityScore,
	)

	if err == sql.ErrNoRows {
		return domain.DailyStats{}, nil
	}
	if err != nil {
		return domain.DailyStats{}, fmt.Errorf("failed to get daily stats: %w", err)
	}

	if topApp.Valid {
		stats.TopApp = topApp.String
	}

	return stats, nil
}

// InsertActivity appends one activity row. Used by the seed tooling and
// tests; the collector process normally writes this table.
func (s *Store) InsertActivity(ctx context.Context, rec domain.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO activities (timestamp, activity_type, app_name, duration_seconds, project_name)
	VALUES (?, ?, ?, ?, ?)
	`

	var project sql.NullString
	if rec.ProjectName != nil {
		project = sql.NullString{String: *rec.ProjectName, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.Timestamp, rec.ActivityType, rec.AppName, rec.DurationSeconds, project,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// UpsertProject creates or replaces a project row.
func (s *Store) UpsertProject(ctx context.Context, p domain.ProjectRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT OR REPLACE INTO projects (id, name, color, last_active_at)
	VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name,
		sql.NullString{String: p.Color, Valid: p.Color != ""},
		p.LastActiveAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}
	return nil
}

// UpsertDailyStats creates or replaces the stats row for a date.
func (s *Store) UpsertDailyStats(ctx context.Context, date string, stats domain.DailyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT OR REPLACE INTO daily_stats (
		date, total_time_seconds, activity_count, active_project_count,
		avg_session_seconds, top_app, productivity_score
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		date, stats.TotalTimeSeconds, stats.ActivityCount, stats.ActiveProjectCount,
		stats.AvgSessionSeconds,
		sql.NullString{String: stats.TopApp, Valid: stats.TopApp != ""},
		stats.ProductivityScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return nil
}
