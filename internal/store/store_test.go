package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/dashd/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strptr(s string) *string { return &s }

func TestNew_MigratesSchema(t *testing.T) {
	s := newTestStore(t)

	var version string
	err := s.DB().QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, "2", version)
}

func TestAvailable(t *testing.T) {
	s := newTestStore(t)
	assert.True(t, s.Available(context.Background()))

	require.NoError(t, s.Close())
	assert.False(t, s.Available(context.Background()))
}

func TestActivities_RoundTripAndRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	for i, rec := range []domain.ActivityRecord{
		{Timestamp: base.UnixMilli(), ActivityType: "code", AppName: "Zed", DurationSeconds: 300, ProjectName: strptr("dashd")},
		{Timestamp: base.Add(time.Hour).UnixMilli(), ActivityType: "build", AppName: "Terminal", DurationSeconds: 120},
		{Timestamp: base.Add(48 * time.Hour).UnixMilli(), ActivityType: "browse", AppName: "Firefox", DurationSeconds: 60},
	} {
		require.NoError(t, s.InsertActivity(ctx, rec), "record %d", i)
	}

	// Only the first day falls in range.
	got, err := s.GetActivities(ctx, base.Add(-time.Hour), base.Add(2*time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "code", got[0].ActivityType)
	require.NotNil(t, got[0].ProjectName)
	assert.Equal(t, "dashd", *got[0].ProjectName)
	assert.Nil(t, got[1].ProjectName)

	// Limit applies after range filtering.
	got, err = s.GetActivities(ctx, base.Add(-time.Hour), base.Add(72*time.Hour), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestActivities_NullColumnsGetDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC).UnixMilli()
	_, err := s.DB().Exec(
		`INSERT INTO activities (timestamp, activity_type, app_name, duration_seconds, project_name)
		 VALUES (?, NULL, NULL, NULL, NULL)`, ts)
	require.NoError(t, err)

	got, err := s.GetActivities(ctx, time.UnixMilli(ts-1000), time.UnixMilli(ts+1000), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "other", got[0].ActivityType)
	assert.Equal(t, "Unknown", got[0].AppName)
	assert.Equal(t, 0, got[0].DurationSeconds)
	assert.Nil(t, got[0].ProjectName)
}

func TestProjects_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProject(ctx, domain.ProjectRecord{ID: "p1", Name: "dashd", Color: "#336699", LastActiveAt: 200}))
	require.NoError(t, s.UpsertProject(ctx, domain.ProjectRecord{ID: "p2", Name: "notes", LastActiveAt: 100}))

	got, err := s.GetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID, "most recently active first")
	assert.Equal(t, "#336699", got[0].Color)
	assert.Empty(t, got[1].Color)
}

func TestDailyStats_MissingRowIsZeroValue(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.GetDailyStats(context.Background(), "2026-08-24")
	require.NoError(t, err, "no data is not an error")
	assert.Equal(t, domain.DailyStats{}, stats)
}

func TestDailyStats_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := domain.DailyStats{
		TotalTimeSeconds:   3600,
		ActivityCount:      12,
		ActiveProjectCount: 2,
		AvgSessionSeconds:  300,
		TopApp:             "Zed",
		ProductivityScore:  80,
	}
	require.NoError(t, s.UpsertDailyStats(ctx, "2026-08-24", want))

	got, err := s.GetDailyStats(ctx, "2026-08-24")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
