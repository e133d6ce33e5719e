package api

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/workpulse/dashd/internal/config"
	"github.com/workpulse/dashd/internal/domain"
	apperrors "github.com/workpulse/dashd/internal/errors"
	"github.com/workpulse/dashd/internal/export"
	"github.com/workpulse/dashd/internal/health"
	"github.com/workpulse/dashd/internal/insight"
)

const dateLayout = "2006-01-02"

// defaultRangeDays is the metrics window used when no start is given.
const defaultRangeDays = 30

// Source is the tiered chain the handlers query.
type Source interface {
	Snapshot(ctx context.Context, date string, dayStart, dayEnd time.Time) domain.Snapshot
	History(ctx context.Context, start, end time.Time) ([]domain.ActivityRecord, domain.Metadata)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	source    Source
	computer  *insight.Computer
	checker   *health.Checker
	cfg       *config.Config
	logger    zerolog.Logger
	startTime time.Time
	loc       *time.Location
}

// NewHandlers creates a Handlers instance. loc pins which wall-clock
// day "today" and period keys resolve to.
func NewHandlers(src Source, computer *insight.Computer, checker *health.Checker, cfg *config.Config, loc *time.Location, logger zerolog.Logger) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{
		source:    src,
		computer:  computer,
		checker:   checker,
		cfg:       cfg,
		logger:    logger.With().Str("component", "handlers").Logger(),
		startTime: time.Now(),
		loc:       loc,
	}
}

// Activity handles GET /api/v1/activity. The response is always 200:
// source exhaustion shows up as fallback provenance, not an error.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		date = time.Now().In(h.loc).Format(dateLayout)
	}

	dayStart, err := time.ParseInLocation(dateLayout, date, h.loc)
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_date", "Bad Request",
			"Invalid date "+date+": want YYYY-MM-DD")
	}
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	begin := time.Now()
	snap := h.source.Snapshot(c.Context(), date, dayStart, dayEnd)
	snap.Metadata.ResponseTimeMs = time.Since(begin).Milliseconds()

	return c.JSON(snap)
}

// Metrics handles GET /api/v1/metrics.
func (h *Handlers) Metrics(c *fiber.Ctx) error {
	groupBy, start, end, err := h.parseMetricsQuery(c)
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_query", "Bad Request", apperrors.UserMessage(err))
	}

	begin := time.Now()
	records, meta := h.source.History(c.Context(), start, end)
	periods := h.computer.ComputePeriods(records, groupBy, start, end)
	meta.ResponseTimeMs = time.Since(begin).Milliseconds()

	return c.JSON(MetricsResponse{
		Periods:  periods,
		Summary:  insight.Summarize(periods),
		Metadata: meta,
	})
}

// Export handles GET /api/v1/export.
func (h *Handlers) Export(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_format", "Bad Request", apperrors.UserMessage(err))
	}

	groupBy, start, end, err := h.parseMetricsQuery(c)
	if err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_query", "Bad Request", apperrors.UserMessage(err))
	}

	records, _ := h.source.History(c.Context(), start, end)
	periods := h.computer.ComputePeriods(records, groupBy, start, end)
	summary := insight.Summarize(periods)

	var buf bytes.Buffer
	if err := export.Render(&buf, periods, summary, format); err != nil {
		h.logger.Error().Err(err).Str("format", string(format)).Msg("export render failed")
		return problemResponse(c, fiber.StatusInternalServerError,
			"export_failed", "Internal Server Error", "Export rendering failed")
	}

	switch format {
	case export.FormatCSV:
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	case export.FormatJSON:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return c.Send(buf.Bytes())
}

// parseMetricsQuery resolves group_by, start and end. The range
// defaults to the last 30 days ending today; end is extended to the
// last millisecond of its day so a whole-day range is inclusive.
func (h *Handlers) parseMetricsQuery(c *fiber.Ctx) (insight.GroupBy, time.Time, time.Time, error) {
	groupBy, err := insight.ParseGroupBy(c.Query("group_by"))
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}

	today := time.Now().In(h.loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, h.loc)
	if raw := c.Query("end"); raw != "" {
		end, err = time.ParseInLocation(dateLayout, raw, h.loc)
		if err != nil {
			return "", time.Time{}, time.Time{}, apperrors.ErrInvalidInput
		}
	}

	start := end.AddDate(0, 0, -(defaultRangeDays - 1))
	if raw := c.Query("start"); raw != "" {
		start, err = time.ParseInLocation(dateLayout, raw, h.loc)
		if err != nil {
			return "", time.Time{}, time.Time{}, apperrors.ErrInvalidInput
		}
	}

	if start.After(end) {
		return "", time.Time{}, time.Time{}, apperrors.ErrInvalidInput
	}
	return groupBy, start, end.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

// HealthDetail handles GET /api/v1/health.
func (h *Handlers) HealthDetail(c *fiber.Ctx) error {
	results := h.checker.RunAll(c.Context())

	checks := make(map[string]string, len(results))
	overall := "ok"
	for name, status := range results {
		checks[name] = string(status)
		if status != health.StatusOK {
			overall = "degraded"
		}
	}

	return c.JSON(HealthDetailResponse{
		Status: overall,
		Checks: checks,
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	})
}

// GetConfig handles GET /api/v1/config.
func (h *Handlers) GetConfig(c *fiber.Ctx) error {
	cfg := h.cfg
	return c.JSON(ConfigResponse{
		Environment:      cfg.Environment,
		LogLevel:         cfg.LogLevel,
		ListenAddr:       cfg.ListenAddr,
		PeerBaseURL:      cfg.PeerBaseURL,
		PeerTimeout:      cfg.PeerTimeout.String(),
		ActivityCacheTTL: cfg.ActivityCacheTTL.String(),
		MetricsCacheTTL:  cfg.MetricsCacheTTL.String(),
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
	})
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
