package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/workpulse/dashd/internal/domain"
)

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

func problemResponse(c *fiber.Ctx, status int, typ, title, detail string) error {
	return c.Status(status).JSON(ProblemDetail{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	})
}

// MetricsResponse carries computed periods plus provenance metadata so
// the dashboard can flag degraded data on the metrics views too.
type MetricsResponse struct {
	Periods  []domain.PeriodMetrics `json:"periods"`
	Summary  domain.Summary         `json:"summary"`
	Metadata domain.Metadata        `json:"metadata"`
}

// HealthDetailResponse is the detailed health body for /api/v1/health.
type HealthDetailResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Uptime string            `json:"uptime"`
}

// ConfigResponse exposes the read-only effective configuration.
type ConfigResponse struct {
	Environment      string `json:"environment"`
	LogLevel         string `json:"log_level"`
	ListenAddr       string `json:"listen_addr"`
	PeerBaseURL      string `json:"peer_base_url"`
	PeerTimeout      string `json:"peer_timeout"`
	ActivityCacheTTL string `json:"activity_cache_ttl"`
	MetricsCacheTTL  string `json:"metrics_cache_ttl"`
	RateLimitRPS     int    `json:"rate_limit_rps"`
	RateLimitBurst   int    `json:"rate_limit_burst"`
}
