package httpapi

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// metricsWindow is the number of recent requests the rolling average
// latency covers.
const metricsWindow = 100

// Metrics aggregates request latency and outcome counters.
type Metrics struct {
	mu           sync.Mutex
	durations    []float64
	successCount int64
	errorCount   int64
}

// MetricsSnapshot is the JSON shape served by GET /metrics.
type MetricsSnapshot struct {
	AverageResponseTime float64 `json:"average_response_time"`
	SuccessRate         float64 `json:"success_rate"`
	TotalRequests       int64   `json:"total_requests"`
	ErrorCount          int64   `json:"error_count"`
}

// NewMetrics creates an empty metrics recorder.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record adds one request's duration and outcome, keeping only the most
// recent metricsWindow durations.
func (m *Metrics) Record(duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.durations = append(m.durations, duration.Seconds())
	if len(m.durations) > metricsWindow {
		m.durations = m.durations[len(m.durations)-metricsWindow:]
	}
	if success {
		m.successCount++
	} else {
		m.errorCount++
	}
}

// Snapshot returns the current aggregates.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.successCount + m.errorCount
	snap := MetricsSnapshot{
		SuccessRate:   1.0,
		TotalRequests: total,
		ErrorCount:    m.errorCount,
	}
	if len(m.durations) > 0 {
		var sum float64
		for _, d := range m.durations {
			sum += d
		}
		snap.AverageResponseTime = round2(sum / float64(len(m.durations)))
	}
	if total > 0 {
		snap.SuccessRate = round2(float64(m.successCount) / float64(total))
	}
	return snap
}

// Middleware times every request, records it and exposes the elapsed
// seconds in an X-Process-Time response header. The header is set from a
// Before hook because headers are frozen once the response commits.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				c.Response().Header().Set("X-Process-Time",
					strconv.FormatFloat(time.Since(start).Seconds(), 'f', -1, 64))
			})

			err := next(c)
			elapsed := time.Since(start)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = 500
				}
			}

			m.Record(elapsed, status < 400)
			return err
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
