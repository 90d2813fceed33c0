package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts logins by result (success, rejected).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetrack",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// TimesheetSubmissions counts created and resubmitted timesheets.
	TimesheetSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetrack",
		Name:      "timesheet_submissions_total",
		Help:      "Timesheet submissions by kind (created, resubmitted).",
	}, []string{"kind"})

	// TimesheetTransitions counts status changes.
	TimesheetTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetrack",
		Name:      "timesheet_transitions_total",
		Help:      "Timesheet status transitions.",
	}, []string{"from", "to"})

	// Notifications counts published notifications by kind and result.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetrack",
		Name:      "notifications_total",
		Help:      "Notifications by kind and result.",
	}, []string{"kind", "result"})

	// RateLimited counts requests refused by the rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetrack",
		Name:      "rate_limited_total",
		Help:      "Requests refused by the rate limiter.",
	}, []string{"scope"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timetrack",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// GinMiddleware records request latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
