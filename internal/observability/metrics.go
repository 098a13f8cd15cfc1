// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccaw/speakerauth/pkg/errutil"
)

// OutcomeOK labels a successful operation. Failures are labelled with their
// error code, or "error" when the error carries none.
const OutcomeOK = "ok"

// Metrics holds the CCAW application metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	AuthOperations *prometheus.CounterVec
	Notifications  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	SessionsSwept  prometheus.Counter
}

// NewMetrics creates the CCAW metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ccaw_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ccaw_notifications_total",
				Help: "Total number of credential emails by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ccaw_http_requests_total",
				Help: "Total number of auth API requests by route and status",
			},
			[]string{"route", "status"},
		),
		SessionsSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ccaw_sessions_swept_total",
				Help: "Total number of expired web sessions removed",
			},
		),
	}

	reg.MustRegister(m.AuthOperations, m.Notifications, m.HTTPRequests, m.SessionsSwept)
	return m
}

// Outcome returns the outcome label for err.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := errutil.Code(err); code != "" {
		return code
	}
	return "error"
}

// RecordAuth counts one auth operation.
func (m *Metrics) RecordAuth(operation string, err error) {
	if m == nil {
		return
	}
	m.AuthOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// RecordNotification counts one email send attempt.
func (m *Metrics) RecordNotification(kind string, err error) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind, Outcome(err)).Inc()
}

// RecordHTTP counts one API response.
func (m *Metrics) RecordHTTP(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}

// RecordSweep adds n removed sessions.
func (m *Metrics) RecordSweep(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsSwept.Add(float64(n))
}
