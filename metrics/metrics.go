// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LockRetries counts write attempts that hit a held lock and were retried.
	LockRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_storage_lock_retries_total",
		Help: "Write attempts retried because the store reported a held lock",
	})

	// LockExhausted counts writes that gave up after the last attempt.
	LockExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_storage_lock_exhausted_total",
		Help: "Writes that failed after every attempt found the store locked",
	})

	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_registrations_total",
		Help: "Users registered",
	})

	ForecastsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forecast_submissions_total",
		Help: "Forecasts stored",
	})

	// Logins is labelled by outcome: success or failure.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forecast_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})
)
