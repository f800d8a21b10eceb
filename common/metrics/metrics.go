// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	confirmationPostsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "pipeline",
		Name:      "confirmation_posts_total",
		Help:      "Confirmation posting attempts by phase and result.",
	}, []string{"phase", "result"})

	storeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "gateway",
		Name:      "store_requests_total",
		Help:      "Time entry store requests by operation and result.",
	}, []string{"operation", "result"})

	tokenRefreshTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeclock",
		Subsystem: "gateway",
		Name:      "token_refresh_total",
		Help:      "Number of anti-forgery token refreshes.",
	})

	activeTimersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "timeclock",
		Subsystem: "timers",
		Name:      "active_timers",
		Help:      "Number of timers currently running.",
	})
)

func init() {
	prometheus.MustRegister(
		confirmationPostsTotal, storeRequestsTotal, tokenRefreshTotal, activeTimersGauge)
}

const (
	PhasePrimary  = "primary"
	PhaseOverhead = "overhead"

	resultOk    = "ok"
	resultError = "error"
)

// RecordConfirmationPost counts one posting attempt for the given phase.
func RecordConfirmationPost(phase string, err error) {
	confirmationPostsTotal.WithLabelValues(phase, resultOf(err)).Inc()
}

// RecordStoreRequest counts one time entry store request.
func RecordStoreRequest(operation string, err error) {
	storeRequestsTotal.WithLabelValues(operation, resultOf(err)).Inc()
}

// RecordTokenRefresh counts one anti-forgery token refresh.
func RecordTokenRefresh() {
	tokenRefreshTotal.Inc()
}

// SetActiveTimers updates the running timer gauge.
func SetActiveTimers(n int) {
	activeTimersGauge.Set(float64(n))
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultOk
}
