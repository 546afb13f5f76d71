// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	rateLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesd_rate_lookups_total",
		Help: "Rate lookups by source layer",
	}, []string{"source"}) // source=cache|upstream|stale_cache|snapshot

	rateFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratesd_rate_fetch_errors_total",
		Help: "Total number of upstream rate fetch failures",
	})

	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesd_conversions_total",
		Help: "Completed conversions by currency pair",
	}, []string{"source_currency", "target_currency"})

	conversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ratesd_conversion_duration_seconds",
		Help:    "Duration of conversion operations in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.0, 12), // 1ms .. ~4s
	})

	snapshotSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratesd_snapshot_saves_total",
		Help: "Snapshot store writes by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	historyQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratesd_history_queries_total",
		Help: "Total number of transaction history queries",
	})
)

// RecordRateLookup counts a rate lookup served by the given source layer.
func RecordRateLookup(source string) {
	rateLookupsTotal.WithLabelValues(source).Inc()
}

// RecordRateFetchError counts an upstream fetch failure.
func RecordRateFetchError() {
	rateFetchErrorsTotal.Inc()
}

// RecordConversion counts a completed conversion for a currency pair.
func RecordConversion(from, to string, duration time.Duration) {
	conversionsTotal.WithLabelValues(from, to).Inc()
	conversionDuration.Observe(duration.Seconds())
}

// RecordSnapshotSave counts a snapshot store write.
func RecordSnapshotSave(err error) {
	if err != nil {
		snapshotSavesTotal.WithLabelValues("failure").Inc()
		return
	}
	snapshotSavesTotal.WithLabelValues("success").Inc()
}

// RecordHistoryQuery counts a transaction history query.
func RecordHistoryQuery() {
	historyQueriesTotal.Inc()
}
