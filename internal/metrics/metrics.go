// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_orders_created_total",
			Help: "Orders placed successfully",
		},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_tickets_issued_total",
			Help: "Seats allocated to successful orders",
		},
	)

	ordersCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_orders_cancelled_total",
			Help: "Orders cancelled, by resulting status",
		},
		[]string{"status"},
	)

	fixturesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_fixtures_saved_total",
			Help: "Fixtures created or updated",
		},
		[]string{"action"},
	)

	fixturesCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_fixtures_cancelled_total",
			Help: "Fixtures cancelled",
		},
	)

	scheduleConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_schedule_conflicts_total",
			Help: "Fixture saves or checks rejected by the conflict detector, by kind",
		},
		[]string{"kind"},
	)

	txRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_tx_retries_total",
			Help: "Transactions re-run after a serialization failure or deadlock",
		},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_listing_cache_lookups_total",
			Help: "Fixture listing cache lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	throttled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_requests_throttled_total",
			Help: "Requests rejected by a rate limit, by limiter scope",
		},
		[]string{"scope"},
	)
)

func OrderCreated(tickets int) {
	ordersCreated.Inc()
	ticketsIssued.Add(float64(tickets))
}

func OrderCancelled(status string) { ordersCancelled.WithLabelValues(status).Inc() }

func FixtureSaved(action string) { fixturesSaved.WithLabelValues(action).Inc() }

func FixtureCancelled() { fixturesCancelled.Inc() }

func ScheduleConflict(kind string) { scheduleConflicts.WithLabelValues(kind).Inc() }

func TxRetry() { txRetries.Inc() }

func CacheLookup(result string) { cacheLookups.WithLabelValues(result).Inc() }

func Throttled(scope string) { throttled.WithLabelValues(scope).Inc() }
