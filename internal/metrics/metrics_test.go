package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	orders := testutil.ToFloat64(ordersCreated)
	tickets := testutil.ToFloat64(ticketsIssued)
	OrderCreated(3)
	assert.Equal(t, orders+1, testutil.ToFloat64(ordersCreated))
	assert.Equal(t, tickets+3, testutil.ToFloat64(ticketsIssued))

	before := testutil.ToFloat64(ordersCancelled.WithLabelValues("MATCH_CANCELLED"))
	OrderCancelled("MATCH_CANCELLED")
	assert.Equal(t, before+1, testutil.ToFloat64(ordersCancelled.WithLabelValues("MATCH_CANCELLED")))

	conflicts := testutil.ToFloat64(scheduleConflicts.WithLabelValues("stadium"))
	ScheduleConflict("stadium")
	assert.Equal(t, conflicts+1, testutil.ToFloat64(scheduleConflicts.WithLabelValues("stadium")))

	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	CacheLookup("hit")
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))

	throttledOrders := testutil.ToFloat64(throttled.WithLabelValues("orders"))
	Throttled("orders")
	assert.Equal(t, throttledOrders+1, testutil.ToFloat64(throttled.WithLabelValues("orders")))

	retries := testutil.ToFloat64(txRetries)
	TxRetry()
	assert.Equal(t, retries+1, testutil.ToFloat64(txRetries))
}
