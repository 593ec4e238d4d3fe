package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookingCreated()
	m.BookingCreated()
	m.BookingRejected("SLOT_UNAVAILABLE")
	m.BookingCancelled(50)
	m.Rescheduled("ok")
	m.ObserveLockWait(3*time.Millisecond, true)
	m.SlotQuery()
	m.EventDropped("buffer_full")
	m.KafkaMessage("produce", "booking-events", errors.New("down"), time.Millisecond)
	m.StaffSynced("staff.upserted")
	m.HTTPRequest("POST", "/api/v1/bookings", 201, 5*time.Millisecond)
	m.RateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingRejections.WithLabelValues("SLOT_UNAVAILABLE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancellations.WithLabelValues("50")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kafkaMessages.WithLabelValues("produce", "booking-events", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/v1/bookings", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.BookingRejected("x")
		m.BookingCancelled(100)
		m.Rescheduled("ok")
		m.ObserveLockWait(time.Second, false)
		m.SlotQuery()
		m.EventDropped("x")
		m.KafkaMessage("consume", "t", nil, 0)
		m.StaffSynced("x")
		m.HTTPRequest("GET", "/", 200, 0)
		m.RateLimited()
	})
}
