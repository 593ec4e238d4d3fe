// Package metrics exposes Prometheus collectors for the booking engine. A nil *Metrics is valid
// and records nothing, which keeps tests free of registry setup.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salonbook"

type Metrics struct {
	bookingsCreated   prometheus.Counter
	bookingRejections *prometheus.CounterVec
	cancellations     *prometheus.CounterVec
	reschedules       *prometheus.CounterVec
	lockWait          *prometheus.HistogramVec
	slotQueries       prometheus.Counter
	eventsDropped     *prometheus.CounterVec
	kafkaMessages     *prometheus.CounterVec
	kafkaLatency      *prometheus.HistogramVec
	staffSync         *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	rateLimited       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "bookings_created_total",
			Help:      "Bookings confirmed by the ledger.",
		}),
		bookingRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "booking_rejections_total",
			Help:      "Create and reschedule attempts rejected by the ledger, by error code.",
		}, []string{"code"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "cancellations_total",
			Help:      "Cancelled bookings by refund percent.",
		}, []string{"refund_percent"}),
		reschedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "reschedules_total",
			Help:      "Reschedule attempts by outcome.",
		}, []string{"status"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "locking",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for per staff and date locks.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"status"}),
		slotQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slots",
			Name:      "queries_total",
			Help:      "Slot enumeration requests served.",
		}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Booking events dropped because the dispatcher buffer was full or publishing failed.",
		}, []string{"reason"}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Kafka messages produced or consumed, by topic and status.",
		}, []string{"direction", "topic", "status"}),
		kafkaLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "latency_seconds",
			Help:      "Kafka publish and handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction", "topic"}),
		staffSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staff",
			Name:      "sync_events_total",
			Help:      "Staff read model updates by event type.",
		}, []string{"event_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per client rate limiter.",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.bookingsCreated,
		m.bookingRejections,
		m.cancellations,
		m.reschedules,
		m.lockWait,
		m.slotQueries,
		m.eventsDropped,
		m.kafkaMessages,
		m.kafkaLatency,
		m.staffSync,
		m.httpRequests,
		m.httpLatency,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *Metrics) BookingRejected(code string) {
	if m == nil {
		return
	}
	m.bookingRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) BookingCancelled(refundPercent int) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(strconv.Itoa(refundPercent)).Inc()
}

func (m *Metrics) Rescheduled(status string) {
	if m == nil {
		return
	}
	m.reschedules.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration, acquired bool) {
	if m == nil {
		return
	}
	status := "acquired"
	if !acquired {
		status = "timeout"
	}
	m.lockWait.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) SlotQuery() {
	if m == nil {
		return
	}
	m.slotQueries.Inc()
}

func (m *Metrics) EventDropped(reason string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) KafkaMessage(direction, topic string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.kafkaMessages.WithLabelValues(direction, topic, status).Inc()
	m.kafkaLatency.WithLabelValues(direction, topic).Observe(d.Seconds())
}

func (m *Metrics) StaffSynced(eventType string) {
	if m == nil {
		return
	}
	m.staffSync.WithLabelValues(eventType).Inc()
}

// HTTPRequest records one served request. route is the matched pattern, not the raw path.
func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
