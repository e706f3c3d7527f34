package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the appointment engine.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	prescriptionsTotal *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediplus",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediplus",
			Subsystem: "appointments",
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by outcome",
		}, []string{"outcome"}),
		prescriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediplus",
			Subsystem: "prescriptions",
			Name:      "filed_total",
			Help:      "Prescription filings by outcome",
		}, []string{"outcome"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediplus",
			Subsystem: "appointments",
			Name:      "booking_latency_seconds",
			Help:      "Latency of the transactional booking path",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.prescriptionsTotal, m.bookingLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveCancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObservePrescription(outcome string) {
	if m == nil {
		return
	}
	m.prescriptionsTotal.WithLabelValues(outcome).Inc()
}

// MatchingMetrics tracks the symptom-to-doctor matching pipeline.
type MatchingMetrics struct {
	requestsTotal *prometheus.CounterVec
	matchLatency  prometheus.Histogram
}

func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	m := &MatchingMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediplus",
			Subsystem: "matching",
			Name:      "requests_total",
			Help:      "Doctor match requests by result source",
		}, []string{"source"}),
		matchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediplus",
			Subsystem: "matching",
			Name:      "latency_seconds",
			Help:      "Latency of embedding retrieval plus model pick",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.matchLatency)
	return m
}

// ObserveMatch records a completed match; source is "cache", "engine" or
// "error".
func (m *MatchingMetrics) ObserveMatch(source string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(source).Inc()
	if source != "cache" {
		m.matchLatency.Observe(seconds)
	}
}
