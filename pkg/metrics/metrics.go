package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "staffbook"

var (
	once sync.Once

	appointmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_created_total",
			Help:      "Count of appointments created by origin.",
		},
		[]string{"origin"},
	)

	appointmentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_transitions_total",
			Help:      "Count of appointment status transitions by target status.",
		},
		[]string{"status"},
	)

	conflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Count of rejected intervals by conflict kind and reason.",
		},
		[]string{"kind", "reason"},
	)

	occurrences = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurring_occurrences_total",
			Help:      "Count of recurring occurrences by outcome (created or a skip reason).",
		},
		[]string{"outcome"},
	)

	waitlist = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_transitions_total",
			Help:      "Count of waitlist entries moved to a status.",
		},
		[]string{"status"},
	)

	kafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Count of Kafka messages by direction, topic and result.",
		},
		[]string{"direction", "topic", "result"},
	)

	kafkaDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_duration_seconds",
			Help:      "Time spent publishing or handling a Kafka message.",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"direction", "topic"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			appointmentsCreated,
			appointmentTransitions,
			conflicts,
			occurrences,
			waitlist,
			kafkaMessages,
			kafkaDuration,
			httpRequests,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncAppointmentCreated(origin string) {
	appointmentsCreated.WithLabelValues(origin).Inc()
}

func IncAppointmentTransition(status string) {
	appointmentTransitions.WithLabelValues(status).Inc()
}

func IncConflict(kind, reason string) {
	conflicts.WithLabelValues(kind, reason).Inc()
}

func IncOccurrence(outcome string) {
	occurrences.WithLabelValues(outcome).Inc()
}

func IncWaitlist(status string) {
	waitlist.WithLabelValues(status).Inc()
}

func ObserveKafka(direction, topic string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	kafkaMessages.WithLabelValues(direction, topic, result).Inc()
	kafkaDuration.WithLabelValues(direction, topic).Observe(d.Seconds())
}

func ObserveHTTP(method string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
}
