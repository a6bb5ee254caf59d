// Package metrics provides Prometheus collectors for the payment flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricWebhookNotificationsTotal     = "webhook_notifications_total"
	MetricReconciliationsTotal          = "reconciliations_total"
	MetricReconciliationDurationSeconds = "reconciliation_duration_seconds"
	MetricProviderRequestsTotal         = "provider_requests_total"
	MetricCheckoutSessionsTotal         = "checkout_sessions_total"
)

const (
	OperationGetPayment       = "get_payment"
	OperationCreatePreference = "create_preference"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics is safe for concurrent use.
type Metrics struct {
	webhookNotifications   *prometheus.CounterVec
	reconciliations        *prometheus.CounterVec
	reconciliationDuration prometheus.Histogram
	providerRequests       *prometheus.CounterVec
	checkoutSessions       *prometheus.CounterVec
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		webhookNotifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricWebhookNotificationsTotal,
				Help: "Total number of provider webhook notifications by outcome",
			},
			[]string{"outcome"},
		),
		reconciliations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricReconciliationsTotal,
				Help: "Total number of order reconciliations by result",
			},
			[]string{"result"},
		),
		reconciliationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricReconciliationDurationSeconds,
				Help:    "Histogram of reconciliation transaction duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricProviderRequestsTotal,
				Help: "Total number of payment provider API calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		checkoutSessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCheckoutSessionsTotal,
				Help: "Total number of checkout sessions built by status",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.webhookNotifications,
		m.reconciliations,
		m.reconciliationDuration,
		m.providerRequests,
		m.checkoutSessions,
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) IncWebhookNotification(outcome string) {
	m.webhookNotifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncReconciliation(result string) {
	m.reconciliations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveReconciliationDuration(seconds float64) {
	m.reconciliationDuration.Observe(seconds)
}

func (m *Metrics) IncProviderRequest(operation, status string) {
	m.providerRequests.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) IncCheckoutSession(status string) {
	m.checkoutSessions.WithLabelValues(status).Inc()
}
