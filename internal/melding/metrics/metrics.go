package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TransitionsTotal        *prometheus.CounterVec
	TransitionsRejected     prometheus.Counter
	ClassificationFailures  prometheus.Counter
	TokensInvalidated       prometheus.Counter
	MailDispatchesTotal     prometheus.Counter
	MailDispatchFailures    prometheus.Counter
	MeldingenCreated        prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meldingen_lifecycle_transitions_total",
			Help: "Total number of applied lifecycle transitions",
		}, []string{"transition"}),
		TransitionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldingen_lifecycle_transitions_rejected_total",
			Help: "Total number of transitions rejected by the state machine",
		}),
		ClassificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldingen_classification_failures_total",
			Help: "Total number of recoverable classification failures",
		}),
		TokensInvalidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldingen_tokens_invalidated_total",
			Help: "Total number of melder tokens revoked on submission",
		}),
		MailDispatchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldingen_mail_dispatches_total",
			Help: "Total number of notification mails handed to the mailer",
		}),
		MailDispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldingen_mail_dispatch_failures_total",
			Help: "Total number of notification mails the mailer failed to accept",
		}),
		MeldingenCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meldingen_created_total",
			Help: "Total number of meldingen created",
		}),
	}
}

func (m *Metrics) ObserveTransition(transition string) {
	m.TransitionsTotal.WithLabelValues(transition).Inc()
}

func (m *Metrics) IncrementTransitionRejected() {
	m.TransitionsRejected.Inc()
}

func (m *Metrics) IncrementClassificationFailures() {
	m.ClassificationFailures.Inc()
}

func (m *Metrics) IncrementTokensInvalidated() {
	m.TokensInvalidated.Inc()
}

func (m *Metrics) IncrementMailDispatches() {
	m.MailDispatchesTotal.Inc()
}

func (m *Metrics) IncrementMailDispatchFailures() {
	m.MailDispatchFailures.Inc()
}

func (m *Metrics) IncrementMeldingenCreated() {
	m.MeldingenCreated.Inc()
}
