package actor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for an actor's delivery loop.
type Metrics struct {
	// Messages applied, by the state that handled them.
	Messages *prometheus.CounterVec

	// Sends that returned a machine error.
	SendErrors prometheus.Counter

	// Requests waiting in the queue.
	QueueDepth prometheus.Gauge
}

// NewMetrics creates actor metrics registered on reg.
// A nil reg creates working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsmcheck_actor_messages_total",
			Help: "Total messages applied by the actor, by handling state",
		}, []string{"state"}),

		SendErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fsmcheck_actor_send_errors_total",
			Help: "Total messages whose handler returned an invalid next state",
		}),

		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fsmcheck_actor_queue_depth",
			Help: "Requests waiting for the actor's delivery loop",
		}),
	}
}

// IncrementMessages records one applied message handled in state.
func (m *Metrics) IncrementMessages(state string) {
	if m != nil {
		m.Messages.WithLabelValues(state).Inc()
	}
}

// IncrementSendErrors records one failed send.
func (m *Metrics) IncrementSendErrors() {
	if m != nil {
		m.SendErrors.Inc()
	}
}

// SetQueueDepth records the number of queued requests.
func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
