package interaction

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics – Prometheus-метрики диспетчера взаимодействий.
//
// Метрики:
// * interaction_sessions_started_total{behavior} - counter
// * interaction_sessions_finished_total{behavior,state} - counter
// * interaction_outcomes_total{behavior,result} - counter (success/miss)
// * interaction_session_seconds{behavior} - histogram по Elapsed
// * interaction_sessions_active - gauge
type Metrics struct {
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	elapsed  *prometheus.HistogramVec
	active   prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil – дефолтный регистр)
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interaction_sessions_started_total",
			Help:      "Число начатых сессий взаимодействия.",
		}, []string{"behavior"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interaction_sessions_finished_total",
			Help:      "Число завершённых сессий по итоговому состоянию.",
		}, []string{"behavior", "state"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interaction_outcomes_total",
			Help:      "Исходы завершённых сессий.",
		}, []string{"behavior", "result"}),
		elapsed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interaction_session_seconds",
			Help:      "Заявленная длительность сессий при остановке.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 10},
		}, []string{"behavior"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "interaction_sessions_active",
			Help:      "Текущее количество активных сессий.",
		}),
	}

	reg.MustRegister(m.started, m.finished, m.outcomes, m.elapsed, m.active)
	return m
}

func (m *Metrics) sessionStarted(behavior string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(behavior).Inc()
	m.active.Inc()
}

func (m *Metrics) sessionFinished(behavior, state string, elapsed float64) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(behavior, state).Inc()
	m.elapsed.WithLabelValues(behavior).Observe(elapsed)
	m.active.Dec()
}

func (m *Metrics) outcome(behavior string, success bool) {
	if m == nil {
		return
	}
	result := "miss"
	if success {
		result = "success"
	}
	m.outcomes.WithLabelValues(behavior, result).Inc()
}
