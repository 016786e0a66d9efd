package semnet

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry *prometheus.Registry

	// Counters
	nextConnectionID     prometheus.CounterFunc
	requests             *prometheus.CounterVec
	evaluations          *prometheus.CounterVec
	forcingOutcomes      *prometheus.CounterVec
	completionsEvaluated prometheus.Counter

	// Gauges
	openConnections prometheus.GaugeFunc
	scenarios       prometheus.GaugeFunc

	// Latency
	requestLatency *prometheus.SummaryVec
}

func newMetrics(s *Server) *metrics {
	m := &metrics{
		nextConnectionID: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "next_connection_id",
				Help: "number of connections to this server over its lifetime",
			},
			func() float64 {
				s.mu.Lock()
				defer s.mu.Unlock()
				return float64(s.mu.nextConnectionID)
			},
		),
		openConnections: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "open_connections",
				Help: "number of connections currently open",
			},
			func() float64 {
				s.mu.Lock()
				defer s.mu.Unlock()
				return float64(len(s.mu.connections))
			},
		),
		scenarios: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "scenarios_loaded",
				Help: "number of scenarios the server answers for",
			},
			func() float64 {
				return float64(s.catalog.Len())
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "requests_total",
				Help: "requests handled, by op and by error kind (ok on success)",
			},
			[]string{"op", "kind"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evaluations_total",
				Help: "formula evaluations, by truth value",
			},
			[]string{"truth"},
		),
		forcingOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forcing_results_total",
				Help: "forcing decisions, by result",
			},
			[]string{"result"},
		),
		completionsEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "forcing_completions_enumerated_total",
				Help: "completions visited while deciding forcing",
			},
		),
		requestLatency: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "request_latency_ns",
				Help: "latency to answer a request",
			},
			[]string{"op"},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	reg.MustRegister(m.nextConnectionID)
	reg.MustRegister(m.openConnections)
	reg.MustRegister(m.scenarios)
	reg.MustRegister(m.requests)
	reg.MustRegister(m.evaluations)
	reg.MustRegister(m.forcingOutcomes)
	reg.MustRegister(m.completionsEvaluated)
	reg.MustRegister(m.requestLatency)
	return m
}

func (m *metrics) observeRequest(op string, kind string, start time.Time) {
	m.requests.WithLabelValues(op, kind).Inc()
	m.requestLatency.WithLabelValues(op).Observe(float64(time.Since(start).Nanoseconds()))
}

func (m *metrics) observeForces(report *ForcesReport) {
	m.forcingOutcomes.WithLabelValues(report.Result).Inc()
	m.completionsEvaluated.Add(float64(report.Enumerated))
}
