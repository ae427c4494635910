package shield

import (
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gitlab.com/webshield/webshield"
)

// Metrics for the shield, registered on their own registry
type Metrics struct {
	Registry *prometheus.Registry

	Checks       *prometheus.CounterVec
	Filtered     *prometheus.CounterVec
	Decisions    *prometheus.CounterVec
	ModuleErrors *prometheus.CounterVec
	GatesActive  prometheus.Gauge
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshield_checks_total",
				Help: "Module checks by request class and verdict",
			},
			[]string{"class", "verdict"},
		),
		Filtered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshield_filter_total",
				Help: "Filter calls by result",
			},
			[]string{"result"},
		),
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshield_decisions_total",
				Help: "Resolved decisions by outcome",
			},
			[]string{"outcome", "private"},
		),
		ModuleErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshield_module_errors_total",
				Help: "Errors recorded by the module loader",
			},
			[]string{"kind"},
		),
		GatesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webshield_gates_active",
				Help: "Gates currently tracking a request",
			},
		),
	}
}

// ObserveDecision counts a resolved decision
func (m *Metrics) ObserveDecision(outcome webshield.Outcome, private bool) {
	p := "false"
	if private {
		p = "true"
	}
	m.Decisions.WithLabelValues(outcome.String(), p).Inc()
}

// ObserveModuleError counts a loader error
func (m *Metrics) ObserveModuleError(kind webshield.ErrorKind) {
	m.ModuleErrors.WithLabelValues(kind.String()).Inc()
}

// instrumented counts checks and filters of the wrapped module
type instrumented struct {
	webshield.Module
	metrics *Metrics
}

func (i *instrumented) Check(u *url.URL, class webshield.RequestClass, private bool) bool {
	malicious := i.Module.Check(u, class, private)
	verdict := "safe"
	if malicious {
		verdict = "malicious"
	}
	i.metrics.Checks.WithLabelValues(class.String(), verdict).Inc()
	return malicious
}

func (i *instrumented) Filter(u *url.URL) string {
	filtered := i.Module.Filter(u)
	result := "unchanged"
	if u != nil && filtered != u.String() {
		result = "rewritten"
	}
	i.metrics.Filtered.WithLabelValues(result).Inc()
	return filtered
}
