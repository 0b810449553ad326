package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Selection attempt outcomes
const (
	ResultOK              = "ok"
	ResultFull            = "full"
	ResultAlreadySelected = "already_selected"
	ResultUnknownOption   = "unknown_option"
	ResultNoSession       = "no_session"
	ResultError           = "error"
)

// OptionUnknown is the option label for ids that are not configured
const OptionUnknown = "unknown"

var (
	registerOnce sync.Once

	selectionAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hypervision",
			Name:      "selection_attempts_total",
			Help:      "Selection attempts by option and outcome.",
		},
		[]string{"option", "result"},
	)
	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hypervision",
			Name:      "sessions_total",
			Help:      "Portal session attempts by outcome.",
		},
		[]string{"result"},
	)
	optionSelections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hypervision",
			Name:      "option_selections",
			Help:      "Current number of selections per option.",
		},
		[]string{"option"},
	)
)

// RegisterMetrics registers the collectors with the default registry once
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(selectionAttempts, sessions, optionSelections)
	})
}

// RecordSelectionAttempt counts one selection attempt for option by outcome
func RecordSelectionAttempt(option, result string) {
	RegisterMetrics()
	selectionAttempts.WithLabelValues(option, result).Inc()
}

// RecordSession counts one portal session attempt by outcome
func RecordSession(result string) {
	RegisterMetrics()
	sessions.WithLabelValues(result).Inc()
}

// SetOptionSelections sets the current selection count for option
func SetOptionSelections(option string, count int) {
	RegisterMetrics()
	optionSelections.WithLabelValues(option).Set(float64(count))
}

// Handler exposes the default registry in the Prometheus text format
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
