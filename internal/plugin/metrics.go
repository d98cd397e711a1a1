// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Mode labels for load metrics.
const (
	ModeDynamic = "dynamic"
	ModeStatic  = "static"
)

// Loads is the counter for successful plugin loads.
// Use RegisterMetrics to register this with a Prometheus registry.
var Loads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tsunami_plugin_loads_total",
		Help: "Total number of successful plugin loads",
	},
	[]string{"mode"},
)

// LoadFailures is the counter for failed plugin loads, labeled by error code.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoadFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tsunami_plugin_load_failures_total",
		Help: "Total number of failed plugin loads by error code",
	},
	[]string{"mode", "code"},
)

// UnloadErrors is the counter for OnUnload errors observed during drain.
// Use RegisterMetrics to register this with a Prometheus registry.
var UnloadErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tsunami_plugin_unload_errors_total",
		Help: "Total number of plugin unload errors",
	},
	[]string{"plugin"},
)

// Triggers is the counter for data-path trigger invocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var Triggers = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tsunami_plugin_triggers_total",
		Help: "Total number of plugin trigger invocations",
	},
	[]string{"plugin", "status"},
)

// Trigger status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RegisterMetrics registers plugin package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Loads)
	reg.MustRegister(LoadFailures)
	reg.MustRegister(UnloadErrors)
	reg.MustRegister(Triggers)
}

// RecordLoad increments the successful-load counter.
func RecordLoad(mode string) {
	Loads.WithLabelValues(mode).Inc()
}

// RecordLoadFailure increments the failed-load counter.
func RecordLoadFailure(mode, code string) {
	if code == "" {
		code = "unknown"
	}
	LoadFailures.WithLabelValues(mode, code).Inc()
}

// RecordUnloadError increments the unload-error counter.
func RecordUnloadError(plugin string) {
	UnloadErrors.WithLabelValues(plugin).Inc()
}

// RecordTrigger increments the trigger counter with the given outcome.
func RecordTrigger(plugin, status string) {
	Triggers.WithLabelValues(plugin, status).Inc()
}
