// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor is a collection of Prometheus metrics for a reporting run.
//
// The zero value is valid and records nothing.
type Monitor struct {
	// A histogram to measure how long each OpenStack request takes.
	RequestTimer *prometheus.HistogramVec
	// A counter to observe the number of instances looked at.
	InstancesScanned prometheus.Counter
	// A counter to observe the number of instances reported, by mode.
	InstancesSelected *prometheus.CounterVec
	// A counter to observe the number of lookups that were skipped.
	EntitiesSkipped *prometheus.CounterVec
	// A counter to observe the number of tenants without any manager.
	TenantsWithoutManagers prometheus.Counter
}

// NewMonitor creates a new monitor and registers the necessary Prometheus metrics.
func NewMonitor(registry *Registry) Monitor {
	requestTimer := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "defunct_api_request_duration_seconds",
		Help:    "Duration of OpenStack API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"collaborator", "operation"})
	instancesScanned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defunct_instances_scanned_total",
		Help: "Number of instances looked at",
	})
	instancesSelected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "defunct_instances_selected_total",
		Help: "Number of instances selected for the report",
	}, []string{"mode"})
	entitiesSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "defunct_entities_skipped_total",
		Help: "Number of lookups that failed and were skipped",
	}, []string{"reason"})
	tenantsWithoutManagers := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defunct_tenants_without_managers_total",
		Help: "Number of reported tenants without any manager",
	})
	registry.MustRegister(
		requestTimer,
		instancesScanned,
		instancesSelected,
		entitiesSkipped,
		tenantsWithoutManagers,
	)
	return Monitor{
		RequestTimer:           requestTimer,
		InstancesScanned:       instancesScanned,
		InstancesSelected:      instancesSelected,
		EntitiesSkipped:        entitiesSkipped,
		TenantsWithoutManagers: tenantsWithoutManagers,
	}
}

// Start a timer for a request, stop it by calling the returned func.
func (m Monitor) TimeRequest(collaborator, operation string) func() {
	if m.RequestTimer == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(m.RequestTimer.WithLabelValues(collaborator, operation))
	return func() { timer.ObserveDuration() }
}

func (m Monitor) Scanned(n int) {
	if m.InstancesScanned != nil {
		m.InstancesScanned.Add(float64(n))
	}
}

func (m Monitor) Selected(mode string, n int) {
	if m.InstancesSelected != nil {
		m.InstancesSelected.WithLabelValues(mode).Add(float64(n))
	}
}

func (m Monitor) Skipped(reason string) {
	if m.EntitiesSkipped != nil {
		m.EntitiesSkipped.WithLabelValues(reason).Inc()
	}
}

func (m Monitor) TenantWithoutManagers() {
	if m.TenantsWithoutManagers != nil {
		m.TenantsWithoutManagers.Inc()
	}
}
