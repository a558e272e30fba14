// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"context"
	"log/slog"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

type Registry struct {
	*prometheus.Registry
	config conf.MonitoringConfig
}

func NewRegistry(config conf.MonitoringConfig) *Registry {
	registry := &Registry{
		Registry: prometheus.NewRegistry(),
		config:   config,
	}
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Custom gather method that adds custom labels to all metrics.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	families, err := r.Registry.Gather()
	if err != nil {
		return nil, err
	}
	// Add the configured labels to all metrics, so that runs from
	// different regions can be told apart on a shared pushgateway.
	for name, value := range r.config.Labels {
		for _, family := range families {
			for _, metric := range family.Metric {
				metric.Label = append(metric.Label, &dto.LabelPair{
					Name:  &name,
					Value: &value,
				})
			}
		}
	}
	return families, nil
}

// Push all gathered metrics to the configured pushgateway.
// Does nothing if no pushgateway is configured.
func (r *Registry) Push(ctx context.Context) error {
	if r.config.PushgatewayURL == "" {
		return nil
	}
	slog.Info("pushing metrics", "url", r.config.PushgatewayURL, "job", r.config.PushJob)
	return push.New(r.config.PushgatewayURL, r.config.PushJob).
		Gatherer(r).
		PushContext(ctx)
}
