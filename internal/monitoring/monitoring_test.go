// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistry(t *testing.T) {
	config := conf.MonitoringConfig{
		Labels: map[string]string{
			"env": "test",
		},
	}
	registry := NewRegistry(config)

	if registry == nil {
		t.Fatalf("expected registry to be non-nil")
	}
	if registry.config.Labels["env"] != "test" {
		t.Fatalf("expected registry config label 'env' to be 'test', got %v", registry.config.Labels["env"])
	}
}

func TestRegistry_Gather(t *testing.T) {
	config := conf.MonitoringConfig{
		Labels: map[string]string{
			"env": "test",
		},
	}
	registry := NewRegistry(config)

	// Register a custom metric
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})
	registry.MustRegister(counter)
	counter.Inc()

	// Gather metrics
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Check that the custom label is added to all metrics
	for _, family := range families {
		for _, metric := range family.Metric {
			found := false
			for _, label := range metric.Label {
				if *label.Name == "env" && *label.Value == "test" {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected custom label 'env' with value 'test' in metric, but not found")
			}
		}
	}
}

func TestRegistry_PushWithoutGateway(t *testing.T) {
	registry := NewRegistry(conf.MonitoringConfig{})
	if err := registry.Push(t.Context()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRegistry_Push(t *testing.T) {
	var path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := NewRegistry(conf.MonitoringConfig{
		PushgatewayURL: server.URL,
		PushJob:        "defunct",
	})
	mon := NewMonitor(registry)
	mon.Scanned(3)

	if err := registry.Push(t.Context()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path != "/metrics/job/defunct" {
		t.Errorf("expected push to /metrics/job/defunct, got %s", path)
	}
	if !strings.Contains(body, "defunct_instances_scanned_total") {
		t.Error("expected pushed body to contain the scanned counter")
	}
}

func TestRegistry_PushRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	registry := NewRegistry(conf.MonitoringConfig{PushgatewayURL: server.URL, PushJob: "defunct"})
	if err := registry.Push(t.Context()); err == nil {
		t.Fatal("expected error when the pushgateway rejects the push")
	}
}
