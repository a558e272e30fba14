// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"testing"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMonitor(t *testing.T) {
	registry := NewRegistry(conf.MonitoringConfig{})
	mon := NewMonitor(registry)

	mon.Scanned(5)
	mon.Selected("filter", 2)
	mon.Selected("categorize", 1)
	mon.Skipped("tenant")
	mon.Skipped("tenant")
	mon.TenantWithoutManagers()
	done := mon.TimeRequest("compute", "list_instances")
	done()

	if v := testutil.ToFloat64(mon.InstancesScanned); v != 5 {
		t.Errorf("expected 5 scanned instances, got %v", v)
	}
	if v := testutil.ToFloat64(mon.InstancesSelected.WithLabelValues("filter")); v != 2 {
		t.Errorf("expected 2 selected instances, got %v", v)
	}
	if v := testutil.ToFloat64(mon.EntitiesSkipped.WithLabelValues("tenant")); v != 2 {
		t.Errorf("expected 2 skipped tenants, got %v", v)
	}
	if v := testutil.ToFloat64(mon.TenantsWithoutManagers); v != 1 {
		t.Errorf("expected 1 tenant without managers, got %v", v)
	}
	if n := testutil.CollectAndCount(mon.RequestTimer, "defunct_api_request_duration_seconds"); n != 1 {
		t.Errorf("expected 1 request timer series, got %d", n)
	}
}

func TestMonitor_ZeroValue(t *testing.T) {
	// The zero value must be usable without any registry.
	mon := Monitor{}
	mon.Scanned(1)
	mon.Selected("filter", 1)
	mon.Skipped("flavor")
	mon.TenantWithoutManagers()
	mon.TimeRequest("identity", "get_tenant")()
}
