// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/keystone"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/sapcc/go-bits/assert"

	testlibKeystone "github.com/cobaltcore-dev/defunct/testlib/keystone"
)

func setupMockServer(mux *http.ServeMux) (*httptest.Server, keystone.KeystoneAPI) {
	server := httptest.NewServer(mux)
	return server, &testlibKeystone.MockKeystoneAPI{Url: server.URL + "/"}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("error writing response: %v", err)
	}
}

func newTestNovaAPI(t *testing.T, mux *http.ServeMux) NovaAPI {
	t.Helper()
	server, k := setupMockServer(mux)
	t.Cleanup(server.Close)
	api := NewNovaAPI(monitoring.Monitor{}, k)
	if err := api.Init(t.Context()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return api
}

func TestNovaAPI_ListInstancesByHost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /servers/detail", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("host") != "node001" || query.Get("status") != "SHUTOFF" || query.Get("all_tenants") != "true" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(t, w, http.StatusOK, `{"servers": [
			{"id": "uuid-1", "name": "web", "tenant_id": "t1", "status": "SHUTOFF",
			 "OS-EXT-SRV-ATTR:host": "node001", "flavor": {"id": "f1", "links": []}},
			{"id": "uuid-2", "name": "db", "tenant_id": "t2", "status": "SHUTOFF",
			 "OS-EXT-SRV-ATTR:host": "node001", "flavor": {"id": "f2", "links": []}}
		]}`)
	})
	api := newTestNovaAPI(t, mux)

	instances, err := api.ListInstancesByHost(t.Context(), "node001", "SHUTOFF")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assert.DeepEqual(t, "instances", instances, []defunct.Instance{
		{ID: "uuid-1", Name: "web", TenantID: "t1", FlavorID: "f1", Status: "SHUTOFF", Host: "node001"},
		{ID: "uuid-2", Name: "db", TenantID: "t2", FlavorID: "f2", Status: "SHUTOFF", Host: "node001"},
	})
}

func TestNovaAPI_ListInstancesByHostUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /servers/detail", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadGateway, `{}`)
	})
	api := newTestNovaAPI(t, mux)

	_, err := api.ListInstancesByHost(t.Context(), "node001", "SHUTOFF")
	if !defunct.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestNovaAPI_GetInstance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /servers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "uuid-1" {
			writeJSON(t, w, http.StatusNotFound, `{"itemNotFound": {"code": 404}}`)
			return
		}
		writeJSON(t, w, http.StatusOK, `{"server": {"id": "uuid-1", "name": "web", "tenant_id": "t1",
			"status": "SHUTOFF", "OS-EXT-SRV-ATTR:host": "node001", "flavor": {"id": "f1"}}}`)
	})
	api := newTestNovaAPI(t, mux)

	inst, err := api.GetInstance(t.Context(), "uuid-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assert.DeepEqual(t, "instance", inst, defunct.Instance{
		ID: "uuid-1", Name: "web", TenantID: "t1", FlavorID: "f1", Status: "SHUTOFF", Host: "node001",
	})

	_, err = api.GetInstance(t.Context(), "uuid-missing")
	if !errors.Is(err, defunct.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	assert.DeepEqual(t, "error", err.Error(), "instance uuid-missing not found")
}

func TestNovaAPI_LatestAction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /servers/{id}/os-instance-actions", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "uuid-1":
			// Not sorted, the newest action must still win.
			writeJSON(t, w, http.StatusOK, `{"instanceActions": [
				{"action": "start", "instance_uuid": "uuid-1", "request_id": "req-2", "start_time": "2024-03-01T10:00:00.000000"},
				{"action": "stop", "instance_uuid": "uuid-1", "request_id": "req-3", "start_time": "2024-06-01T10:00:00.000000"},
				{"action": "stop", "instance_uuid": "uuid-1", "request_id": "req-1", "start_time": "2024-01-01T10:00:00.000000"}
			]}`)
		case "uuid-2":
			writeJSON(t, w, http.StatusOK, `{"instanceActions": []}`)
		default:
			writeJSON(t, w, http.StatusNotFound, `{}`)
		}
	})
	api := newTestNovaAPI(t, mux)

	result, err := api.LatestAction(t.Context(), "uuid-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	latest, ok := result.Unpack()
	if !ok {
		t.Fatal("expected an action")
	}
	assert.DeepEqual(t, "kind", latest.Kind, "stop")
	assert.DeepEqual(t, "request", latest.RequestID, "req-3")
	if !latest.StartTime.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start time %v", latest.StartTime)
	}

	result, err = api.LatestAction(t.Context(), "uuid-2")
	if err != nil || result.IsSome() {
		t.Errorf("expected no action and no error, got %v, %v", result, err)
	}

	if _, err := api.LatestAction(t.Context(), "uuid-3"); !errors.Is(err, defunct.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestNovaAPI_GetFlavor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /flavors/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "f1":
			writeJSON(t, w, http.StatusOK, `{"flavor": {"id": "f1", "name": "m1.small", "ram": 2048, "vcpus": 1, "disk": 20}}`)
		case "f-broken":
			writeJSON(t, w, http.StatusInternalServerError, `{}`)
		default:
			writeJSON(t, w, http.StatusNotFound, `{}`)
		}
	})
	api := newTestNovaAPI(t, mux)

	flavor, err := api.GetFlavor(t.Context(), "f1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assert.DeepEqual(t, "flavor", flavor, defunct.Flavor{ID: "f1", Name: "m1.small"})

	if _, err := api.GetFlavor(t.Context(), "f2"); !errors.Is(err, defunct.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := api.GetFlavor(t.Context(), "f-broken"); !defunct.IsFatal(err) {
		t.Errorf("expected fatal error, got %v", err)
	}
}

func TestNovaAPI_InitFails(t *testing.T) {
	k := &testlibKeystone.MockKeystoneAPI{AuthErr: errors.New("bad credentials")}
	err := NewNovaAPI(monitoring.Monitor{}, k).Init(t.Context())
	if !defunct.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}

	k = &testlibKeystone.MockKeystoneAPI{EndpointErr: errors.New("no compute endpoint")}
	err = NewNovaAPI(monitoring.Monitor{}, k).Init(t.Context())
	if !defunct.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}
