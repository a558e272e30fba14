// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"context"
	"log/slog"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/keystone"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/flavors"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/instanceactions"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"
	"github.com/gophercloud/gophercloud/v2/pagination"
	"github.com/majewsky/gg/option"
)

const computeCollaborator = "compute"

type NovaAPI interface {
	defunct.Compute
	// Init the nova API.
	Init(ctx context.Context) error
}

// API for OpenStack Nova.
type novaAPI struct {
	// Monitor to track the api.
	mon monitoring.Monitor
	// Keystone api to authenticate against.
	keystoneAPI keystone.KeystoneAPI
	// Authenticated OpenStack service client to fetch the data.
	sc *gophercloud.ServiceClient
}

// Server as returned by nova, with only the fields we need.
type server struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
	Status   string `json:"status"`
	Host     string `json:"OS-EXT-SRV-ATTR:host"`
	Flavor   struct {
		ID string `json:"id"`
	} `json:"flavor"`
}

func (s server) toInstance() defunct.Instance {
	return defunct.Instance{
		ID:       s.ID,
		Name:     s.Name,
		TenantID: s.TenantID,
		FlavorID: s.Flavor.ID,
		Status:   s.Status,
		Host:     s.Host,
	}
}

// Create a new OpenStack nova api.
func NewNovaAPI(mon monitoring.Monitor, k keystone.KeystoneAPI) NovaAPI {
	return &novaAPI{mon: mon, keystoneAPI: k}
}

// Init the nova API.
func (api *novaAPI) Init(ctx context.Context) error {
	if err := api.keystoneAPI.Authenticate(ctx); err != nil {
		return defunct.UnavailableError{Collaborator: "keystone", Err: err}
	}
	// Automatically fetch the nova endpoint from the keystone service catalog.
	provider := api.keystoneAPI.Client()
	serviceType := "compute"
	url, err := api.keystoneAPI.FindEndpoint(api.keystoneAPI.Availability(), serviceType)
	if err != nil {
		return defunct.UnavailableError{Collaborator: computeCollaborator, Err: err}
	}
	slog.Info("using nova endpoint", "url", url)
	// No microversion is requested: flavors must be returned by reference,
	// which newer microversions replace with an embedded description.
	api.sc = &gophercloud.ServiceClient{
		ProviderClient: provider,
		Endpoint:       url,
		Type:           serviceType,
	}
	return nil
}

// List the instances on a host with the given status, across all tenants.
func (api *novaAPI) ListInstancesByHost(ctx context.Context, host, status string) ([]defunct.Instance, error) {
	slog.Info("fetching nova servers", "host", host, "status", status)
	pages, err := func() (pagination.Page, error) {
		defer api.mon.TimeRequest(computeCollaborator, "list_instances")()
		lo := servers.ListOpts{
			Host:       host,
			Status:     status,
			AllTenants: true,
		}
		return servers.List(api.sc, lo).AllPages(ctx)
	}()
	if err != nil {
		// A missing host is an empty list for nova, so any error here
		// means the listing itself is broken.
		return nil, defunct.UnavailableError{Collaborator: computeCollaborator, Err: err}
	}
	// Parse the json data into our custom model.
	var data = &struct {
		Servers []server `json:"servers"`
	}{}
	if err := pages.(servers.ServerPage).ExtractInto(data); err != nil {
		return nil, defunct.UnavailableError{Collaborator: computeCollaborator, Err: err}
	}
	slog.Info("fetched", "host", host, "count", len(data.Servers))
	instances := make([]defunct.Instance, 0, len(data.Servers))
	for _, s := range data.Servers {
		instances = append(instances, s.toInstance())
	}
	return instances, nil
}

func (api *novaAPI) GetInstance(ctx context.Context, id string) (defunct.Instance, error) {
	slog.Debug("fetching nova server", "id", id)
	defer api.mon.TimeRequest(computeCollaborator, "get_instance")()
	var data struct {
		Server server `json:"server"`
	}
	if err := servers.Get(ctx, api.sc, id).ExtractInto(&data); err != nil {
		return defunct.Instance{}, translateError(computeCollaborator, "instance", id, err)
	}
	return data.Server.toInstance(), nil
}

// Get the newest lifecycle action of the instance by start time.
func (api *novaAPI) LatestAction(ctx context.Context, instanceID string) (option.Option[defunct.LifecycleAction], error) {
	slog.Debug("fetching instance actions", "id", instanceID)
	pages, err := func() (pagination.Page, error) {
		defer api.mon.TimeRequest(computeCollaborator, "list_actions")()
		return instanceactions.List(api.sc, instanceID, nil).AllPages(ctx)
	}()
	if err != nil {
		return option.None[defunct.LifecycleAction](), translateError(computeCollaborator, "instance", instanceID, err)
	}
	actions, err := instanceactions.ExtractInstanceActions(pages)
	if err != nil {
		return option.None[defunct.LifecycleAction](), defunct.LookupError{Kind: "instance actions", ID: instanceID, Err: err}
	}
	latest := option.None[defunct.LifecycleAction]()
	for _, action := range actions {
		if latest.IsSomeAnd(func(l defunct.LifecycleAction) bool { return !action.StartTime.After(l.StartTime) }) {
			continue
		}
		latest = option.Some(defunct.LifecycleAction{
			Kind:      action.Action,
			StartTime: action.StartTime,
			RequestID: action.RequestID,
		})
	}
	return latest, nil
}

func (api *novaAPI) GetFlavor(ctx context.Context, id string) (defunct.Flavor, error) {
	slog.Debug("fetching nova flavor", "id", id)
	defer api.mon.TimeRequest(computeCollaborator, "get_flavor")()
	flavor, err := flavors.Get(ctx, api.sc, id).Extract()
	if err != nil {
		return defunct.Flavor{}, translateError(computeCollaborator, "flavor", id, err)
	}
	return defunct.Flavor{ID: flavor.ID, Name: flavor.Name}, nil
}
