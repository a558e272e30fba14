// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/keystone"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/projects"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/roles"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/users"
	"github.com/gophercloud/gophercloud/v2/openstack/utils"
	"github.com/gophercloud/gophercloud/v2/pagination"
)

const identityCollaborator = "identity"

type IdentityAPI interface {
	defunct.Identity
	// Init the identity API.
	Init(ctx context.Context) error
}

type identityAPI struct {
	// Monitor to track the api.
	mon monitoring.Monitor
	// Keystone api to authenticate against.
	keystoneAPI keystone.KeystoneAPI
	// Authenticated OpenStack service client to fetch the data.
	sc *gophercloud.ServiceClient
}

func NewIdentityAPI(mon monitoring.Monitor, k keystone.KeystoneAPI) IdentityAPI {
	return &identityAPI{mon: mon, keystoneAPI: k}
}

func (api *identityAPI) Init(ctx context.Context) error {
	if err := api.keystoneAPI.Authenticate(ctx); err != nil {
		return defunct.UnavailableError{Collaborator: "keystone", Err: err}
	}
	provider := api.keystoneAPI.Client()
	serviceType := "identity"
	url, err := api.keystoneAPI.FindEndpoint(api.keystoneAPI.Availability(), serviceType)
	if err != nil {
		return defunct.UnavailableError{Collaborator: identityCollaborator, Err: err}
	}
	endpoint, err := identityV3Endpoint(url)
	if err != nil {
		return defunct.UnavailableError{Collaborator: identityCollaborator, Err: err}
	}
	slog.Info("using identity endpoint", "url", endpoint)
	api.sc = &gophercloud.ServiceClient{
		ProviderClient: provider,
		Endpoint:       endpoint,
		Type:           serviceType,
	}
	return nil
}

// Catalogs often publish the identity endpoint without a version or as
// /v2.0. Point it at /v3/ either way, as openstack.NewIdentityV3 does.
func identityV3Endpoint(url string) (string, error) {
	base, err := utils.BaseEndpoint(url)
	if err != nil {
		return "", err
	}
	return gophercloud.NormalizeURL(base) + "v3/", nil
}

func (api *identityAPI) GetTenant(ctx context.Context, id string) (defunct.Tenant, error) {
	slog.Debug("fetching identity project", "id", id)
	defer api.mon.TimeRequest(identityCollaborator, "get_tenant")()
	project, err := projects.Get(ctx, api.sc, id).Extract()
	if err != nil {
		return defunct.Tenant{}, translateError(identityCollaborator, "tenant", id, err)
	}
	return defunct.Tenant{ID: project.ID, Name: project.Name}, nil
}

// List the role assignments of users on the tenant.
// Assignments to groups are not expanded and left out.
func (api *identityAPI) ListRoleAssignments(ctx context.Context, tenantID string) ([]defunct.RoleAssignment, error) {
	slog.Debug("fetching identity role assignments", "tenant", tenantID)
	pages, err := func() (pagination.Page, error) {
		defer api.mon.TimeRequest(identityCollaborator, "list_role_assignments")()
		lo := roles.ListAssignmentsOpts{ScopeProjectID: tenantID}
		return roles.ListAssignments(api.sc, lo).AllPages(ctx)
	}()
	if err != nil {
		return nil, translateError(identityCollaborator, "tenant", tenantID, err)
	}
	raw, err := roles.ExtractRoleAssignments(pages)
	if err != nil {
		return nil, defunct.LookupError{Kind: "role assignments of tenant", ID: tenantID, Err: err}
	}
	var assignments []defunct.RoleAssignment
	for _, assignment := range raw {
		if assignment.User.ID == "" {
			continue
		}
		assignments = append(assignments, defunct.RoleAssignment{
			RoleID: assignment.Role.ID,
			UserID: assignment.User.ID,
		})
	}
	return assignments, nil
}

func (api *identityAPI) FindRoleID(ctx context.Context, name string) (string, error) {
	slog.Debug("fetching identity role", "name", name)
	pages, err := func() (pagination.Page, error) {
		defer api.mon.TimeRequest(identityCollaborator, "find_role")()
		return roles.List(api.sc, roles.ListOpts{Name: name}).AllPages(ctx)
	}()
	if err != nil {
		return "", translateError(identityCollaborator, "role", name, err)
	}
	found, err := roles.ExtractRoles(pages)
	if err != nil {
		return "", defunct.LookupError{Kind: "role", ID: name, Err: err}
	}
	for _, role := range found {
		if role.Name == name {
			return role.ID, nil
		}
	}
	return "", defunct.NotFoundError{Kind: "role", ID: name}
}

// Get a user with the email address from its extra attributes.
func (api *identityAPI) GetUser(ctx context.Context, id string) (defunct.User, error) {
	slog.Debug("fetching identity user", "id", id)
	defer api.mon.TimeRequest(identityCollaborator, "get_user")()
	user, err := users.Get(ctx, api.sc, id).Extract()
	if err != nil {
		return defunct.User{}, translateError(identityCollaborator, "user", id, err)
	}
	email := ""
	if value, ok := user.Extra["email"]; ok && value != nil {
		email = fmt.Sprint(value)
	}
	return defunct.User{ID: user.ID, Name: user.Name, Email: email}, nil
}
