// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/sapcc/go-bits/errext"
	"github.com/sapcc/go-bits/regexpext"
)

// Result of a lookup, kept so that each entity is fetched at most once.
type lookup[T any] struct {
	value T
	err   error
}

// Managers of a tenant, together with the problems met resolving them.
type managerLookup struct {
	users    []User
	warnings errext.ErrorSet
}

// Memoizing access to the compute and identity collaborators.
//
// A Directory belongs to a single run. Flavors, tenants, managers and role
// IDs are each looked up at most once, failed lookups included. Fatal errors
// are not remembered since they end the run anyway. Not safe for concurrent
// use.
type Directory struct {
	Compute  Compute
	Identity Identity
	Monitor  monitoring.Monitor

	personalTenantPattern regexpext.BoundedRegexp
	managerRole           string
	memberRole            string

	flavors  map[string]lookup[Flavor]
	tenants  map[string]lookup[Tenant]
	managers map[string]lookup[managerLookup]
	roles    map[string]lookup[string]

	// Tenants already counted as having no managers.
	withoutManagers map[string]bool
}

func NewDirectory(compute Compute, identity Identity, policy conf.PolicyConfig, mon monitoring.Monitor) *Directory {
	return &Directory{
		Compute:               compute,
		Identity:              identity,
		Monitor:               mon,
		personalTenantPattern: policy.PersonalTenantPattern,
		managerRole:           policy.ManagerRole,
		memberRole:            policy.MemberRole,
		flavors:               make(map[string]lookup[Flavor]),
		tenants:               make(map[string]lookup[Tenant]),
		managers:              make(map[string]lookup[managerLookup]),
		roles:                 make(map[string]lookup[string]),
		withoutManagers:       make(map[string]bool),
	}
}

func (d *Directory) Flavor(ctx context.Context, id string) (Flavor, error) {
	if cached, ok := d.flavors[id]; ok {
		return cached.value, cached.err
	}
	flavor, err := d.Compute.GetFlavor(ctx, id)
	if IsFatal(err) {
		return Flavor{}, err
	}
	if err != nil {
		d.Monitor.Skipped("flavor")
	}
	d.flavors[id] = lookup[Flavor]{flavor, err}
	return flavor, err
}

// Get the tenant with its personal flag derived from the name.
func (d *Directory) Tenant(ctx context.Context, id string) (Tenant, error) {
	if cached, ok := d.tenants[id]; ok {
		return cached.value, cached.err
	}
	tenant, err := d.Identity.GetTenant(ctx, id)
	if IsFatal(err) {
		return Tenant{}, err
	}
	if err != nil {
		d.Monitor.Skipped("tenant")
	} else {
		tenant.Personal = d.personalTenantPattern.MatchString(tenant.Name)
	}
	d.tenants[id] = lookup[Tenant]{tenant, err}
	return tenant, err
}

// Count the tenant as having no managers, once per run.
func (d *Directory) NoManagers(tenantID string) {
	if d.withoutManagers[tenantID] {
		return
	}
	d.withoutManagers[tenantID] = true
	d.Monitor.TenantWithoutManagers()
}

// The role whose holders are contacted for the tenant.
func (d *Directory) ContactRole(tenant Tenant) string {
	if tenant.Personal {
		return d.memberRole
	}
	return d.managerRole
}

func (d *Directory) roleID(ctx context.Context, name string) (string, error) {
	if cached, ok := d.roles[name]; ok {
		return cached.value, cached.err
	}
	id, err := d.Identity.FindRoleID(ctx, name)
	if IsFatal(err) {
		return "", err
	}
	d.roles[name] = lookup[string]{id, err}
	return id, err
}

// Resolve the manager contacts of a tenant.
//
// Problems with single users or a missing role do not fail the lookup, they
// are returned as warnings next to the users that could be resolved. The
// returned error is always fatal.
func (d *Directory) Managers(ctx context.Context, tenant Tenant) ([]User, errext.ErrorSet, error) {
	if cached, ok := d.managers[tenant.ID]; ok {
		return cached.value.users, cached.value.warnings, cached.err
	}
	result, err := d.resolveManagers(ctx, tenant)
	if err != nil {
		return nil, nil, err
	}
	if len(result.users) == 0 {
		slog.Warn("tenant has no managers", "tenant", tenant.ID, "role", d.ContactRole(tenant))
		d.NoManagers(tenant.ID)
	}
	d.managers[tenant.ID] = lookup[managerLookup]{value: result}
	return result.users, result.warnings, nil
}

func (d *Directory) resolveManagers(ctx context.Context, tenant Tenant) (managerLookup, error) {
	var result managerLookup
	roleName := d.ContactRole(tenant)
	roleID, err := d.roleID(ctx, roleName)
	if IsFatal(err) {
		return result, err
	}
	if err != nil {
		result.warnings.Add(fmt.Errorf("cannot resolve role %s: %w", roleName, err))
		return result, nil
	}
	assignments, err := d.Identity.ListRoleAssignments(ctx, tenant.ID)
	if IsFatal(err) {
		return result, err
	}
	if err != nil {
		result.warnings.Add(fmt.Errorf("cannot list role assignments: %w", err))
		return result, nil
	}
	seen := make(map[string]bool)
	for _, assignment := range assignments {
		if assignment.RoleID != roleID || seen[assignment.UserID] {
			continue
		}
		seen[assignment.UserID] = true
		user, err := d.Identity.GetUser(ctx, assignment.UserID)
		if IsFatal(err) {
			return result, err
		}
		if err != nil {
			slog.Warn("skipping manager", "tenant", tenant.ID, "user", assignment.UserID, "error", err)
			d.Monitor.Skipped("user")
			result.warnings.Add(err)
			continue
		}
		result.users = append(result.users, user)
	}
	return result, nil
}
