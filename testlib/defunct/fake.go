// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/majewsky/gg/option"
)

// In-memory compute collaborator that counts calls per operation.
type FakeCompute struct {
	Instances map[string]defunct.Instance
	// Instance IDs per host, in listing order.
	Hosts   map[string][]string
	Actions map[string]*defunct.LifecycleAction
	Flavors map[string]defunct.Flavor
	// Errors to return per operation and ID (host for listings).
	Errors map[string]map[string]error
	// Number of calls per operation.
	Calls map[string]int
}

func NewFakeCompute() *FakeCompute {
	return &FakeCompute{
		Instances: make(map[string]defunct.Instance),
		Hosts:     make(map[string][]string),
		Actions:   make(map[string]*defunct.LifecycleAction),
		Flavors:   make(map[string]defunct.Flavor),
		Errors:    make(map[string]map[string]error),
		Calls:     make(map[string]int),
	}
}

// Add an instance, placing it on its host.
func (f *FakeCompute) AddInstance(inst defunct.Instance, latest *defunct.LifecycleAction) {
	f.Instances[inst.ID] = inst
	f.Hosts[inst.Host] = append(f.Hosts[inst.Host], inst.ID)
	if latest != nil {
		f.Actions[inst.ID] = latest
	}
}

// Make the given operation fail for the given ID.
func (f *FakeCompute) Fail(op, id string, err error) {
	if f.Errors[op] == nil {
		f.Errors[op] = make(map[string]error)
	}
	f.Errors[op][id] = err
}

func (f *FakeCompute) call(op, id string) error {
	f.Calls[op]++
	return f.Errors[op][id]
}

func (f *FakeCompute) ListInstancesByHost(ctx context.Context, host, status string) ([]defunct.Instance, error) {
	if err := f.call("ListInstancesByHost", host); err != nil {
		return nil, err
	}
	var instances []defunct.Instance
	for _, id := range f.Hosts[host] {
		inst := f.Instances[id]
		if status == "" || inst.Status == status {
			instances = append(instances, inst)
		}
	}
	return instances, nil
}

func (f *FakeCompute) GetInstance(ctx context.Context, id string) (defunct.Instance, error) {
	if err := f.call("GetInstance", id); err != nil {
		return defunct.Instance{}, err
	}
	inst, ok := f.Instances[id]
	if !ok {
		return defunct.Instance{}, defunct.NotFoundError{Kind: "instance", ID: id}
	}
	return inst, nil
}

func (f *FakeCompute) LatestAction(ctx context.Context, instanceID string) (option.Option[defunct.LifecycleAction], error) {
	if err := f.call("LatestAction", instanceID); err != nil {
		return option.None[defunct.LifecycleAction](), err
	}
	if action := f.Actions[instanceID]; action != nil {
		return option.Some(*action), nil
	}
	return option.None[defunct.LifecycleAction](), nil
}

func (f *FakeCompute) GetFlavor(ctx context.Context, id string) (defunct.Flavor, error) {
	if err := f.call("GetFlavor", id); err != nil {
		return defunct.Flavor{}, err
	}
	flavor, ok := f.Flavors[id]
	if !ok {
		return defunct.Flavor{}, defunct.NotFoundError{Kind: "flavor", ID: id}
	}
	return flavor, nil
}

// In-memory identity collaborator that counts calls per operation.
type FakeIdentity struct {
	Tenants map[string]defunct.Tenant
	// Role IDs by name.
	Roles       map[string]string
	Assignments map[string][]defunct.RoleAssignment
	Users       map[string]defunct.User
	// Errors to return per operation and ID (name for role lookups).
	Errors map[string]map[string]error
	// Number of calls per operation.
	Calls map[string]int
}

func NewFakeIdentity() *FakeIdentity {
	return &FakeIdentity{
		Tenants:     make(map[string]defunct.Tenant),
		Roles:       map[string]string{"TenantManager": "role-manager", "Member": "role-member"},
		Assignments: make(map[string][]defunct.RoleAssignment),
		Users:       make(map[string]defunct.User),
		Errors:      make(map[string]map[string]error),
		Calls:       make(map[string]int),
	}
}

// Add a tenant with the given users holding the given role on it.
func (f *FakeIdentity) AddTenant(tenant defunct.Tenant, roleName string, users ...defunct.User) {
	f.Tenants[tenant.ID] = tenant
	if _, ok := f.Assignments[tenant.ID]; !ok {
		f.Assignments[tenant.ID] = []defunct.RoleAssignment{}
	}
	for _, user := range users {
		f.Users[user.ID] = user
		f.Assignments[tenant.ID] = append(f.Assignments[tenant.ID], defunct.RoleAssignment{
			RoleID: f.Roles[roleName],
			UserID: user.ID,
		})
	}
}

// Make the given operation fail for the given ID.
func (f *FakeIdentity) Fail(op, id string, err error) {
	if f.Errors[op] == nil {
		f.Errors[op] = make(map[string]error)
	}
	f.Errors[op][id] = err
}

func (f *FakeIdentity) call(op, id string) error {
	f.Calls[op]++
	return f.Errors[op][id]
}

func (f *FakeIdentity) GetTenant(ctx context.Context, id string) (defunct.Tenant, error) {
	if err := f.call("GetTenant", id); err != nil {
		return defunct.Tenant{}, err
	}
	tenant, ok := f.Tenants[id]
	if !ok {
		return defunct.Tenant{}, defunct.NotFoundError{Kind: "tenant", ID: id}
	}
	return tenant, nil
}

func (f *FakeIdentity) ListRoleAssignments(ctx context.Context, tenantID string) ([]defunct.RoleAssignment, error) {
	if err := f.call("ListRoleAssignments", tenantID); err != nil {
		return nil, err
	}
	return f.Assignments[tenantID], nil
}

func (f *FakeIdentity) FindRoleID(ctx context.Context, name string) (string, error) {
	if err := f.call("FindRoleID", name); err != nil {
		return "", err
	}
	id, ok := f.Roles[name]
	if !ok {
		return "", defunct.NotFoundError{Kind: "role", ID: name}
	}
	return id, nil
}

func (f *FakeIdentity) GetUser(ctx context.Context, id string) (defunct.User, error) {
	if err := f.call("GetUser", id); err != nil {
		return defunct.User{}, err
	}
	user, ok := f.Users[id]
	if !ok {
		return defunct.User{}, defunct.NotFoundError{Kind: "user", ID: id}
	}
	return user, nil
}
