// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"time"

	"github.com/majewsky/gg/option"
)

// Snapshot of a compute instance, fetched once per run.
type Instance struct {
	ID       string
	Name     string
	TenantID string
	FlavorID string
	Status   string
	// Compute host the instance is placed on.
	Host string
}

// The kind of lifecycle action that marks an instance as shut off.
const ActionStop = "stop"

// An entry in the audit trail of an instance.
type LifecycleAction struct {
	// Kind of the action, such as "stop" or "start".
	Kind      string
	StartTime time.Time
	RequestID string
}

type Flavor struct {
	ID   string
	Name string
}

type Tenant struct {
	ID   string
	Name string
	// Whether the tenant is a personal tenant. This is derived from the name
	// by the Directory, collaborators leave it unset.
	Personal bool
}

type RoleAssignment struct {
	RoleID string
	UserID string
}

type User struct {
	ID    string
	Name  string
	Email string
}

// Compute collaborator, backed by the OpenStack compute API.
type Compute interface {
	// List the instances on the given host with the given status,
	// across all tenants.
	ListInstancesByHost(ctx context.Context, host, status string) ([]Instance, error)
	// Get a single instance. Returns a NotFoundError if it does not exist.
	GetInstance(ctx context.Context, id string) (Instance, error)
	// Get the most recent lifecycle action of an instance, or None if
	// nothing was ever recorded for it.
	LatestAction(ctx context.Context, instanceID string) (option.Option[LifecycleAction], error)
	GetFlavor(ctx context.Context, id string) (Flavor, error)
}

// Identity collaborator, backed by the OpenStack identity API.
type Identity interface {
	GetTenant(ctx context.Context, id string) (Tenant, error)
	// List the user role assignments on the given tenant.
	ListRoleAssignments(ctx context.Context, tenantID string) ([]RoleAssignment, error)
	// Resolve a role name to its ID. Returns a NotFoundError if no role
	// with that name exists.
	FindRoleID(ctx context.Context, name string) (string, error)
	GetUser(ctx context.Context, id string) (User, error)
}
