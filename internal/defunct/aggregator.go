// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"log/slog"

	"github.com/sapcc/go-bits/errext"
)

// Everything reported about one tenant.
type TenantEntry struct {
	Tenant    Tenant
	Managers  []User
	Instances []Instance
	// Problems met while resolving the tenant and its managers.
	Warnings errext.ErrorSet
}

// Instances grouped by owning tenant, in order of first encounter.
type Report struct {
	Tenants *OrderedMap[string, *TenantEntry]
}

func NewReport() *Report {
	return &Report{Tenants: NewOrderedMap[string, *TenantEntry]()}
}

// Number of instances over all tenants.
func (r *Report) InstanceCount() int {
	count := 0
	for _, entry := range r.Tenants.All() {
		count += len(entry.Instances)
	}
	return count
}

// Groups instances by tenant and resolves who to contact for each tenant.
type Aggregator struct {
	Directory *Directory
}

// Build the report for the given instances.
//
// Tenant and manager lookups go through the Directory, so they happen once
// per distinct tenant. Lookup problems end up as warnings on the tenant
// entry. The error is only set if the run must be aborted, in which case no
// report is returned.
func (a Aggregator) Aggregate(ctx context.Context, instances []Instance) (*Report, error) {
	report := NewReport()
	for _, inst := range instances {
		entry, ok := report.Tenants.Get(inst.TenantID)
		if !ok {
			var err error
			entry, err = a.newEntry(ctx, inst.TenantID)
			if err != nil {
				return nil, err
			}
			report.Tenants.Set(inst.TenantID, entry)
		}
		entry.Instances = append(entry.Instances, inst)
	}
	return report, nil
}

func (a Aggregator) newEntry(ctx context.Context, tenantID string) (*TenantEntry, error) {
	entry := &TenantEntry{}
	tenant, err := a.Directory.Tenant(ctx, tenantID)
	if IsFatal(err) {
		return nil, err
	}
	if err != nil {
		// Without the tenant record, the contact role is unknown.
		slog.Warn("cannot resolve tenant", "tenant", tenantID, "error", err)
		entry.Tenant = Tenant{ID: tenantID, Name: tenantID}
		entry.Warnings.Add(err)
		entry.Warnings.Add(NoManagersError{TenantID: tenantID})
		a.Directory.NoManagers(tenantID)
		return entry, nil
	}
	entry.Tenant = tenant
	managers, warnings, err := a.Directory.Managers(ctx, tenant)
	if err != nil {
		return nil, err
	}
	entry.Managers = managers
	entry.Warnings.Append(warnings)
	if len(managers) == 0 {
		entry.Warnings.Add(NoManagersError{TenantID: tenantID})
	}
	return entry, nil
}
