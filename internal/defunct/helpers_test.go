// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct_test

import (
	"time"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"

	testlibDefunct "github.com/cobaltcore-dev/defunct/testlib/defunct"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func stoppedDaysAgo(days int) *defunct.LifecycleAction {
	return &defunct.LifecycleAction{Kind: defunct.ActionStop, StartTime: now.AddDate(0, 0, -days)}
}

func newDirectory(compute *testlibDefunct.FakeCompute, identity *testlibDefunct.FakeIdentity) *defunct.Directory {
	return defunct.NewDirectory(compute, identity, conf.NewDefaultPolicyConfig(), monitoring.Monitor{})
}

func instanceIDs(instances []defunct.Instance) []string {
	ids := make([]string, len(instances))
	for idx, inst := range instances {
		ids[idx] = inst.ID
	}
	return ids
}

// A small cloud: a regular tenant with one manager, a personal tenant with
// one member, and instances in both.
func newCloud() (*testlibDefunct.FakeCompute, *testlibDefunct.FakeIdentity) {
	compute := testlibDefunct.NewFakeCompute()
	compute.Flavors["f-m1"] = defunct.Flavor{ID: "f-m1", Name: "m1.small"}
	compute.Flavors["f-m2"] = defunct.Flavor{ID: "f-m2", Name: "m2.large"}

	identity := testlibDefunct.NewFakeIdentity()
	identity.AddTenant(defunct.Tenant{ID: "t-lab", Name: "research-lab"}, "TenantManager",
		defunct.User{ID: "u-alice", Name: "alice", Email: "alice@example.com"})
	identity.AddTenant(defunct.Tenant{ID: "t-pt", Name: "pt-4821"}, "Member",
		defunct.User{ID: "u-bob", Name: "bob", Email: "bob@example.com"})
	return compute, identity
}
