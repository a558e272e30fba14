// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"github.com/sapcc/go-bits/osext"
	"github.com/sapcc/go-bits/regexpext"
)

// Configuration for the monitoring module.
type MonitoringConfig struct {
	// The labels to add to all metrics.
	Labels map[string]string `yaml:"labels"`
	// URL of a prometheus pushgateway to push the run metrics to.
	// If empty, metrics are not pushed.
	PushgatewayURL string `yaml:"pushgatewayURL"`
	// The job label used when pushing.
	PushJob string `yaml:"pushJob"`
}

func (c MonitoringConfig) withEnvOverrides() MonitoringConfig {
	c.PushgatewayURL = osext.GetenvOrDefault("DEFUNCT_PUSHGATEWAY_URL", c.PushgatewayURL)
	if c.PushJob == "" {
		c.PushJob = "defunct"
	}
	return c
}

// A named instance category.
//
// An instance belongs to the category if all given conditions hold. With
// negate set, the result is inverted. Categories are tags, an instance can
// belong to any number of them.
type CategoryConfig struct {
	// The name of the category, as selected on the command line.
	Name string `yaml:"name"`
	// Matches instances whose flavor name starts with this prefix.
	FlavorPrefix string `yaml:"flavorPrefix,omitempty"`
	// Matches instances whose tenant name matches this pattern.
	TenantPattern regexpext.BoundedRegexp `yaml:"tenantPattern,omitempty"`
	// Matches instances in personal tenants, as decided by
	// policy.personalTenantPattern.
	PersonalTenant bool `yaml:"personalTenant,omitempty"`
	// Invert the match.
	Negate bool `yaml:"negate,omitempty"`
}

// Policy deciding which instances are defunct and who is contacted.
type PolicyConfig struct {
	// Days an instance must have been stopped to be considered defunct.
	Days int `yaml:"days"`
	// Status filter for instances listed from a host.
	InstanceStatus string `yaml:"instanceStatus"`
	// Tenants with a name matching this pattern are personal tenants.
	PersonalTenantPattern regexpext.BoundedRegexp `yaml:"personalTenantPattern"`
	// The role whose holders manage a regular tenant.
	ManagerRole string `yaml:"managerRole"`
	// The role whose holders own a personal tenant.
	MemberRole string `yaml:"memberRole"`
	// Categories for the instance-info command.
	Categories []CategoryConfig `yaml:"categories"`
}

const (
	DefaultDays                  = 90
	DefaultInstanceStatus        = "SHUTOFF"
	DefaultPersonalTenantPattern = `pt-\d+`
	DefaultManagerRole           = "TenantManager"
	DefaultMemberRole            = "Member"
)

func NewDefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Days:                  DefaultDays,
		InstanceStatus:        DefaultInstanceStatus,
		PersonalTenantPattern: DefaultPersonalTenantPattern,
		ManagerRole:           DefaultManagerRole,
		MemberRole:            DefaultMemberRole,
		Categories:            DefaultCategories(),
	}
}

// The categories known without any configuration file.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Name: "m1", FlavorPrefix: "m1"},
		{Name: "m2", FlavorPrefix: "m2"},
		{Name: "pt", PersonalTenant: true},
		{Name: "regular", PersonalTenant: true, Negate: true},
	}
}
