// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sapcc/go-bits/errext"
)

// Check the policy part of the config.
//
// This needs no credentials and is done before anything else, so that
// invalid input is rejected before any OpenStack call.
func (c Config) ValidatePolicy() error {
	var errs errext.ErrorSet
	if c.Policy.Days < 0 {
		errs.Addf("policy.days must not be negative, got %d", c.Policy.Days)
	}
	if c.Policy.InstanceStatus == "" {
		errs.Addf("policy.instanceStatus must not be empty")
	}
	if c.Policy.ManagerRole == "" || c.Policy.MemberRole == "" {
		errs.Addf("policy.managerRole and policy.memberRole must not be empty")
	}
	if _, err := c.Policy.PersonalTenantPattern.Regexp(); err != nil {
		errs.Addf("policy.personalTenantPattern is invalid: %w", err)
	}
	seen := make(map[string]bool)
	for idx, category := range c.Policy.Categories {
		switch {
		case category.Name == "":
			errs.Addf("policy.categories[%d] has no name", idx)
		case seen[category.Name]:
			errs.Addf("policy.categories has duplicate name %q", category.Name)
		}
		seen[category.Name] = true
		if category.FlavorPrefix == "" && category.TenantPattern == "" && !category.PersonalTenant {
			errs.Addf("category %q needs a flavorPrefix, a tenantPattern or personalTenant", category.Name)
		}
		if _, err := category.TenantPattern.Regexp(); err != nil {
			errs.Addf("category %q has an invalid tenantPattern: %w", category.Name, err)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errors.New(errs.Join(", "))
}

// Check the full configuration, including the OpenStack credentials.
func (c Config) Validate() error {
	if err := c.ValidatePolicy(); err != nil {
		return err
	}
	if missing := c.OpenStack.missing(); len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	// Check the keystone URL.
	if !strings.Contains(c.OpenStack.OSAuthURL, "/v3") {
		return fmt.Errorf("expected v3 Keystone URL, but got %s", c.OpenStack.OSAuthURL)
	}
	// OpenStack urls should end without a slash.
	if strings.HasSuffix(c.OpenStack.OSAuthURL, "/") {
		return fmt.Errorf("openstack url %s should not end with a slash", c.OpenStack.OSAuthURL)
	}
	// Check that the service availability is valid.
	validAvailabilities := []string{"public", "internal", "admin"}
	if !slices.Contains(validAvailabilities, c.OpenStack.Availability) {
		return fmt.Errorf(
			"invalid service availability %s, must be one of %v",
			c.OpenStack.Availability, validAvailabilities,
		)
	}
	return nil
}
