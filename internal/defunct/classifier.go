// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"fmt"
	"strings"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/sapcc/go-bits/regexpext"
)

// A named category of instances.
//
// An instance belongs to the category if every condition that is set holds.
// Negate inverts the result. A rule without conditions matches everything.
type CategoryRule struct {
	Name          string
	FlavorPrefix  string
	TenantPattern regexpext.BoundedRegexp
	Negate        bool

	// Match tenants the Directory considers personal.
	PersonalTenant bool
}

func RulesFromConfig(categories []conf.CategoryConfig) []CategoryRule {
	rules := make([]CategoryRule, 0, len(categories))
	for _, c := range categories {
		rules = append(rules, CategoryRule{
			Name:           c.Name,
			FlavorPrefix:   c.FlavorPrefix,
			TenantPattern:  c.TenantPattern,
			PersonalTenant: c.PersonalTenant,
			Negate:         c.Negate,
		})
	}
	return rules
}

// What is known about an instance for classification.
type Facts struct {
	Instance   Instance
	FlavorName string
	TenantName string
	// Whether the tenant is personal.
	Personal   bool
}

func (r CategoryRule) needsFlavor() bool { return r.FlavorPrefix != "" }
func (r CategoryRule) needsTenant() bool { return r.TenantPattern != "" || r.PersonalTenant }

func (r CategoryRule) Match(facts Facts) bool {
	match := true
	if r.needsFlavor() {
		match = match && strings.HasPrefix(facts.FlavorName, r.FlavorPrefix)
	}
	if r.needsTenant() {
		match = match && r.TenantPattern.MatchString(facts.TenantName)
	}
	if r.PersonalTenant {
		match = match && facts.Personal
	}
	return match != r.Negate
}

// Sorts instances into named categories.
type Classifier struct {
	directory *Directory
	rules     []CategoryRule
}

func NewClassifier(directory *Directory, rules []CategoryRule) *Classifier {
	return &Classifier{directory: directory, rules: rules}
}

// Names of all known categories, in configured order.
func (c *Classifier) Names() []string {
	names := make([]string, len(c.rules))
	for idx, rule := range c.rules {
		names[idx] = rule.Name
	}
	return names
}

// Pick the rules with the given names.
func (c *Classifier) Rules(names []string) ([]CategoryRule, error) {
	rules := make([]CategoryRule, 0, len(names))
	for _, name := range names {
		found := false
		for _, rule := range c.rules {
			if rule.Name == name {
				rules = append(rules, rule)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q, known categories are %s", name, strings.Join(c.Names(), ", "))
		}
	}
	return rules, nil
}

// Look up the facts the given rules depend on. Flavors and tenants are only
// fetched if some rule needs them.
func (c *Classifier) Facts(ctx context.Context, inst Instance, rules []CategoryRule) (Facts, error) {
	facts := Facts{Instance: inst}
	needsFlavor, needsTenant := false, false
	for _, rule := range rules {
		needsFlavor = needsFlavor || rule.needsFlavor()
		needsTenant = needsTenant || rule.needsTenant()
	}
	if needsFlavor {
		flavor, err := c.directory.Flavor(ctx, inst.FlavorID)
		if err != nil {
			return facts, err
		}
		facts.FlavorName = flavor.Name
	}
	if needsTenant {
		tenant, err := c.directory.Tenant(ctx, inst.TenantID)
		if err != nil {
			return facts, err
		}
		facts.TenantName = tenant.Name
		facts.Personal = tenant.Personal
	}
	return facts, nil
}

// Names of the categories among rules that the instance belongs to.
func (c *Classifier) Categories(ctx context.Context, inst Instance, rules []CategoryRule) ([]string, error) {
	facts, err := c.Facts(ctx, inst, rules)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, rule := range rules {
		if rule.Match(facts) {
			names = append(names, rule.Name)
		}
	}
	return names, nil
}
