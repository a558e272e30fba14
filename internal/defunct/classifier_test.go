// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct_test

import (
	"strings"
	"testing"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/sapcc/go-bits/assert"
)

func TestCategoryRule_Match(t *testing.T) {
	rules := defunct.RulesFromConfig(conf.DefaultCategories())
	byName := make(map[string]defunct.CategoryRule)
	for _, rule := range rules {
		byName[rule.Name] = rule
	}

	tests := []struct {
		name     string
		facts    defunct.Facts
		expected []string
	}{
		{"m1 in regular tenant", defunct.Facts{FlavorName: "m1.small", TenantName: "research-lab"}, []string{"m1", "regular"}},
		{"m2 in personal tenant", defunct.Facts{FlavorName: "m2.large", TenantName: "pt-4821", Personal: true}, []string{"m2", "pt"}},
		{"other flavor", defunct.Facts{FlavorName: "c1.huge", TenantName: "research-lab"}, []string{"regular"}},
		// The personal flag decides, not the tenant name.
		{"personal tenant with another name", defunct.Facts{FlavorName: "m1.tiny", TenantName: "u-1234", Personal: true}, []string{"m1", "pt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matched []string
			for _, rule := range rules {
				if rule.Match(tt.facts) {
					matched = append(matched, rule.Name)
				}
			}
			assert.DeepEqual(t, "categories", matched, tt.expected)
		})
	}

	// A rule with both conditions needs both to hold.
	combined := defunct.CategoryRule{Name: "pt-m1", FlavorPrefix: "m1", TenantPattern: `pt-\d+`}
	if combined.Match(defunct.Facts{FlavorName: "m1.small", TenantName: "research-lab"}) {
		t.Error("expected combined rule not to match a regular tenant")
	}
	if !combined.Match(defunct.Facts{FlavorName: "m1.small", TenantName: "pt-1"}) {
		t.Error("expected combined rule to match an m1 instance in a personal tenant")
	}
	if !byName["regular"].Negate {
		t.Error("expected the regular category to be negated")
	}
}

func TestClassifier_Rules(t *testing.T) {
	compute, identity := newCloud()
	classifier := defunct.NewClassifier(newDirectory(compute, identity), defunct.RulesFromConfig(conf.DefaultCategories()))

	assert.DeepEqual(t, "names", classifier.Names(), []string{"m1", "m2", "pt", "regular"})

	rules, err := classifier.Rules([]string{"pt", "m1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assert.DeepEqual(t, "rule count", len(rules), 2)
	assert.DeepEqual(t, "first rule", rules[0].Name, "pt")

	_, err = classifier.Rules([]string{"gpu"})
	if err == nil || !strings.Contains(err.Error(), `unknown category "gpu"`) {
		t.Errorf("expected unknown category error, got %v", err)
	}
}

func TestClassifier_FactsOnlyFetchesWhatIsNeeded(t *testing.T) {
	compute, identity := newCloud()
	classifier := defunct.NewClassifier(newDirectory(compute, identity), defunct.RulesFromConfig(conf.DefaultCategories()))
	inst := defunct.Instance{ID: "i1", TenantID: "t-lab", FlavorID: "f-m1"}

	rules, err := classifier.Rules([]string{"m1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	facts, err := classifier.Facts(t.Context(), inst, rules)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assert.DeepEqual(t, "flavor name", facts.FlavorName, "m1.small")
	assert.DeepEqual(t, "tenant name", facts.TenantName, "")
	assert.DeepEqual(t, "tenant fetches", identity.Calls["GetTenant"], 0)

	rules, err = classifier.Rules([]string{"pt"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	categories, err := classifier.Categories(t.Context(), defunct.Instance{ID: "i2", TenantID: "t-pt", FlavorID: "f-m2"}, rules)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	assert.DeepEqual(t, "categories", categories, []string{"pt"})
	assert.DeepEqual(t, "flavor fetches", compute.Calls["GetFlavor"], 1)
}

func TestClassifier_FollowsConfiguredPersonalPattern(t *testing.T) {
	compute, identity := newCloud()
	identity.AddTenant(defunct.Tenant{ID: "t-u", Name: "u-1234"}, "Member",
		defunct.User{ID: "u-carol", Name: "carol", Email: "carol@example.com"})
	policy := conf.NewDefaultPolicyConfig()
	policy.PersonalTenantPattern = `u-\d+`
	dir := defunct.NewDirectory(compute, identity, policy, monitoring.Monitor{})
	classifier := defunct.NewClassifier(dir, defunct.RulesFromConfig(policy.Categories))

	rules, err := classifier.Rules([]string{"pt", "regular"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tests := []struct {
		tenantID string
		expected []string
	}{
		{"t-u", []string{"pt"}},
		// Not personal anymore under the configured pattern.
		{"t-pt", []string{"regular"}},
	}
	for _, tt := range tests {
		t.Run(tt.tenantID, func(t *testing.T) {
			inst := defunct.Instance{ID: "i-" + tt.tenantID, TenantID: tt.tenantID, FlavorID: "f-m1"}
			categories, err := classifier.Categories(t.Context(), inst, rules)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			assert.DeepEqual(t, "categories", categories, tt.expected)

			tenant, err := dir.Tenant(t.Context(), tt.tenantID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			wantRole := "TenantManager"
			if tt.expected[0] == "pt" {
				wantRole = "Member"
			}
			assert.DeepEqual(t, "contact role", dir.ContactRole(tenant), wantRole)
		})
	}
}
