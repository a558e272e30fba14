// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sapcc/go-bits/errext"
)

type Mode string

const (
	// Keep the instances that are expired.
	ModeFilter Mode = "filter"
	// Sort the instances into categories.
	ModeCategorize Mode = "categorize"
)

// The key under which filtered instances are grouped by Select.
const FilterGroup = "expired"

// Picks the instances that go into a report.
type Selector struct {
	Directory  *Directory
	Policy     ExpiryPolicy
	Classifier *Classifier
}

// Keep the instances that are expired under the policy, in input order.
//
// Instances whose lifecycle cannot be looked up are skipped and returned as
// warnings. The error is only set if the run must be aborted.
func (s Selector) Filter(ctx context.Context, instances []Instance) ([]Instance, errext.ErrorSet, error) {
	var warnings errext.ErrorSet
	var expired []Instance
	s.Directory.Monitor.Scanned(len(instances))
	for _, inst := range instances {
		ok, err := s.Policy.IsExpired(ctx, s.Directory.Compute, inst)
		if IsFatal(err) {
			return nil, nil, err
		}
		if err != nil {
			warnings.Add(s.skip(inst, "action", err))
			continue
		}
		if ok {
			expired = append(expired, inst)
		}
	}
	s.Directory.Monitor.Selected(string(ModeFilter), len(expired))
	return expired, warnings, nil
}

// Sort the instances into the named categories.
//
// Categories are tags: an instance is listed under every category it
// matches, and categories without any instance are left out. Instances keep
// their input order within a category.
func (s Selector) Categorize(ctx context.Context, instances []Instance, names []string) (*OrderedMap[string, []Instance], errext.ErrorSet, error) {
	rules, err := s.Classifier.Rules(names)
	if err != nil {
		return nil, nil, err
	}
	var warnings errext.ErrorSet
	groups := NewOrderedMap[string, []Instance]()
	s.Directory.Monitor.Scanned(len(instances))
	for _, inst := range instances {
		categories, err := s.Classifier.Categories(ctx, inst, rules)
		if IsFatal(err) {
			return nil, nil, err
		}
		if err != nil {
			warnings.Add(s.skip(inst, "classification", err))
			continue
		}
		for _, name := range categories {
			members, _ := groups.Get(name)
			groups.Set(name, append(members, inst))
		}
		if len(categories) > 0 {
			s.Directory.Monitor.Selected(string(ModeCategorize), 1)
		}
	}
	return groups, warnings, nil
}

// Select instances with the given mode. In filter mode, the result has a
// single group named FilterGroup, if anything is expired.
func (s Selector) Select(ctx context.Context, instances []Instance, mode Mode, categories []string) (*OrderedMap[string, []Instance], errext.ErrorSet, error) {
	switch mode {
	case ModeFilter:
		expired, warnings, err := s.Filter(ctx, instances)
		if err != nil {
			return nil, nil, err
		}
		groups := NewOrderedMap[string, []Instance]()
		if len(expired) > 0 {
			groups.Set(FilterGroup, expired)
		}
		return groups, warnings, nil
	case ModeCategorize:
		return s.Categorize(ctx, instances, categories)
	default:
		return nil, nil, fmt.Errorf("unknown selection mode %q", mode)
	}
}

func (s Selector) skip(inst Instance, reason string, err error) error {
	slog.Warn("skipping instance", "instance", inst.ID, "reason", reason, "error", err)
	s.Directory.Monitor.Skipped(reason)
	return SkipError{InstanceID: inst.ID, Err: err}
}
