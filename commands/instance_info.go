// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"slices"

	"github.com/spf13/cobra"
)

type instanceInfoOptions struct {
	m1            bool
	pt            bool
	categories    []string
	allCategories bool
}

// The category names requested on the command line, deduplicated.
func (o instanceInfoOptions) names(all []string) []string {
	if o.allCategories {
		return all
	}
	var names []string
	if o.m1 {
		names = append(names, "m1")
	}
	if o.pt {
		names = append(names, "pt")
	}
	for _, name := range o.categories {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func addInstanceInfoCommand(parent *cobra.Command, env Env, opts *options) {
	infoOpts := &instanceInfoOptions{}
	cmd := &cobra.Command{
		Use:   "instance-info HOST...",
		Short: "List the stopped instances on the given hosts with their tenant managers.",
		Long: "List the stopped instances on the given hosts with their tenant managers. " +
			"The instances are not filtered by age. With category flags, the instances " +
			"are sorted into the requested categories and one report is printed per category.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRun(cmd, env, opts)
			if err != nil {
				return err
			}
			return r.instanceInfo(args, *infoOpts)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&infoOpts.m1, "m1", false, "only report instances with an m1 flavor")
	flags.BoolVar(&infoOpts.pt, "pt", false, "only report instances in personal tenants")
	flags.StringSliceVar(&infoOpts.categories, "category", nil, "only report instances in this category (repeatable)")
	flags.BoolVar(&infoOpts.allCategories, "all-categories", false, "report all configured categories")
	cmd.MarkFlagsMutuallyExclusive("all-categories", "category")
	parent.AddCommand(cmd)
}

func (r *run) instanceInfo(hosts []string, opts instanceInfoOptions) error {
	names := opts.names(r.selector.Classifier.Names())
	// Unknown category names are rejected before any host is queried.
	if _, err := r.selector.Classifier.Rules(names); err != nil {
		return err
	}

	instances, err := r.hostInstances(hosts)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		if err := r.report(instances); err != nil {
			return err
		}
		return r.finish()
	}

	groups, warnings, err := r.selector.Categorize(r.ctx, instances, names)
	if err != nil {
		return err
	}
	r.skipped(warnings)
	if len(names) == 1 {
		members, _ := groups.Get(names[0])
		if err := r.report(members); err != nil {
			return err
		}
		return r.finish()
	}
	if err := r.reportCategories(groups); err != nil {
		return err
	}
	return r.finish()
}
