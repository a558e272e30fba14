// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/cobra"
)

func addFindWastedCommand(parent *cobra.Command, env Env, opts *options) {
	cmd := &cobra.Command{
		Use:   "find-wasted HOST...",
		Short: "Report instances on the given hosts that have been stopped for too long.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRun(cmd, env, opts)
			if err != nil {
				return err
			}
			return r.findWasted(args)
		},
	}
	parent.AddCommand(cmd)
}

func (r *run) findWasted(hosts []string) error {
	instances, err := r.hostInstances(hosts)
	if err != nil {
		return err
	}
	expired, warnings, err := r.selector.Filter(r.ctx, instances)
	if err != nil {
		return err
	}
	r.skipped(warnings)
	if err := r.report(expired); err != nil {
		return err
	}
	return r.finish()
}
