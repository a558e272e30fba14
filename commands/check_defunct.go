// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func addCheckDefunctCommand(parent *cobra.Command, env Env, opts *options) {
	cmd := &cobra.Command{
		Use:   "check-defunct UUID...",
		Short: "Report which of the given instances have been stopped for too long.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRun(cmd, env, opts)
			if err != nil {
				return err
			}
			return r.checkDefunct(args)
		},
	}
	parent.AddCommand(cmd)
}

func (r *run) checkDefunct(ids []string) error {
	var instances []defunct.Instance
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			r.notice("Invalid instance UUID %s", id)
			continue
		}
		if seen[parsed] {
			continue
		}
		seen[parsed] = true
		inst, err := r.compute.GetInstance(r.ctx, id)
		switch {
		case errors.Is(err, defunct.ErrNotFound):
			r.notice("Instance %s not found", id)
			continue
		case defunct.IsFatal(err):
			return err
		case err != nil:
			r.notice("Warning: %s", defunct.SkipError{InstanceID: id, Err: err}.Error())
			continue
		}
		instances = append(instances, inst)
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
