// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/logging"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/sapcc/go-bits/errext"
	"github.com/spf13/cobra"
)

// State of a single reporting run.
//
// Output is collected in memory and only written by finish, so that a fatal
// error leaves stdout empty.
type run struct {
	ctx        context.Context
	env        Env
	config     conf.Config
	output     string
	registry   *monitoring.Registry
	compute    defunct.Compute
	selector   defunct.Selector
	aggregator defunct.Aggregator
	renderer   defunct.Renderer
	out        strings.Builder
}

// Prepare a run: load and check the config, then connect.
// Input is checked before anything is sent to OpenStack.
func newRun(cmd *cobra.Command, env Env, opts *options) (*run, error) {
	if opts.output != "text" && opts.output != "table" {
		return nil, fmt.Errorf("invalid output format %q, must be text or table", opts.output)
	}
	config, err := conf.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("days") {
		config.Policy.Days = opts.days
	}
	if cmd.Flags().Changed("status") {
		config.Policy.InstanceStatus = opts.status
	}
	if err := defunct.ValidateThreshold(config.Policy.Days); err != nil {
		return nil, err
	}
	if err := config.ValidatePolicy(); err != nil {
		return nil, err
	}

	config.Logging.SetDefaultLogger(env.Stderr)
	runID := logging.StartRun(cmd.Name())
	slog.Debug("starting run", "id", runID, "days", config.Policy.Days, "status", config.Policy.InstanceStatus)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	registry := monitoring.NewRegistry(config.Monitoring)
	mon := monitoring.NewMonitor(registry)
	compute, identity, err := env.Connect(ctx, config, mon)
	if err != nil {
		return nil, err
	}

	directory := defunct.NewDirectory(compute, identity, config.Policy, mon)
	return &run{
		ctx:      ctx,
		env:      env,
		config:   config,
		output:   opts.output,
		registry: registry,
		compute:  compute,
		selector: defunct.Selector{
			Directory:  directory,
			Policy:     defunct.ExpiryPolicy{Days: config.Policy.Days},
			Classifier: defunct.NewClassifier(directory, defunct.RulesFromConfig(config.Policy.Categories)),
		},
		aggregator: defunct.Aggregator{Directory: directory},
		renderer:   defunct.Renderer{Directory: directory, Color: env.colorEnabled()},
	}, nil
}

// Add a line to the output.
func (r *run) notice(format string, args ...any) {
	fmt.Fprintf(&r.out, format+"\n", args...)
}

// Add a notice for every instance that was skipped.
func (r *run) skipped(warnings errext.ErrorSet) {
	for _, warning := range warnings {
		r.notice("Warning: %s", warning.Error())
	}
}

// List the instances on all hosts.
func (r *run) hostInstances(hosts []string) ([]defunct.Instance, error) {
	var instances []defunct.Instance
	for _, host := range uniqueArgs(hosts) {
		found, err := r.compute.ListInstancesByHost(r.ctx, host, r.config.Policy.InstanceStatus)
		if err != nil {
			return nil, err
		}
		instances = append(instances, found...)
	}
	return instances, nil
}

// Drop repeated arguments, keeping the first occurrence.
func uniqueArgs(args []string) []string {
	result := make([]string, 0, len(args))
	for _, arg := range args {
		if !slices.Contains(result, arg) {
			result = append(result, arg)
		}
	}
	return result
}

// Aggregate the instances and add the rendered report to the output.
func (r *run) report(instances []defunct.Instance) error {
	report, err := r.aggregator.Aggregate(r.ctx, instances)
	if err != nil {
		return err
	}
	text, err := r.render(report)
	if err != nil {
		return err
	}
	r.out.WriteString(text)
	return nil
}

func (r *run) render(report *defunct.Report) (string, error) {
	if r.output == "table" {
		return r.renderer.RenderTable(r.ctx, report)
	}
	return r.renderer.RenderText(r.ctx, report)
}

// Aggregate each group separately and add the reports to the output,
// sorted by category name.
func (r *run) reportCategories(groups *defunct.OrderedMap[string, []defunct.Instance]) error {
	reports := defunct.NewOrderedMap[string, *defunct.Report]()
	for name, instances := range groups.All() {
		report, err := r.aggregator.Aggregate(r.ctx, instances)
		if err != nil {
			return err
		}
		reports.Set(name, report)
	}
	if r.output == "text" {
		text, err := r.renderer.RenderCategories(r.ctx, reports)
		if err != nil {
			return err
		}
		r.out.WriteString(text)
		return nil
	}
	for _, name := range defunct.SortedKeys(reports) {
		report, _ := reports.Get(name)
		text, err := r.renderer.RenderTable(r.ctx, report)
		if err != nil {
			return err
		}
		r.notice("Category %s:", name)
		r.out.WriteString(text)
	}
	return nil
}

// Write the output and push the metrics of this run.
func (r *run) finish() error {
	if _, err := fmt.Fprint(r.env.Stdout, r.out.String()); err != nil {
		return err
	}
	if err := r.registry.Push(r.ctx); err != nil {
		// The report is out already, a missing metric is not worth failing for.
		slog.Warn("cannot push metrics", "error", err)
	}
	return nil
}
