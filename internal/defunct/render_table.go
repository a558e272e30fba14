// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render the report as a table with one row per instance.
// Warnings are listed below the table.
func (r Renderer) RenderTable(ctx context.Context, report *Report) (string, error) {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Tenant", "Managers", "Instance", "UUID", "Flavor"})
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tenant", AutoMerge: true},
		{Name: "Managers", AutoMerge: true},
	})
	var warnings []string
	for _, entry := range report.Tenants.All() {
		managers := make([]string, 0, len(entry.Managers))
		for _, manager := range entry.Managers {
			managers = append(managers, managerEmail(manager))
		}
		if len(managers) == 0 {
			managers = append(managers, "none")
		}
		for _, warning := range entry.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", entry.Tenant.Name, warning.Error()))
		}
		for _, inst := range entry.Instances {
			flavor, err := r.flavorName(ctx, inst)
			if err != nil {
				return "", err
			}
			tw.AppendRow(table.Row{
				entry.Tenant.Name,
				strings.Join(managers, "\n"),
				inst.Name,
				inst.ID,
				flavor,
			})
		}
	}
	tw.AppendFooter(table.Row{"", "", "Total", report.InstanceCount(), ""})

	var sb strings.Builder
	sb.WriteString(tw.Render())
	sb.WriteString("\n")
	for _, warning := range warnings {
		fmt.Fprintf(&sb, "%s\n", r.warn("Warning: %s", warning))
	}
	return sb.String(), nil
}
