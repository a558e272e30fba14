// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Turns reports into text for the operator.
//
// Flavor names are resolved while rendering. All output is built in memory,
// so a fatal error leaves nothing half written.
type Renderer struct {
	Directory *Directory
	// Highlight warnings with terminal colors.
	Color bool
}

func (r Renderer) warn(format string, args ...any) string {
	c := color.New(color.FgYellow, color.Bold)
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprintf(format, args...)
}

// Render the report in the classic text format, tenants in report order.
func (r Renderer) RenderText(ctx context.Context, report *Report) (string, error) {
	var sb strings.Builder
	if err := r.writeText(ctx, &sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Render one report per category, categories sorted by name.
func (r Renderer) RenderCategories(ctx context.Context, reports *OrderedMap[string, *Report]) (string, error) {
	var sb strings.Builder
	for _, name := range SortedKeys(reports) {
		report, _ := reports.Get(name)
		fmt.Fprintf(&sb, "Category %s:\n", name)
		if err := r.writeText(ctx, &sb, report); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (r Renderer) writeText(ctx context.Context, sb *strings.Builder, report *Report) error {
	for _, entry := range report.Tenants.All() {
		fmt.Fprintf(sb, "Tenant %s:\n", entry.Tenant.Name)
		for _, warning := range entry.Warnings {
			fmt.Fprintf(sb, "  %s\n", r.warn("Warning: %s", warning.Error()))
		}
		sb.WriteString("  Managers:\n")
		if len(entry.Managers) == 0 {
			fmt.Fprintf(sb, "    %s\n", r.warn("No managers found!"))
		}
		for _, manager := range entry.Managers {
			fmt.Fprintf(sb, "    Manager email: %s\n", managerEmail(manager))
		}
		sb.WriteString("  Instances:\n")
		for _, inst := range entry.Instances {
			flavor, err := r.flavorName(ctx, inst)
			if err != nil {
				return err
			}
			fmt.Fprintf(sb, "    %s (uuid %s, flavor %s)\n", inst.Name, inst.ID, flavor)
		}
	}
	return nil
}

// Resolve the flavor name for display. Failed lookups are shown in place of
// the name, only fatal errors are returned.
func (r Renderer) flavorName(ctx context.Context, inst Instance) (string, error) {
	flavor, err := r.Directory.Flavor(ctx, inst.FlavorID)
	if IsFatal(err) {
		return "", err
	}
	if err != nil {
		return r.warn("unknown (%s)", err.Error()), nil
	}
	return flavor.Name, nil
}

func managerEmail(user User) string {
	if user.Email == "" {
		return fmt.Sprintf("<none> (user %s)", user.Name)
	}
	return user.Email
}
