// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/sapcc/go-api-declarations/bininfo"
	"github.com/spf13/cobra"
)

// Flags shared by all reporting commands.
type options struct {
	configPath string
	output     string
	days       int
	status     string
}

// Build the command tree of the defunct binary.
func NewRootCommand(env Env) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "defunct",
		Short: "Report long shut off OpenStack instances and who to contact about them",
		Long: "defunct finds compute instances that have been shut off for a long time and " +
			"prints them grouped by tenant, together with the tenant managers to contact. " +
			"Credentials are read from the usual OS_* environment variables.",
		Version:       bininfo.VersionOr("rolling"),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help() //nolint:errcheck
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to an optional yaml config file")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text or table")
	flags.IntVarP(&opts.days, "days", "d", conf.DefaultDays, "number of days before an instance is considered defunct")
	flags.StringVar(&opts.status, "status", conf.DefaultInstanceStatus, "status of the instances listed from hosts")

	addCheckDefunctCommand(root, env, opts)
	addFindWastedCommand(root, env, opts)
	addInstanceInfoCommand(root, env, opts)
	addVersionCommand(root, env)
	return root
}

func addVersionCommand(parent *cobra.Command, env Env) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of this binary.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s version %s (commit %s, built %s)\n",
				bininfo.Component(), bininfo.VersionOr("rolling"),
				bininfo.CommitOr("unknown"), bininfo.BuildDateOr("unknown"))
		},
	}
	parent.AddCommand(cmd)
}
