// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"os"

	"github.com/cobaltcore-dev/defunct/internal/conf"
	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/cobaltcore-dev/defunct/internal/keystone"
	"github.com/cobaltcore-dev/defunct/internal/monitoring"
	"github.com/cobaltcore-dev/defunct/internal/openstack"
	"github.com/cobaltcore-dev/defunct/internal/sso"
	"github.com/sapcc/go-bits/osext"
	"golang.org/x/term"
)

// Everything the commands take from the outside world.
type Env struct {
	// Receives the report.
	Stdout io.Writer
	// Receives logs.
	Stderr io.Writer
	// Connect to the compute and identity collaborators.
	Connect func(ctx context.Context, config conf.Config, mon monitoring.Monitor) (defunct.Compute, defunct.Identity, error)
	// Whether stdout is an interactive terminal.
	IsTerminal func() bool
}

// The environment of the real binary.
func DefaultEnv() Env {
	return Env{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Connect: ConnectOpenStack,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // file descriptors fit into int
		},
	}
}

// Whether the report should be colored.
func (e Env) colorEnabled() bool {
	if osext.GetenvOrDefault("NO_COLOR", "") != "" {
		return false
	}
	return e.IsTerminal != nil && e.IsTerminal()
}

// Authenticate against keystone and set up the nova and identity APIs.
func ConnectOpenStack(ctx context.Context, config conf.Config, mon monitoring.Monitor) (defunct.Compute, defunct.Identity, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	httpClient, err := sso.NewHTTPClient(config.OpenStack.SSO)
	if err != nil {
		return nil, nil, err
	}
	k := keystone.NewKeystoneAPIWithHTTPClient(config.OpenStack, httpClient)
	novaAPI := openstack.NewNovaAPI(mon, k)
	if err := novaAPI.Init(ctx); err != nil {
		return nil, nil, err
	}
	identityAPI := openstack.NewIdentityAPI(mon, k)
	if err := identityAPI.Init(ctx); err != nil {
		return nil, nil, err
	}
	return novaAPI, identityAPI, nil
}
