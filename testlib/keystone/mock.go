// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package keystone

import (
	"context"

	"github.com/gophercloud/gophercloud/v2"
)

// Keystone stand-in that points every service at one test server.
type MockKeystoneAPI struct {
	Url             string
	EndpointLocator gophercloud.EndpointLocator
	// Error returned by Authenticate, if any.
	AuthErr error
	// Error returned by FindEndpoint, if any.
	EndpointErr error
}

func (m *MockKeystoneAPI) Authenticate(ctx context.Context) error {
	return m.AuthErr
}

func (m *MockKeystoneAPI) Client() *gophercloud.ProviderClient {
	return &gophercloud.ProviderClient{
		EndpointLocator: m.EndpointLocator,
	}
}

func (m *MockKeystoneAPI) FindEndpoint(availability, serviceType string) (string, error) {
	if m.EndpointErr != nil {
		return "", m.EndpointErr
	}
	return m.Url, nil
}

func (m *MockKeystoneAPI) Availability() string {
	return "public"
}
