// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"github.com/sapcc/go-bits/osext"
)

// Connection parameters for OpenStack, as given by the usual OS_* variables
// of the openstack cli.
type OpenStackConfig struct {
	// URL to the OpenStack Keystone v3 authentication endpoint (OS_AUTH_URL).
	OSAuthURL           string
	OSUsername          string
	OSPassword          string
	OSProjectName       string
	OSUserDomainName    string
	OSProjectDomainName string
	// Region of the service endpoints to use (OS_REGION_NAME).
	OSRegionName string
	// Availability of the service endpoints, such as "public", "internal",
	// or "admin" (OS_INTERFACE).
	Availability string
	// Client certificate settings for the connection to OpenStack.
	SSO SSOConfig
}

// Client certificate authentication for the OpenStack APIs.
// All fields are optional, without a certificate plain TLS is used.
type SSOConfig struct {
	// Path to the PEM client certificate (OS_CERT).
	CertFile string
	// Path to the PEM private key of the client certificate (OS_KEY).
	KeyFile string
	// Path to a PEM bundle of trusted CAs (OS_CACERT).
	CAFile string
	// Skip server certificate verification (OS_INSECURE).
	Insecure bool
}

// Environment variables that must be set for the openstack config.
var requiredOpenStackEnv = []string{
	"OS_AUTH_URL",
	"OS_USERNAME",
	"OS_PASSWORD",
	"OS_PROJECT_NAME",
	"OS_USER_DOMAIN_NAME",
	"OS_PROJECT_DOMAIN_NAME",
}

// Read the openstack config from the environment.
// Missing values are left empty and reported by Validate.
func NewOpenStackConfigFromEnv() OpenStackConfig {
	// Older openrc files only export OS_TENANT_NAME.
	projectName := osext.GetenvOrDefault("OS_PROJECT_NAME", osext.GetenvOrDefault("OS_TENANT_NAME", ""))
	return OpenStackConfig{
		OSAuthURL:           osext.GetenvOrDefault("OS_AUTH_URL", ""),
		OSUsername:          osext.GetenvOrDefault("OS_USERNAME", ""),
		OSPassword:          osext.GetenvOrDefault("OS_PASSWORD", ""),
		OSProjectName:       projectName,
		OSUserDomainName:    osext.GetenvOrDefault("OS_USER_DOMAIN_NAME", "Default"),
		OSProjectDomainName: osext.GetenvOrDefault("OS_PROJECT_DOMAIN_NAME", "Default"),
		OSRegionName:        osext.GetenvOrDefault("OS_REGION_NAME", ""),
		Availability:        osext.GetenvOrDefault("OS_INTERFACE", "public"),
		SSO: SSOConfig{
			CertFile: osext.GetenvOrDefault("OS_CERT", ""),
			KeyFile:  osext.GetenvOrDefault("OS_KEY", ""),
			CAFile:   osext.GetenvOrDefault("OS_CACERT", ""),
			Insecure: osext.GetenvBool("OS_INSECURE"),
		},
	}
}

// Return the names of the required variables that are not set.
func (c OpenStackConfig) missing() []string {
	values := map[string]string{
		"OS_AUTH_URL":            c.OSAuthURL,
		"OS_USERNAME":            c.OSUsername,
		"OS_PASSWORD":            c.OSPassword,
		"OS_PROJECT_NAME":        c.OSProjectName,
		"OS_USER_DOMAIN_NAME":    c.OSUserDomainName,
		"OS_PROJECT_DOMAIN_NAME": c.OSProjectDomainName,
	}
	var missing []string
	for _, key := range requiredOpenStackEnv {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
