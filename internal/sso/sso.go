// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package sso

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/cobaltcore-dev/defunct/internal/conf"
)

// Custom HTTP round tripper that logs each request.
type requestLogger struct {
	T http.RoundTripper
}

// RoundTrip logs the request before making it.
func (lrt *requestLogger) RoundTrip(req *http.Request) (*http.Response, error) {
	slog.Debug("making http request", "method", req.Method, "url", req.URL.String())
	return lrt.T.RoundTrip(req)
}

// Create a new HTTP client for the OpenStack APIs with the given client
// certificate settings and debug logging for each request.
func NewHTTPClient(config conf.SSOConfig) (*http.Client, error) {
	if config.CertFile == "" && config.CAFile == "" && !config.Insecure {
		slog.Debug("making http requests without SSO")
		return &http.Client{Transport: &requestLogger{T: http.DefaultTransport}}, nil
	}
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		// Mirrors OS_INSECURE of the openstack cli.
		//nolint:gosec
		InsecureSkipVerify: config.Insecure,
	}
	if config.CertFile != "" {
		// If we have a public key, we also need a private key.
		if config.KeyFile == "" {
			return nil, errors.New("missing cert key for SSO, set OS_KEY")
		}
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	if config.CAFile != "" {
		pem, err := os.ReadFile(config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA bundle %s", config.CAFile)
		}
		tlsConfig.RootCAs = pool
	}
	slog.Debug("making http requests with SSO", "cert", config.CertFile, "ca", config.CAFile)
	return &http.Client{Transport: &requestLogger{T: &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsConfig,
	}}}, nil
}
