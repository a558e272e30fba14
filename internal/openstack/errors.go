// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package openstack

import (
	"context"
	"errors"
	"net/http"

	"github.com/cobaltcore-dev/defunct/internal/defunct"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/sapcc/go-bits/errext"
)

// Translate an error from gophercloud into the error types of the core.
//
//   - 404 means the entity does not exist.
//   - 401, 403 and 5xx mean the collaborator cannot serve us at all.
//   - Other status codes only affect the entity that was looked up.
//   - Anything without a status code is a transport problem.
func translateError(collaborator, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	unexpected, ok := errext.As[gophercloud.ErrUnexpectedResponseCode](err)
	if !ok {
		return defunct.UnavailableError{Collaborator: collaborator, Err: err}
	}
	switch {
	case unexpected.Actual == http.StatusNotFound:
		return defunct.NotFoundError{Kind: kind, ID: id}
	case unexpected.Actual == http.StatusUnauthorized,
		unexpected.Actual == http.StatusForbidden,
		unexpected.Actual >= http.StatusInternalServerError:
		return defunct.UnavailableError{Collaborator: collaborator, Err: err}
	default:
		return defunct.LookupError{Kind: kind, ID: id, Err: err}
	}
}
