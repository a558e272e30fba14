// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"errors"
	"fmt"

	"github.com/sapcc/go-bits/errext"
)

// Matches every NotFoundError with errors.Is.
var ErrNotFound = errors.New("not found")

// An entity (instance, tenant, user, flavor, role) does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// A collaborator could not be reached or refused our credentials.
// This aborts the whole run.
type UnavailableError struct {
	Collaborator string
	Err          error
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("%s is unavailable: %v", e.Collaborator, e.Err)
}

func (e UnavailableError) Unwrap() error {
	return e.Err
}

// Looking up a single entity failed for a reason other than it not existing
// or the collaborator being unavailable.
type LookupError struct {
	Kind string
	ID   string
	Err  error
}

func (e LookupError) Error() string {
	return fmt.Sprintf("cannot look up %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e LookupError) Unwrap() error {
	return e.Err
}

// The expiry threshold is not usable.
type InvalidThresholdError struct {
	Days int
}

func (e InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid threshold: days must not be negative, got %d", e.Days)
}

// A tenant resolved to zero manager contacts.
type NoManagersError struct {
	TenantID string
}

func (e NoManagersError) Error() string {
	return fmt.Sprintf("Tenant %s has no managers!", e.TenantID)
}

// An instance was left out of a selection because a lookup for it failed.
type SkipError struct {
	InstanceID string
	Err        error
}

func (e SkipError) Error() string {
	return fmt.Sprintf("skipping instance %s: %v", e.InstanceID, e.Err)
}

func (e SkipError) Unwrap() error {
	return e.Err
}

// Report whether err must abort the run instead of being downgraded to a
// warning about a single entity.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errext.IsOfType[UnavailableError](err) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
