// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package defunct

import (
	"context"
	"time"

	"github.com/majewsky/gg/option"
)

// Decides whether a shut off instance has been unused long enough to be
// reported.
type ExpiryPolicy struct {
	// Days since the last stop after which an instance is expired.
	Days int
	// Clock used to evaluate the policy. Defaults to time.Now.
	Now func() time.Time
}

// Reject thresholds that cannot be evaluated. This is checked when the
// policy is built from user input, Expired itself does not check.
func ValidateThreshold(days int) error {
	if days < 0 {
		return InvalidThresholdError{Days: days}
	}
	return nil
}

// Instances stopped strictly before this point in time are expired.
func (p ExpiryPolicy) Cutoff() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().AddDate(0, 0, -p.Days)
}

// Check the latest lifecycle action of an instance against the policy.
// Only a stop older than the cutoff counts, a missing action never does.
func (p ExpiryPolicy) Expired(latest option.Option[LifecycleAction]) bool {
	return latest.IsSomeAnd(func(action LifecycleAction) bool {
		return action.Kind == ActionStop && action.StartTime.Before(p.Cutoff())
	})
}

// Fetch the latest lifecycle action of the instance and check it.
func (p ExpiryPolicy) IsExpired(ctx context.Context, compute Compute, inst Instance) (bool, error) {
	latest, err := compute.LatestAction(ctx, inst.ID)
	if err != nil {
		return false, err
	}
	return p.Expired(latest), nil
}
