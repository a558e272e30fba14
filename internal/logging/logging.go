// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"log/slog"

	"github.com/google/uuid"
)

// Tag the default logger with a fresh run id, so that log lines from
// concurrent runs (e.g. several hosts checked by cron) can be told apart.
// Returns the run id.
func StartRun(command string) string {
	runID := uuid.NewString()
	slog.SetDefault(slog.Default().With("run", runID, "command", command))
	return runID
}
