// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cobaltcore-dev/defunct/commands"
	"github.com/sapcc/go-api-declarations/bininfo"
	"github.com/sapcc/go-bits/httpext"
)

func main() {
	bininfo.HandleVersionArgument()
	wrap := httpext.WrapTransport(&http.DefaultTransport)
	wrap.SetOverrideUserAgent(bininfo.Component(), bininfo.VersionOr("rolling"))

	ctx := httpext.ContextWithSIGINT(context.Background(), 10*time.Second)
	root := commands.NewRootCommand(commands.DefaultEnv())
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("defunct failed", "error", err)
		os.Exit(1)
	}
}
