// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
	"github.com/gdcc/dataverse-cli-sdk/internal/cli/cmd"
)

var (
	version = "dev"
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := cli.NewApp(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cmd.NewRootCommand(a).ExecuteContext(ctx); err != nil {
		cmd.Report(a, err)
		stop()
		os.Exit(1)
	}
}
