// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
)

func NewVersionCommand(a *cli.App) *cobra.Command {
	var short bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(a.Out, a.Build.Version)
				return
			}
			fmt.Fprintf(a.Out, "dvcli %s\n", a.Build.Version)
			fmt.Fprintf(a.Out, "Commit: %s\n", a.Build.Commit)
			fmt.Fprintf(a.Out, "Built: %s\n", a.Build.Date)
		},
	}
	versionCmd.Flags().BoolVarP(&short, "short", "s", false, "show only the version number")
	return versionCmd
}
