// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

// the root command is the entrypoint for the dvcli client
package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
)

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(a *cli.App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dvcli",
		Short:         "Dataverse command line client",
		Long:          "dvcli uploads files to Dataverse datasets, directly to object storage when the store allows it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.PersistentFlags().StringVar(&a.Env, "env", "", "profile from ~/.dvcli.ini to use")

	root.AddCommand(
		NewDatasetCommand(a),
		NewFileCommand(a),
		NewConfigCommand(a),
		NewVersionCommand(a),
	)
	return root
}

func printError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "Error: %s\n", err)
}

func printSuccess(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintln(w, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	color.New(color.FgYellow).Fprintln(w, fmt.Sprintf(format, args...))
}

// Report prints err the way commands expect it on the terminal. Batch errors
// get a summary line followed by one line per failure and per orphan.
func Report(a *cli.App, err error) {
	if reportBatch(a, err) {
		return
	}
	printError(a.Err, err)
}
