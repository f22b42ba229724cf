// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/files"
)

func NewFileCommand(a *cli.App) *cobra.Command {
	fileCmd := &cobra.Command{
		Use:   "file",
		Short: "Work with single files of a dataset",
	}
	fileCmd.AddCommand(NewFileReplaceCommand(a))
	return fileCmd
}

func NewFileReplaceCommand(a *cli.App) *cobra.Command {
	var (
		id       string
		bodyFile string
		force    bool
	)

	replaceCmd := &cobra.Command{
		Use:   "replace --id <file id> <path>",
		Short: "Replace the content of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errors.New("--id is required")
			}
			body, err := readUploadBody(bodyFile)
			if err != nil {
				return err
			}
			if force {
				if body == nil {
					body = &files.UploadBody{}
				}
				body.ForceReplace = &force
			}

			conf, err := a.Config()
			if err != nil {
				return err
			}
			svc, err := files.NewFileService(cmd.Context(), conf)
			if err != nil {
				return err
			}

			bar := progress.NewBar(a.Err, "replace", totalSize(args))
			resp, err := svc.Replace(cmd.Context(), id, args[0], body, bar)
			bar.Done()
			if err != nil {
				return err
			}
			printResponse(a, resp)
			printSuccess(a.Err, "File replaced")
			return nil
		},
	}

	replaceCmd.Flags().StringVar(&id, "id", "", "database id of the file to replace")
	replaceCmd.Flags().StringVar(&bodyFile, "body", "", "JSON or YAML file with the replace body")
	replaceCmd.Flags().BoolVar(&force, "force", false, "replace even if the content type differs")
	return replaceCmd
}
