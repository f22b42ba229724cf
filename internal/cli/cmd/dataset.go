// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/directupload"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/files"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

func NewDatasetCommand(a *cli.App) *cobra.Command {
	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "Work with datasets",
	}
	datasetCmd.AddCommand(NewDatasetUploadCommand(a))
	return datasetCmd
}

type uploadOptions struct {
	id       string
	direct   bool
	bodyFile string
	gen      bool
}

func NewDatasetUploadCommand(a *cli.App) *cobra.Command {
	var opts uploadOptions

	uploadCmd := &cobra.Command{
		Use:   "upload --id <pid|id> [paths...]",
		Short: "Upload files to a dataset",
		Long: `Upload files to a dataset.

With --direct the files are stored straight into the dataset's object store
through pre-signed URLs and registered afterwards, several files at once.
Without it a single file is sent through the Dataverse server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.gen {
				return generateUploadBody(a, opts.direct)
			}
			if opts.id == "" {
				return errors.New("--id is required")
			}
			if len(args) == 0 {
				return errors.New("at least one path is required")
			}

			conf, err := a.Config()
			if err != nil {
				return err
			}
			if opts.direct {
				return runDirectUpload(cmd.Context(), a, conf, opts, args)
			}
			if len(args) > 1 {
				return errors.New("native upload takes exactly one path, use --direct for several files")
			}
			return runNativeUpload(cmd.Context(), a, conf, opts, args[0])
		},
	}

	uploadCmd.Flags().StringVar(&opts.id, "id", "", "dataset persistent id (doi:...) or database id")
	uploadCmd.Flags().BoolVar(&opts.direct, "direct", false, "upload straight to object storage")
	uploadCmd.Flags().StringVar(&opts.bodyFile, "body", "", "JSON or YAML file with the registration body")
	uploadCmd.Flags().BoolVar(&opts.gen, "gen", false, "write an example body to "+utils.ExampleBodyFile+" and exit")
	return uploadCmd
}

func generateUploadBody(a *cli.App, direct bool) error {
	var body any = files.ExampleUploadBody()
	if direct {
		body = directupload.ExampleBody()
	}
	if err := utils.WriteBody(utils.ExampleBodyFile, body); err != nil {
		return err
	}
	printSuccess(a.Out, "Example body written to %s", utils.ExampleBodyFile)
	return nil
}

func runDirectUpload(ctx context.Context, a *cli.App, conf config.Config, opts uploadOptions, paths []string) error {
	id := files.ParseIdentifier(opts.id)
	if !id.IsPersistent() {
		return fmt.Errorf("direct upload needs a persistent id, got %q", opts.id)
	}

	bodies, err := readDirectBodies(opts.bodyFile, len(paths))
	if err != nil {
		return err
	}

	svc, err := directupload.NewDirectUploadService(ctx, conf)
	if err != nil {
		return err
	}

	total := totalSize(paths)
	color.New(color.FgBlue).Fprintf(a.Err, "Uploading %d file(s), %s to %s\n", len(paths), humanSize(total), id)
	bar := progress.NewBar(a.Err, "upload", total)

	fileList := make([]directupload.File, len(paths))
	for i, p := range paths {
		fileList[i] = directupload.File{Path: p, Sink: bar}
	}

	if len(paths) == 1 {
		resp, err := svc.DirectUpload(ctx, id.String(), fileList[0], bodies[0])
		bar.Done()
		if err != nil {
			return err
		}
		printResponse(a, resp)
		printSuccess(a.Err, "1 file registered")
		return nil
	}

	resp, err := svc.DirectUploadMultiple(ctx, id.String(), fileList, bodies)
	bar.Done()
	if err != nil {
		// the server may have accepted part of the batch
		if resp != nil {
			printResponse(a, resp)
		}
		return err
	}
	printResponse(a, resp)
	if resp.Data != nil {
		printSuccess(a.Err, "%d of %d files registered", resp.Data.Result.Added, resp.Data.Result.Total)
	}
	return nil
}

// readDirectBodies accepts either one body shared by every file or a list
// with one body per file.
func readDirectBodies(path string, n int) ([]directupload.Body, error) {
	bodies := make([]directupload.Body, n)
	if path == "" {
		return bodies, nil
	}

	var list []directupload.Body
	if err := utils.ReadBody(path, &list); err == nil {
		if len(list) != n {
			return nil, fmt.Errorf("%s holds %d bodies for %d files", path, len(list), n)
		}
		return list, nil
	}

	var shared directupload.Body
	if err := utils.ReadBody(path, &shared); err != nil {
		return nil, err
	}
	for i := range bodies {
		bodies[i] = shared
	}
	return bodies, nil
}

func runNativeUpload(ctx context.Context, a *cli.App, conf config.Config, opts uploadOptions, path string) error {
	body, err := readUploadBody(opts.bodyFile)
	if err != nil {
		return err
	}

	svc, err := files.NewFileService(ctx, conf)
	if err != nil {
		return err
	}

	bar := progress.NewBar(a.Err, "upload", totalSize([]string{path}))
	resp, err := svc.Upload(ctx, files.ParseIdentifier(opts.id), path, body, bar)
	bar.Done()
	if err != nil {
		return err
	}
	printResponse(a, resp)
	printSuccess(a.Err, "File uploaded")
	return nil
}

func readUploadBody(path string) (*files.UploadBody, error) {
	if path == "" {
		return nil, nil
	}
	var body files.UploadBody
	if err := utils.ReadBody(path, &body); err != nil {
		return nil, err
	}
	return &body, nil
}
