// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/docker/go-units"

	"github.com/gdcc/dataverse-cli-sdk/internal/cli"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/directupload"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

func printResponse(a *cli.App, v any) {
	fmt.Fprintln(a.Out, utils.ToPrettyJSON(v))
}

// reportBatch prints a failed batch and what was left in storage. It returns
// false when err is not a batch error.
func reportBatch(a *cli.App, err error) bool {
	var batchErr *directupload.BatchError
	if !errors.As(err, &batchErr) {
		return false
	}
	printError(a.Err, fmt.Errorf("upload of %d file(s) failed, %d file(s) in error, %d object(s) left in storage",
		len(batchErr.Outcomes), len(batchErr.Failed()), len(batchErr.Orphans)))
	for _, e := range batchErr.Errors() {
		fmt.Fprintf(a.Err, "  * %s\n", e)
	}
	for _, sid := range batchErr.Orphans {
		printWarning(a.Err, "unregistered object left in storage: %s", sid)
	}
	return true
}

// totalSize sums the sizes of the paths that can be stat'ed; the others fail later.
func totalSize(paths []string) int64 {
	var total int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
	}
	return total
}

func humanSize(n int64) string {
	return units.BytesSize(float64(n))
}
