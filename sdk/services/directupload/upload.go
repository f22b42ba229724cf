// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/gdcc/dataverse-cli-sdk/sdk/checksum"
	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/response"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/files"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

const orphanCleanupTimeout = 30 * time.Second

// DirectUpload stores one file through a ticket and registers it with /add.
func (s *DirectUploadService) DirectUpload(ctx context.Context, pid string, file File, body Body) (resp *response.Response[files.AddResult], err error) {
	batch := utils.NewBatchID()
	ctx, end := s.startSpan(ctx, "DirectUpload", attribute.String("pid", pid), attribute.String("batch", batch))
	defer func() { end(err) }()

	logger := s.log().With("batch", batch, "pid", pid)
	outcomes, bodies, err := s.transferAll(ctx, logger, pid, []File{file}, []Body{body})
	if err != nil {
		return nil, err
	}

	resp, err = s.RegisterFile(ctx, pid, bodies[0])
	if err != nil {
		return nil, s.abort(ctx, logger, outcomes, err)
	}
	logger.Info("file registered", "path", file.Path, "storage_identifier", outcomes[0].StorageIdentifier)
	return resp, nil
}

// DirectUploadMultiple transfers all files concurrently and, only if every one
// of them succeeded, registers them with a single /addFiles in file order.
// When the server accepts the call but refuses some files, the response is
// returned together with a *BatchError listing the refused ones.
func (s *DirectUploadService) DirectUploadMultiple(ctx context.Context, pid string, fileList []File, bodies []Body) (resp *response.Response[AddFilesResult], err error) {
	if len(fileList) != len(bodies) {
		return nil, fmt.Errorf("got %d files but %d registration bodies", len(fileList), len(bodies))
	}
	if len(fileList) == 0 {
		return nil, errors.New("no files to upload")
	}

	batch := utils.NewBatchID()
	ctx, end := s.startSpan(ctx, "DirectUploadMultiple",
		attribute.String("pid", pid), attribute.String("batch", batch), attribute.Int("files", len(fileList)))
	defer func() { end(err) }()

	logger := s.log().With("batch", batch, "pid", pid)
	outcomes, merged, err := s.transferAll(ctx, logger, pid, fileList, bodies)
	if err != nil {
		return nil, err
	}

	resp, err = s.RegisterFiles(ctx, pid, merged)
	if err != nil {
		return nil, s.abort(ctx, logger, outcomes, err)
	}
	if errs, rejected := checkAdded(outcomes, resp.Data); errs != nil {
		logger.Warn("server refused part of the batch", "refused", len(rejected), "files", len(merged))
		batchErr := newBatchError(outcomes, errs)
		batchErr.Orphans = s.handleOrphans(ctx, logger, rejected)
		return resp, batchErr
	}
	logger.Info("files registered", "count", len(merged))
	return resp, nil
}

// checkAdded looks for files the server refused inside an otherwise accepted
// /addFiles call. Refused outcomes are moved to Failed and returned so their
// objects can be treated as orphans. Outcomes missing from a non-empty file
// list count as refused; an unexplained shortfall with no file list only
// yields an error since nothing tells which objects were left behind.
func checkAdded(outcomes []Outcome, result *AddFilesResult) (*multierror.Error, []Outcome) {
	if result == nil {
		return nil, nil
	}

	bySID := make(map[string]int, len(outcomes))
	for i, o := range outcomes {
		bySID[o.StorageIdentifier] = i
	}

	var (
		errs     *multierror.Error
		rejected []Outcome
		seen     = make(map[string]bool, len(result.Files))
	)
	reject := func(i int, err error) {
		outcomes[i].Err = err
		outcomes[i].State = StateFailed
		rejected = append(rejected, outcomes[i])
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", outcomes[i].Path, err))
	}

	for _, f := range result.Files {
		seen[f.StorageIdentifier] = true
		if f.ErrorMessage == "" {
			continue
		}
		err := fmt.Errorf("%w: %s", ErrRegistrationRejected, f.ErrorMessage)
		if i, ok := bySID[f.StorageIdentifier]; ok {
			reject(i, err)
			continue
		}
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", f.StorageIdentifier, err))
	}

	if errs == nil && result.Result.Added >= result.Result.Total {
		return nil, nil
	}

	shortfall := fmt.Errorf("%w: server added %d of %d files", ErrRegistrationRejected, result.Result.Added, result.Result.Total)
	if len(result.Files) > 0 {
		for i, o := range outcomes {
			if !seen[o.StorageIdentifier] {
				reject(i, shortfall)
			}
		}
	}
	if errs == nil {
		errs = multierror.Append(errs, shortfall)
	}
	return errs, rejected
}

// transferAll runs one pipeline per file and waits for all of them. Bodies
// are returned merged and in input order. Any failure yields a *BatchError.
func (s *DirectUploadService) transferAll(ctx context.Context, logger *log.Logger, pid string, fileList []File, bodies []Body) ([]Outcome, []Body, error) {
	outcomes := make([]Outcome, len(fileList))
	merged := make([]Body, len(bodies))
	copy(merged, bodies)

	var g errgroup.Group
	if s.transfer.Concurrency > 0 {
		g.SetLimit(s.transfer.Concurrency)
	}
	for i := range fileList {
		g.Go(func() error {
			outcomes[i] = s.pipeline(ctx, logger, pid, i, fileList[i], &merged[i])
			return nil
		})
	}
	_ = g.Wait()

	var errs *multierror.Error
	for _, o := range outcomes {
		if !o.OK() {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", o.Path, o.Err))
		}
	}
	if errs != nil {
		return outcomes, nil, s.fail(ctx, logger, outcomes, errs)
	}
	return outcomes, merged, nil
}

// pipeline moves one file from Init to ReadyToRegister or Failed.
func (s *DirectUploadService) pipeline(ctx context.Context, logger *log.Logger, pid string, index int, f File, body *Body) (out Outcome) {
	out = Outcome{Index: index, Path: f.Path, State: StateInit}
	ctx, end := s.startSpan(ctx, "Pipeline", attribute.String("path", f.Path), attribute.Int("index", index))
	defer func() { end(out.Err) }()

	logger = logger.With("path", f.Path)
	fail := func(err error) Outcome {
		out.Err = err
		advance(logger, &out, StateFailed)
		logger.Error("transfer failed", "err", err)
		return out
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		return fail(err)
	}
	if !info.Mode().IsRegular() {
		return fail(errors.New("not a regular file"))
	}
	out.Size = info.Size()

	advance(logger, &out, StateTicketRequested)
	ticket, err := s.GetTicket(ctx, pid, out.Size)
	if err != nil {
		return fail(err)
	}

	if ticket.Kind() == Multipart {
		advance(logger, &out, StateRejected)
		return fail(s.uploadMultipart(ctx, f.Path, ticket, f.Sink))
	}

	advance(logger, &out, StateSinglePartUpload)
	sid, err := s.UploadObject(ctx, f.Path, ticket, f.Sink)
	if err != nil {
		return fail(err)
	}
	out.StorageIdentifier = sid
	out.objectURL = s.transfer.RewriteStorageURL(ticket.URL)

	sum, err := checksum.FromFile(f.Path)
	if err != nil {
		return fail(err)
	}
	out.Checksum = sum
	advance(logger, &out, StateChecksumComputed)

	body.FileName = filepath.Base(f.Path)
	body.StorageIdentifier = sid
	body.Checksum = sum
	if body.MimeType == "" {
		body.MimeType = detectMimeType(f.Path)
	}

	advance(logger, &out, StateReadyToRegister)
	return out
}

func advance(logger *log.Logger, out *Outcome, next State) {
	logger.Debug("transition", "from", out.State, "to", next, "size", out.Size)
	out.State = next
}

func detectMimeType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	name, _, _ := strings.Cut(mt.String(), ";")
	return name
}

// abort is fail for a registration error: every stored object is orphaned.
func (s *DirectUploadService) abort(ctx context.Context, logger *log.Logger, outcomes []Outcome, cause error) error {
	return s.fail(ctx, logger, outcomes, multierror.Append(nil, cause))
}

func (s *DirectUploadService) fail(ctx context.Context, logger *log.Logger, outcomes []Outcome, errs *multierror.Error) error {
	batchErr := newBatchError(outcomes, errs)
	batchErr.Orphans = s.handleOrphans(ctx, logger, outcomes)
	return batchErr
}

// handleOrphans applies the orphan policy and returns what is left in storage.
func (s *DirectUploadService) handleOrphans(ctx context.Context, logger *log.Logger, outcomes []Outcome) []string {
	var orphans []string
	for _, o := range outcomes {
		if o.StorageIdentifier == "" {
			continue
		}
		if s.transfer.OrphanPolicy == config.OrphanDelete && s.s3 != nil {
			// the caller's context may already be cancelled
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orphanCleanupTimeout)
			err := s.s3.DeleteObjectAt(dctx, o.objectURL)
			cancel()
			if err == nil {
				logger.Info("orphaned object deleted", "path", o.Path, "storage_identifier", o.StorageIdentifier)
				continue
			}
			logger.Warn("failed to delete orphaned object", "path", o.Path, "storage_identifier", o.StorageIdentifier, "err", err)
		} else {
			logger.Warn("uploaded object left unregistered", "path", o.Path, "storage_identifier", o.StorageIdentifier)
		}
		orphans = append(orphans, o.StorageIdentifier)
	}
	return orphans
}
