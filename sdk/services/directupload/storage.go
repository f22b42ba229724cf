// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
	"github.com/gdcc/dataverse-cli-sdk/sdk/request"
)

const (
	tagHeader = "x-amz-tagging"
	tempTag   = "dv-state=temp"
)

// UploadObject stores the file at the location named by the ticket and returns
// the ticket's storage identifier.
func (s *DirectUploadService) UploadObject(ctx context.Context, path string, ticket *Ticket, sink progress.Sink) (sid string, err error) {
	ctx, end := s.startSpan(ctx, "UploadObject", attribute.String("path", path), attribute.String("kind", ticket.Kind().String()))
	defer func() { end(err) }()

	if ticket.Kind() == Multipart {
		return "", s.uploadMultipart(ctx, path, ticket, sink)
	}

	header := http.Header{}
	header.Set(tagHeader, tempTag)

	target := s.transfer.RewriteStorageURL(ticket.URL)
	if _, _, err := s.storage.Do(ctx, http.MethodPut, target, request.File(path, sink), header); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", path, err)
	}
	return ticket.StorageIdentifier, nil
}

// uploadMultipart would PUT each part to ticket.URLs and finish with
// ticket.Complete, or call ticket.Abort on failure.
func (s *DirectUploadService) uploadMultipart(_ context.Context, path string, ticket *Ticket, _ progress.Sink) error {
	s.log().Debug("multipart ticket rejected", "path", path, "parts", len(ticket.URLs), "part_size", ticket.PartSize)
	return fmt.Errorf("%w (%d parts requested)", ErrMultipartUnsupported, len(ticket.URLs))
}
