// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gdcc/dataverse-cli-sdk/sdk/request"
	"github.com/gdcc/dataverse-cli-sdk/sdk/response"
)

const ticketPath = "/api/datasets/:persistentId/uploadurls"

// GetTicket asks the server where an object of the given size may be stored.
func (s *DirectUploadService) GetTicket(ctx context.Context, pid string, size int64) (ticket *Ticket, err error) {
	ctx, end := s.startSpan(ctx, "GetTicket", attribute.String("pid", pid), attribute.Int64("size", size))
	defer func() { end(err) }()

	url := s.http.BuildURL(ticketPath, map[string]string{
		"persistentId": pid,
		"size":         strconv.FormatInt(size, 10),
	})
	body, _, err := s.http.Do(ctx, http.MethodGet, url, request.Plain())
	resp, err := response.Evaluate[Ticket](body, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload ticket: %w", err)
	}
	if resp.Data == nil {
		return nil, errors.New("upload ticket response carries no data")
	}

	s.log().Debug("ticket received", "pid", pid, "size", size, "kind", resp.Data.Kind(), "storage_identifier", resp.Data.StorageIdentifier)
	return resp.Data, nil
}
