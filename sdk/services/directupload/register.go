// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gdcc/dataverse-cli-sdk/sdk/request"
	"github.com/gdcc/dataverse-cli-sdk/sdk/response"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/files"
)

const (
	registerPath      = "/api/datasets/:persistentId/add"
	registerBatchPath = "/api/datasets/:persistentId/addFiles"
)

// RegisterFile attaches one stored object to the dataset.
func (s *DirectUploadService) RegisterFile(ctx context.Context, pid string, body Body) (resp *response.Response[files.AddResult], err error) {
	ctx, end := s.startSpan(ctx, "RegisterFile", attribute.String("pid", pid))
	defer func() { end(err) }()

	return register[files.AddResult](ctx, s, registerPath, pid, body)
}

// RegisterFiles attaches several stored objects in one request, in the given order.
func (s *DirectUploadService) RegisterFiles(ctx context.Context, pid string, bodies []Body) (resp *response.Response[AddFilesResult], err error) {
	ctx, end := s.startSpan(ctx, "RegisterFiles", attribute.String("pid", pid), attribute.Int("files", len(bodies)))
	defer func() { end(err) }()

	return register[AddFilesResult](ctx, s, registerBatchPath, pid, bodies)
}

func register[T any](ctx context.Context, s *DirectUploadService, path, pid string, payload any) (*response.Response[T], error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonData: %w", err)
	}

	url := s.http.BuildURL(path, map[string]string{"persistentId": pid})
	form := request.Multipart(map[string]string{"jsonData": string(jsonData)}, nil)

	b, _, err := s.http.Do(ctx, http.MethodPost, url, form)
	resp, err := response.Evaluate[T](b, err)
	if err != nil {
		return nil, fmt.Errorf("failed to register files: %w", err)
	}
	return resp, nil
}
