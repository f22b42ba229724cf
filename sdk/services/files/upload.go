// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
	"github.com/gdcc/dataverse-cli-sdk/sdk/request"
	"github.com/gdcc/dataverse-cli-sdk/sdk/response"
)

// Upload sends a local file through the API server into a dataset.
func (s *FileService) Upload(ctx context.Context, id Identifier, path string, body *UploadBody, sink progress.Sink) (resp *response.Response[AddResult], err error) {
	ctx, end := s.startSpan(ctx, "Upload", attribute.String("dataset", id.String()), attribute.String("path", path))
	defer func() { end(err) }()

	if id.String() == "" {
		return nil, fmt.Errorf("missing dataset identifier")
	}

	var url string
	if id.IsPersistent() {
		url = s.http.BuildURL("/api/datasets/:persistentId/add", map[string]string{"persistentId": id.String()})
	} else {
		url = s.http.BuildURL(fmt.Sprintf("/api/datasets/%s/add", id), nil)
	}

	s.log().Debug("native upload", "dataset", id.String(), "path", path)
	resp, err = s.postFile(ctx, url, path, body, sink)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return resp, nil
}

// Replace swaps the content of an existing file, keeping its history.
func (s *FileService) Replace(ctx context.Context, fileID string, path string, body *UploadBody, sink progress.Sink) (resp *response.Response[AddResult], err error) {
	ctx, end := s.startSpan(ctx, "Replace", attribute.String("file", fileID), attribute.String("path", path))
	defer func() { end(err) }()

	if fileID == "" {
		return nil, fmt.Errorf("missing file identifier")
	}

	url := s.http.BuildURL(fmt.Sprintf("/api/files/%s/replace", fileID), nil)

	s.log().Debug("replace file", "file", fileID, "path", path)
	resp, err = s.postFile(ctx, url, path, body, sink)
	if err != nil {
		return nil, fmt.Errorf("failed to replace file %s: %w", fileID, err)
	}
	return resp, nil
}

func (s *FileService) postFile(ctx context.Context, url, path string, body *UploadBody, sink progress.Sink) (*response.Response[AddResult], error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	var fields map[string]string
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode jsonData: %w", err)
		}
		fields = map[string]string{"jsonData": string(payload)}
	}

	form := request.Multipart(fields, map[string]request.FilePart{
		"file": {Path: path, Sink: sink},
	})
	b, _, err := s.http.Do(ctx, http.MethodPost, url, form)
	return response.Evaluate[AddResult](b, err)
}
