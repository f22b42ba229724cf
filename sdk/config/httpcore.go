// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gdcc/dataverse-cli-sdk/sdk/request"
)

const APIKeyHeader = "X-Dataverse-key"

// CoreHTTP talks to the Dataverse installation.
type CoreHTTP interface {
	BuildURL(path string, params map[string]string) string
	Do(ctx context.Context, method, url string, body request.Body) ([]byte, int, error)
}

// StorageHTTP talks to pre-signed object storage URLs. It never sends the API key.
type StorageHTTP interface {
	Do(ctx context.Context, method, url string, body request.Body, header http.Header) ([]byte, int, error)
}

// HTTPError is a response outside the 2xx range. Body holds the raw payload.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server responded with: %s - %s", e.Status, e.Message)
	}
	if b := strings.TrimSpace(string(e.Body)); b != "" {
		return fmt.Sprintf("server responded with: %s - %s", e.Status, b)
	}
	return fmt.Sprintf("server responded with: %s", e.Status)
}

// NewHTTPClient builds the client shared by the core and storage transports.
func NewHTTPClient(conf TransferConfig) *http.Client {
	return &http.Client{Timeout: conf.Timeout}
}

type httpCore struct {
	httpClient *http.Client
	coreConfig CoreConfig
}

func NewHTTPCore(httpClient *http.Client, coreConfig CoreConfig) CoreHTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &httpCore{httpClient: httpClient, coreConfig: coreConfig}
}

func (httpCore *httpCore) BuildURL(path string, params map[string]string) string {
	base := strings.TrimRight(httpCore.coreConfig.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")

	query := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		query.Set(k, v)
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

func (httpCore *httpCore) Do(ctx context.Context, method, url string, body request.Body) ([]byte, int, error) {
	req, err := body.Build(ctx, method, url)
	if err != nil {
		return nil, 0, err
	}

	if tok := httpCore.coreConfig.APIToken; tok != "" {
		req.Header.Set(APIKeyHeader, tok)
	}

	return send(httpCore.httpClient, req)
}

type storageHTTP struct {
	httpClient *http.Client
}

func NewStorageHTTP(httpClient *http.Client) StorageHTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &storageHTTP{httpClient: httpClient}
}

func (s *storageHTTP) Do(ctx context.Context, method, url string, body request.Body, header http.Header) ([]byte, int, error) {
	req, err := body.Build(ctx, method, url)
	if err != nil {
		return nil, 0, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return send(s.httpClient, req)
}

func send(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, rerr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: b}
		var m map[string]any
		if json.Unmarshal(b, &m) == nil {
			if msg, ok := m["message"].(string); ok {
				httpErr.Message = msg
			}
		}
		return b, resp.StatusCode, httpErr
	}
	if rerr != nil {
		return b, resp.StatusCode, fmt.Errorf("failed to read response body: %w", rerr)
	}
	return b, resp.StatusCode, nil
}
