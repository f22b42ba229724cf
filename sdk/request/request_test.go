// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package request_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
	"github.com/gdcc/dataverse-cli-sdk/sdk/request"
)

func fixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlain(t *testing.T) {
	req, err := request.Plain().Build(context.Background(), http.MethodGet, "http://localhost/api")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "http://localhost/api", req.URL.String())
	assert.Nil(t, req.Body)
	assert.Equal(t, request.KindPlain, request.Plain().Kind())
}

func TestJSON(t *testing.T) {
	req, err := request.JSON(`{"a":1}`).Build(context.Background(), http.MethodPost, "http://localhost/api")
	require.NoError(t, err)
	assert.Equal(t, request.ContentTypeJSON, req.Header.Get("Content-Type"))

	b, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))
}

func TestMultipartStreamsFieldsAndFiles(t *testing.T) {
	path := fixture(t, "file.txt", strings.Repeat("dataverse ", 5000))

	type received struct {
		fields      map[string]string
		fileName    string
		contentType string
		content     string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		if !assert.NoError(t, err) {
			return
		}
		rec := received{fields: map[string]string{}}
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if !assert.NoError(t, err) {
				return
			}
			b, _ := io.ReadAll(part)
			if part.FileName() != "" {
				rec.fileName = part.FileName()
				rec.contentType = part.Header.Get("Content-Type")
				rec.content = string(b)
				continue
			}
			rec.fields[part.FormName()] = string(b)
		}
		got <- rec
	}))
	defer srv.Close()

	counter := &progress.Counter{}
	body := request.Multipart(
		map[string]string{"jsonData": `{"description":"x"}`},
		map[string]request.FilePart{"file": {Path: path, Sink: counter}},
	)
	assert.Equal(t, request.KindMultipart, body.Kind())

	req, err := body.Build(context.Background(), http.MethodPost, srv.URL)
	require.NoError(t, err)
	assert.Contains(t, req.Header.Get("Content-Type"), "multipart/form-data")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	rec := <-got
	assert.Equal(t, `{"description":"x"}`, rec.fields["jsonData"])
	assert.Equal(t, "file.txt", rec.fileName)
	assert.Equal(t, request.ContentTypeBinary, rec.contentType)
	assert.Equal(t, strings.Repeat("dataverse ", 5000), rec.content)
	assert.Equal(t, int64(50000), counter.Total())
}

func TestMultipartMissingFile(t *testing.T) {
	body := request.Multipart(nil, map[string]request.FilePart{
		"file": {Path: filepath.Join(t.TempDir(), "missing.txt")},
	})
	_, err := body.Build(context.Background(), http.MethodPost, "http://localhost")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMultipartFieldsOnly(t *testing.T) {
	body := request.Multipart(map[string]string{"jsonData": "[]"}, nil)
	req, err := body.Build(context.Background(), http.MethodPost, "http://localhost")
	require.NoError(t, err)

	require.NoError(t, req.ParseMultipartForm(1<<20))
	assert.Equal(t, "[]", req.FormValue("jsonData"))
}

func TestFileSetsContentLengthAndReportsProgress(t *testing.T) {
	path := fixture(t, "object.bin", strings.Repeat("x", 10*1024))

	seen := make(chan int64, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		seen <- r.ContentLength
	}))
	defer srv.Close()

	counter := &progress.Counter{}
	req, err := request.File(path, counter).Build(context.Background(), http.MethodPut, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024), req.ContentLength)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int64(10*1024), <-seen)
	assert.Equal(t, int64(10*1024), counter.Total())
}

func TestFileEmpty(t *testing.T) {
	path := fixture(t, "empty.bin", "")
	req, err := request.File(path, nil).Build(context.Background(), http.MethodPut, "http://localhost")
	require.NoError(t, err)
	assert.Equal(t, http.NoBody, req.Body)
	assert.Zero(t, req.ContentLength)
}

func TestFileMissing(t *testing.T) {
	_, err := request.File(filepath.Join(t.TempDir(), "nope"), nil).
		Build(context.Background(), http.MethodPut, "http://localhost")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
