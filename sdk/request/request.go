// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package request

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
)

// Kind selects how a Body is materialised into an HTTP request.
type Kind int

const (
	KindPlain Kind = iota
	KindJSON
	KindMultipart
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindJSON:
		return "json"
	case KindMultipart:
		return "multipart"
	case KindFile:
		return "file"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const (
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// FilePart is a local file streamed into a request, with an optional sink
// receiving its progress.
type FilePart struct {
	Path string
	Sink progress.Sink
}

// Body describes a request body declaratively. Nothing is opened or read
// until Build is called.
type Body struct {
	kind   Kind
	json   string
	fields map[string]string
	files  map[string]FilePart
	file   FilePart
}

// Plain is a request without a body.
func Plain() Body {
	return Body{kind: KindPlain}
}

// JSON sends an already serialised document.
func JSON(body string) Body {
	return Body{kind: KindJSON, json: body}
}

// Multipart builds a multipart/form-data body out of text fields and file
// parts. A name present in both maps produces two parts with that name.
func Multipart(fields map[string]string, files map[string]FilePart) Body {
	return Body{kind: KindMultipart, fields: fields, files: files}
}

// File streams a single file as the raw request body.
func File(path string, sink progress.Sink) Body {
	return Body{kind: KindFile, file: FilePart{Path: path, Sink: sink}}
}

func (b Body) Kind() Kind {
	return b.kind
}

// Build materialises the body into a request. File handles are opened here
// and closed once the transport has consumed (or abandoned) the body.
func (b Body) Build(ctx context.Context, method, url string) (*http.Request, error) {
	switch b.kind {
	case KindPlain:
		return http.NewRequestWithContext(ctx, method, url, nil)
	case KindJSON:
		req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(b.json))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", ContentTypeJSON)
		return req, nil
	case KindMultipart:
		return b.buildMultipart(ctx, method, url)
	case KindFile:
		return b.buildFile(ctx, method, url)
	}
	return nil, fmt.Errorf("unsupported request body %s", b.kind)
}

func (b Body) buildFile(ctx context.Context, method, url string) (*http.Request, error) {
	f, err := os.Open(b.file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat error: %w", err)
	}

	body := progress.NewReader(f, b.file.Sink)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	req.ContentLength = info.Size()
	if info.Size() == 0 {
		// a zero length with a non-nil body would be sent chunked
		_ = f.Close()
		req.Body = http.NoBody
	}
	return req, nil
}

type openPart struct {
	field string
	name  string
	body  *progress.Reader
}

func (b Body) buildMultipart(ctx context.Context, method, url string) (*http.Request, error) {
	parts := make([]openPart, 0, len(b.files))
	closeAll := func() {
		for _, p := range parts {
			_ = p.body.Close()
		}
	}

	for _, field := range sortedKeys(b.files) {
		fp := b.files[field]
		f, err := os.Open(fp.Path)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open file for field %q: %w", field, err)
		}
		parts = append(parts, openPart{
			field: field,
			name:  filepath.Base(fp.Path),
			body:  progress.NewReader(f, fp.Sink),
		})
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, method, url, pr)
	if err != nil {
		closeAll()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	go func() {
		defer closeAll()
		err := writeForm(mw, b.fields, parts)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return req, nil
}

func writeForm(mw *multipart.Writer, fields map[string]string, parts []openPart) error {
	for _, name := range sortedKeys(fields) {
		if err := mw.WriteField(name, fields[name]); err != nil {
			return err
		}
	}
	for _, p := range parts {
		// CreateFormFile tags the part as application/octet-stream
		w, err := mw.CreateFormFile(p.field, p.name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, p.body); err != nil {
			return fmt.Errorf("failed to stream %s: %w", p.name, err)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
