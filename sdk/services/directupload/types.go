// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/gdcc/dataverse-cli-sdk/sdk/checksum"
	"github.com/gdcc/dataverse-cli-sdk/sdk/progress"
	"github.com/gdcc/dataverse-cli-sdk/sdk/services/files"
)

// ErrMultipartUnsupported is returned for tickets that ask for a chunked upload.
var ErrMultipartUnsupported = errors.New("multipart upload not supported")

// ErrRegistrationRejected marks files the server refused while accepting the
// rest of an /addFiles batch.
var ErrRegistrationRejected = errors.New("registration rejected")

// Kind tells how a ticket expects the object to be uploaded.
type Kind int

const (
	// SinglePart is one PUT to Ticket.URL.
	SinglePart Kind = iota
	// Multipart is one PUT per entry of Ticket.URLs.
	Multipart
)

func (k Kind) String() string {
	if k == Multipart {
		return "multipart"
	}
	return "single-part"
}

// Ticket is the answer of /uploadurls. It is consumed by exactly one upload.
type Ticket struct {
	URL               string   `json:"url,omitempty"`
	URLs              PartURLs `json:"urls,omitempty"`
	StorageIdentifier string   `json:"storageIdentifier"`
	PartSize          int64    `json:"partSize,omitempty"`
	Abort             string   `json:"abort,omitempty"`
	Complete          string   `json:"complete,omitempty"`
}

// Kind is Multipart whenever the single url is absent.
func (t *Ticket) Kind() Kind {
	if t.URL == "" {
		return Multipart
	}
	return SinglePart
}

// PartURLs holds the part URLs in part order. The server sends them either as
// an array or as an object keyed by part number.
type PartURLs []string

func (p *PartURLs) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*p = list
		return nil
	}

	var byPart map[string]string
	if err := json.Unmarshal(b, &byPart); err != nil {
		return fmt.Errorf("urls must be an array or an object keyed by part number: %w", err)
	}

	type part struct {
		n   int
		url string
	}
	parts := make([]part, 0, len(byPart))
	for k, v := range byPart {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return fmt.Errorf("invalid part number %q", k)
		}
		parts = append(parts, part{n: n, url: v})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })

	urls := make([]string, len(parts))
	for i, pt := range parts {
		urls[i] = pt.url
	}
	*p = urls
	return nil
}

// File is a local file to transfer and the sink receiving its progress.
type File struct {
	Path string
	Sink progress.Sink
}

// Body is the registration metadata of one uploaded file. FileName,
// StorageIdentifier and Checksum are filled by the pipeline; MimeType is
// detected from the content when left empty.
type Body struct {
	Categories        []string           `json:"categories,omitempty"`
	Description       string             `json:"description,omitempty"`
	DirectoryLabel    string             `json:"directoryLabel,omitempty"`
	MimeType          string             `json:"mimeType,omitempty"`
	Restrict          *bool              `json:"restrict,omitempty"`
	FileName          string             `json:"fileName,omitempty"`
	StorageIdentifier string             `json:"storageIdentifier,omitempty"`
	Checksum          *checksum.Checksum `json:"checksum,omitempty"`
}

func ExampleBody() Body {
	restrict := false
	return Body{
		Categories:     []string{"Data"},
		Description:    "My description.",
		DirectoryLabel: "data/subdir1",
		MimeType:       "text/plain",
		Restrict:       &restrict,
	}
}

// AddFilesResult is the data of /addFiles.
type AddFilesResult struct {
	Files  []AddedFile     `json:"Files"`
	Result AddFilesSummary `json:"Result"`
}

// AddedFile is one entry of an /addFiles answer. ErrorMessage is set for
// files the server refused.
type AddedFile struct {
	StorageIdentifier string          `json:"storageIdentifier"`
	ErrorMessage      string          `json:"errorMessage,omitempty"`
	FileDetails       *files.DataFile `json:"fileDetails,omitempty"`
}

// AddFilesSummary is the counters block of an /addFiles answer.
type AddFilesSummary struct {
	Total int `json:"Total number of files"`
	Added int `json:"Number of files successfully added"`
}

// State of a single file pipeline.
type State int

const (
	StateInit State = iota
	StateTicketRequested
	StateSinglePartUpload
	StateRejected
	StateChecksumComputed
	StateReadyToRegister
	StateFailed
)

var stateNames = map[State]string{
	StateInit:             "init",
	StateTicketRequested:  "ticket-requested",
	StateSinglePartUpload: "single-part-upload",
	StateRejected:         "rejected",
	StateChecksumComputed: "checksum-computed",
	StateReadyToRegister:  "ready-to-register",
	StateFailed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the result of one file pipeline. StorageIdentifier is set as soon
// as the object is stored, even when a later step fails.
type Outcome struct {
	Index             int
	Path              string
	Size              int64
	State             State
	StorageIdentifier string
	Checksum          *checksum.Checksum
	Err               error

	objectURL string
}

func (o Outcome) OK() bool {
	return o.State == StateReadyToRegister
}

// BatchError reports a transfer that stopped before or during registration,
// or a registration in which the server refused some of the files.
// Orphans lists storage identifiers of objects stored but never registered.
type BatchError struct {
	Outcomes []Outcome
	Orphans  []string
	errs     *multierror.Error
}

func newBatchError(outcomes []Outcome, errs *multierror.Error) *BatchError {
	errs.ErrorFormat = formatErrors
	return &BatchError{Outcomes: outcomes, errs: errs}
}

func (e *BatchError) Error() string {
	msg := e.errs.Error()
	if len(e.Orphans) > 0 {
		msg += fmt.Sprintf("; %d uploaded object(s) left unregistered: %s", len(e.Orphans), strings.Join(e.Orphans, ", "))
	}
	return msg
}

func (e *BatchError) Unwrap() error {
	return e.errs
}

// Errors returns every individual failure.
func (e *BatchError) Errors() []error {
	return e.errs.WrappedErrors()
}

// Failed returns the outcomes that did not reach ReadyToRegister.
func (e *BatchError) Failed() []Outcome {
	var failed []Outcome
	for _, o := range e.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

func formatErrors(es []error) string {
	if len(es) == 1 {
		return es[0].Error()
	}
	lines := make([]string, len(es))
	for i, err := range es {
		lines[i] = "\t* " + err.Error()
	}
	return fmt.Sprintf("%d transfers failed:\n%s", len(es), strings.Join(lines, "\n"))
}
