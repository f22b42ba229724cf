// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package files

import "strings"

// Identifier addresses a dataset either by persistent id or by database id.
type Identifier struct {
	value      string
	persistent bool
}

func PersistentID(pid string) Identifier {
	return Identifier{value: pid, persistent: true}
}

func DatabaseID(id string) Identifier {
	return Identifier{value: id}
}

// ParseIdentifier treats an all-digit string as a database id.
func ParseIdentifier(s string) Identifier {
	s = strings.TrimSpace(s)
	if s != "" && strings.Trim(s, "0123456789") == "" {
		return DatabaseID(s)
	}
	return PersistentID(s)
}

func (i Identifier) IsPersistent() bool { return i.persistent }
func (i Identifier) String() string     { return i.value }

// UploadBody is the jsonData part of a native upload or replace.
type UploadBody struct {
	Description    string   `json:"description,omitempty"`
	DirectoryLabel string   `json:"directoryLabel,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Restrict       *bool    `json:"restrict,omitempty"`
	TabIngest      *bool    `json:"tabIngest,omitempty"`
	ForceReplace   *bool    `json:"forceReplace,omitempty"`
}

func ExampleUploadBody() UploadBody {
	restrict, ingest := false, true
	return UploadBody{
		Description:    "My description.",
		DirectoryLabel: "data/subdir1",
		Categories:     []string{"Data"},
		Restrict:       &restrict,
		TabIngest:      &ingest,
	}
}

// AddResult is the data of /add and /replace responses.
type AddResult struct {
	Files []FileEntry `json:"files"`
}

type FileEntry struct {
	Description      string   `json:"description,omitempty"`
	Label            string   `json:"label"`
	Restricted       bool     `json:"restricted"`
	DirectoryLabel   string   `json:"directoryLabel,omitempty"`
	Version          int      `json:"version"`
	DatasetVersionID int64    `json:"datasetVersionId"`
	Categories       []string `json:"categories,omitempty"`
	DataFile         DataFile `json:"dataFile"`
}

type DataFile struct {
	ID                int64        `json:"id"`
	PersistentID      string       `json:"persistentId,omitempty"`
	Filename          string       `json:"filename"`
	ContentType       string       `json:"contentType"`
	FileSize          int64        `json:"filesize"`
	StorageIdentifier string       `json:"storageIdentifier"`
	MD5               string       `json:"md5,omitempty"`
	Checksum          FileChecksum `json:"checksum"`
	CreationDate      string       `json:"creationDate,omitempty"`
}

type FileChecksum struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
