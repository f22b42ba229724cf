// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// AlgorithmMD5 is the only algorithm the registration endpoint is fed with.
const AlgorithmMD5 = "MD5"

// DefaultChunkSize is the read buffer used when hashing files.
const DefaultChunkSize = 1_000_000

// Checksum is serialised the way the origin service expects it inside a
// registration body.
type Checksum struct {
	Type  string `json:"@type"  yaml:"@type"`
	Value string `json:"@value" yaml:"@value"`
}

func (c Checksum) String() string {
	return c.Type + ":" + c.Value
}

// FromFile hashes the file at path in DefaultChunkSize chunks.
func FromFile(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer f.Close()

	sum, err := FromReader(f, DefaultChunkSize)
	if err != nil {
		return nil, fmt.Errorf("checksum of %s: %w", path, err)
	}
	return sum, nil
}

// FromReader consumes r until EOF and returns its MD5 digest. chunkSize only
// bounds memory use, the digest does not depend on it.
func FromReader(r io.Reader, chunkSize int) (*Checksum, error) {
	if chunkSize <= 0 {
		return nil, errors.New("chunk size must be positive")
	}

	h := md5.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return &Checksum{
		Type:  AlgorithmMD5,
		Value: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
