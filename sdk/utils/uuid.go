// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewBatchID correlates every log line and span of one transfer.
func NewBatchID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
