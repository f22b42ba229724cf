// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// ReadBody loads a request body document. JSON is tried first, YAML second.
func ReadBody(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read body file: %w", err)
	}
	if jsonErr := json.Unmarshal(b, v); jsonErr == nil {
		return nil
	} else if yamlErr := yaml.Unmarshal(b, v); yamlErr != nil {
		return fmt.Errorf("body file %s is neither JSON (%v) nor YAML (%v)", path, jsonErr, yamlErr)
	}
	return nil
}

// WriteBody stores v as indented JSON, used by --gen.
func WriteBody(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func PrettyJSON(b []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return string(b)
	}
	return out.String()
}

// ToPrettyJSON marshals v with indentation, falling back to %+v.
func ToPrettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
