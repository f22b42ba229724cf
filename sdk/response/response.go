// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"encoding/json"
	"fmt"
)

// Status is the status field of the envelope, OK or ERROR.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// IsOK reports whether the envelope carries a success status.
func (s Status) IsOK() bool {
	return s == StatusOK
}

// Response is the envelope every native API endpoint answers with.
type Response[T any] struct {
	Status        Status `json:"status"                  yaml:"status"`
	Data          *T     `json:"data,omitempty"          yaml:"data,omitempty"`
	Message       string `json:"message,omitempty"       yaml:"message,omitempty"`
	RequestURL    string `json:"requestUrl,omitempty"    yaml:"requestUrl,omitempty"`
	RequestMethod string `json:"requestMethod,omitempty" yaml:"requestMethod,omitempty"`
}

// Err reports an envelope whose status is not OK as an *APIError.
func (r *Response[T]) Err() error {
	if r.Status.IsOK() {
		return nil
	}
	return &APIError{
		Status:  r.Status,
		Message: r.Message,
		URL:     r.RequestURL,
		Method:  r.RequestMethod,
	}
}

// APIError is a well-formed envelope carrying an error status.
type APIError struct {
	Status  Status
	Message string
	URL     string
	Method  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	if e.URL != "" {
		return fmt.Sprintf("%s %s: %s - %s", e.Method, e.URL, e.Status, msg)
	}
	return fmt.Sprintf("%s - %s", e.Status, msg)
}

// DecodeError keeps the raw payload that failed to decode.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response: %v - %s", e.Err, e.Raw)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses an envelope. Malformed JSON yields a *DecodeError, an ERROR
// status yields the decoded envelope together with an *APIError.
func Decode[T any](body []byte) (*Response[T], error) {
	var r Response[T]
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, &DecodeError{Raw: body, Err: err}
	}
	if r.Status == "" {
		return nil, &DecodeError{Raw: body, Err: fmt.Errorf("missing status field")}
	}
	return &r, r.Err()
}

// Evaluate decodes the payload of an exchange that may already have failed at
// the transport level. An error envelope in the payload takes precedence over
// the transport error since it carries the server's explanation.
func Evaluate[T any](body []byte, transportErr error) (*Response[T], error) {
	if transportErr == nil {
		return Decode[T](body)
	}
	if len(body) > 0 {
		if r, err := Decode[T](body); r != nil && err != nil {
			return r, err
		}
	}
	return nil, transportErr
}
