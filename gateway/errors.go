// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrConflict signals a conditional update rejected because the supplied
	// concurrency tag no longer matches the entry. The caller must reload,
	// never retry blindly.
	ErrConflict = errors.New("concurrency tag mismatch, entry was modified by another session")

	// ErrTokenRejected signals that the anti-forgery token was rejected
	// again after a refresh; the call is not retried a second time.
	ErrTokenRejected = errors.New("anti-forgery token rejected after refresh")
)

// RemoteError is a failed remote response with the most specific message the
// backend provided.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call failed with status %v: %v", e.StatusCode, e.Message)
}

const genericRemoteErrorMessage = "Unknown Error"

// remote errors come in the nested OData shape; the message itself is a
// plain string on some services and a {lang, value} object on others
type odataErrorBody struct {
	Error struct {
		Message    json.RawMessage `json:"message"`
		InnerError struct {
			ErrorDetails []struct {
				Severity string `json:"severity"`
				Message  string `json:"message"`
			} `json:"errordetails"`
		} `json:"innererror"`
	} `json:"error"`
}

// ExtractErrorMessage picks the most specific message out of a structured
// remote error body: the first detail entry with severity "error", else the
// top-level message, else a generic fallback.
func ExtractErrorMessage(body []byte) string {
	var parsed odataErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return genericRemoteErrorMessage
	}

	msg := decodeErrorMessage(parsed.Error.Message)

	for _, detail := range parsed.Error.InnerError.ErrorDetails {
		if detail.Severity == "error" && detail.Message != "" {
			msg = detail.Message
			break
		}
	}

	if msg == "" {
		return genericRemoteErrorMessage
	}
	return msg
}

func decodeErrorMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return ""
	}
	var obj struct {
		Value string `json:"value"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Value
	}
	return ""
}
