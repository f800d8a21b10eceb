// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The remote services wrap payloads inconsistently: the newer endpoints
// return {"value":[...]} with a top-level "@odata.etag", the older ones
// double-wrap as {"d":{"results":[...]}} with the tag under "__metadata".
// All of that is normalized here so nothing above the store client ever
// sees an envelope.

type envelope struct {
	Value []json.RawMessage `json:"value"`
	D     json.RawMessage   `json:"d"`
	ETag  string            `json:"@odata.etag"`
}

type resultsEnvelope struct {
	Results []json.RawMessage `json:"results"`
}

type entryMetadata struct {
	Metadata struct {
		ETag string `json:"etag"`
	} `json:"__metadata"`
}

// decodeEntry normalizes a single-entry response and returns the entry plus
// any concurrency tag embedded in the payload (the HTTP header, when
// present, takes precedence over this one).
func decodeEntry(raw []byte) (*TimeEntry, string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, "", fmt.Errorf("malformed store response: %w", err)
	}

	payload := raw
	etag := env.ETag
	switch {
	case len(env.Value) > 0:
		payload = env.Value[0]
	case isJSONObject(env.D):
		payload = env.D
		var meta entryMetadata
		if json.Unmarshal(env.D, &meta) == nil && meta.Metadata.ETag != "" {
			etag = meta.Metadata.ETag
		}
	}

	var entry TimeEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, "", fmt.Errorf("malformed time entry payload: %w", err)
	}
	return &entry, etag, nil
}

// decodeEntryList normalizes a collection response.
func decodeEntryList(raw []byte) ([]TimeEntry, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// not an envelope at all, accept a bare array
		var entries []TimeEntry
		if arrErr := json.Unmarshal(raw, &entries); arrErr == nil {
			return entries, nil
		}
		return nil, fmt.Errorf("malformed store response: %w", err)
	}

	var items []json.RawMessage
	switch {
	case env.Value != nil:
		items = env.Value
	case len(env.D) > 0:
		var results resultsEnvelope
		if err := json.Unmarshal(env.D, &results); err != nil {
			return nil, fmt.Errorf("malformed store list response: %w", err)
		}
		items = results.Results
	default:
		var entries []TimeEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		return nil, nil
	}

	entries := make([]TimeEntry, 0, len(items))
	for _, item := range items {
		var entry TimeEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return nil, fmt.Errorf("malformed time entry in list: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
