// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/metrics"
	"github.com/plantops/timeclock/config"
)

type entryStoreImpl struct {
	session    Session
	serviceURL string
	logger     log.Logger
}

// NewTimeEntryStore builds the client of the remote time entry collection.
func NewTimeEntryStore(cfg config.GatewayConfig, session Session, logger log.Logger) TimeEntryStore {
	return &entryStoreImpl{
		session:    session,
		serviceURL: cfg.TimeEntryServiceURL,
		logger:     logger,
	}
}

func (s *entryStoreImpl) entryURL(entryID string) string {
	return fmt.Sprintf("%v(%v)", s.serviceURL, url.PathEscape(entryID))
}

func (s *entryStoreImpl) ListByUser(ctx context.Context, userID string) (entries []TimeEntry, err error) {
	defer func() { metrics.RecordStoreRequest("list", err) }()

	filter := fmt.Sprintf("UserID eq '%v'", userID)
	listURL := fmt.Sprintf("%v?$filter=%v&$format=json", s.serviceURL, url.QueryEscape(filter))

	resp, err := s.session.Do(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	return decodeEntryList(body)
}

func (s *entryStoreImpl) Get(ctx context.Context, entryID string) (entry *TimeEntry, etag string, err error) {
	defer func() { metrics.RecordStoreRequest("get", err) }()

	resp, err := s.session.Do(ctx, http.MethodGet, s.entryURL(entryID), nil)
	if err != nil {
		return nil, "", err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, "", err
	}

	entry, embeddedTag, err := decodeEntry(body)
	if err != nil {
		return nil, "", err
	}
	etag = resp.Header.Get("ETag")
	if etag == "" {
		etag = embeddedTag
	}
	return entry, etag, nil
}

func (s *entryStoreImpl) Create(ctx context.Context, entry TimeEntry) (created *TimeEntry, err error) {
	defer func() { metrics.RecordStoreRequest("create", err) }()

	resp, err := s.session.Do(ctx, http.MethodPost, s.serviceURL, entry)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	created, _, err = decodeEntry(body)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created time entry",
		tag.TimeEntry(created.ID), tag.Order(entry.OrderID), tag.Operation(entry.OperationID))
	return created, nil
}

func (s *entryStoreImpl) Patch(
	ctx context.Context, entryID string, patch EntryPatch, knownTag string,
) (newTag string, err error) {
	defer func() { metrics.RecordStoreRequest("patch", err) }()

	etag := knownTag
	if etag == "" {
		// only the very first patch in a chain pays for this read
		_, etag, err = s.Get(ctx, entryID)
		if err != nil {
			return "", err
		}
	}
	if etag == "" {
		etag = "*"
	}

	resp, err := s.session.DoWithHeaders(ctx, http.MethodPatch, s.entryURL(entryID), patch,
		map[string]string{"If-Match": etag})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusPreconditionFailed || resp.StatusCode == http.StatusConflict {
		return "", ErrConflict
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", &RemoteError{StatusCode: resp.StatusCode, Message: ExtractErrorMessage(body)}
	}

	newTag = resp.Header.Get("ETag")
	if newTag == "" {
		newTag = "*"
	}
	return newTag, nil
}

// readBody consumes the response and converts non-2xx statuses into a
// RemoteError carrying the extracted backend message.
func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: ExtractErrorMessage(body)}
	}
	return body, nil
}
