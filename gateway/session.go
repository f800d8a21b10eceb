// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/plantops/timeclock/common/httperror"
	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/metrics"
	"github.com/plantops/timeclock/config"
)

const (
	csrfTokenHeader     = "X-CSRF-Token"
	csrfTokenFetchValue = "Fetch"
	requestIdHeader     = "X-Request-ID"
)

type sessionImpl struct {
	client   *http.Client
	tokenURL string
	logger   log.Logger

	mu    sync.Mutex
	token string
}

// NewSession builds the shared backend session. The token is fetched lazily
// from the time entry service URL on the first state-changing request. A
// cookie jar keeps the backend session cookies across calls.
func NewSession(cfg config.GatewayConfig, logger log.Logger) (Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &sessionImpl{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Jar:     jar,
		},
		tokenURL: cfg.TimeEntryServiceURL,
		logger:   logger,
	}, nil
}

func (s *sessionImpl) Do(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	return s.do(ctx, method, url, body, nil, false)
}

func (s *sessionImpl) DoWithHeaders(
	ctx context.Context, method, url string, body interface{}, headers map[string]string,
) (*http.Response, error) {
	return s.do(ctx, method, url, body, headers, false)
}

func (s *sessionImpl) do(
	ctx context.Context, method, url string, body interface{}, headers map[string]string, isRetry bool,
) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIdHeader, uuid.NewString())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	// read-only requests never require a token
	if method != http.MethodGet {
		token, err := s.currentToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set(csrfTokenHeader, token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if s.tokenRejected(resp) {
		_ = resp.Body.Close()
		if isRetry {
			return nil, ErrTokenRejected
		}
		s.InvalidateToken()
		if _, err := s.currentToken(ctx); err != nil {
			return nil, err
		}
		s.logger.Debug("retrying request after token refresh",
			tag.Value(url), tag.RequestId(req.Header.Get(requestIdHeader)))
		return s.do(ctx, method, url, body, headers, true)
	}

	return resp, nil
}

func (s *sessionImpl) tokenRejected(resp *http.Response) bool {
	if resp.StatusCode == http.StatusForbidden {
		return true
	}
	return strings.EqualFold(resp.Header.Get(csrfTokenHeader), "Required")
}

func (s *sessionImpl) InvalidateToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

func (s *sessionImpl) currentToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tokenURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(csrfTokenHeader, csrfTokenFetchValue)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if httperror.CheckHttpResponseAndError(err, resp, s.logger) {
		if err != nil {
			return "", fmt.Errorf("failed to fetch anti-forgery token: %w", err)
		}
		_ = resp.Body.Close()
		return "", fmt.Errorf("anti-forgery token fetch failed with status %v", resp.StatusCode)
	}
	defer func() { _ = resp.Body.Close() }()

	token := resp.Header.Get(csrfTokenHeader)
	if token == "" || strings.EqualFold(token, "Required") {
		return "", fmt.Errorf("backend did not return an anti-forgery token, status %v", resp.StatusCode)
	}

	metrics.RecordTokenRefresh()
	s.logger.Debug("refreshed anti-forgery token", tag.StatusCode(resp.StatusCode))
	s.token = token
	return s.token, nil
}
