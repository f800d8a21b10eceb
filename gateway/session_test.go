// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/config"
)

// tokenBackend simulates a backend that hands out anti-forgery tokens on GET
// and rejects state-changing requests carrying a stale one.
type tokenBackend struct {
	mu          sync.Mutex
	validToken  string
	tokenFetches int
	postAttempts int
	rejections   int
}

func (b *tokenBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.Method == http.MethodGet {
			if r.Header.Get("X-CSRF-Token") == "Fetch" {
				b.tokenFetches++
				w.Header().Set("X-CSRF-Token", b.validToken)
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		b.postAttempts++
		if r.Header.Get("X-CSRF-Token") != b.validToken {
			b.rejections++
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}
}

func newTestSession(t *testing.T, serverURL string) Session {
	t.Helper()
	session, err := NewSession(config.GatewayConfig{
		TimeEntryServiceURL: serverURL,
		RequestTimeout:      5 * time.Second,
	}, log.NewDevelopmentLogger())
	assert.NoError(t, err)
	return session
}

func TestSessionFetchesTokenLazily(t *testing.T) {
	backend := &tokenBackend{validToken: "token-1"}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := newTestSession(t, server.URL)

	// reads never need a token
	resp, err := session.Do(context.Background(), http.MethodGet, server.URL, nil)
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 0, backend.tokenFetches)

	resp, err = session.Do(context.Background(), http.MethodPost, server.URL, map[string]string{"a": "b"})
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, backend.tokenFetches)

	// the token is cached across calls
	resp, err = session.Do(context.Background(), http.MethodPost, server.URL, nil)
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 1, backend.tokenFetches)
}

func TestSessionRetriesOnceAfterTokenRejection(t *testing.T) {
	backend := &tokenBackend{validToken: "token-1"}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	session := newTestSession(t, server.URL)

	resp, err := session.Do(context.Background(), http.MethodPost, server.URL, nil)
	assert.NoError(t, err)
	_ = resp.Body.Close()

	// the backend rotates its token, the cached one goes stale
	backend.mu.Lock()
	backend.validToken = "token-2"
	backend.mu.Unlock()

	resp, err = session.Do(context.Background(), http.MethodPost, server.URL, nil)
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, backend.rejections)
	assert.Equal(t, 2, backend.tokenFetches)
}

func TestSessionGivesUpAfterSecondRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("X-CSRF-Token", "stale")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	session := newTestSession(t, server.URL)

	_, err := session.Do(context.Background(), http.MethodPost, server.URL, nil)
	assert.ErrorIs(t, err, ErrTokenRejected)
}
