// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/ptr"
	"github.com/plantops/timeclock/config"
)

// entryBackend simulates the remote time entry collection with conditional
// updates on an entity at /entries(e1).
type entryBackend struct {
	mu       sync.Mutex
	etag     string
	requests []string
	ifMatch  []string
}

func (b *entryBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.Method == http.MethodGet && r.Header.Get("X-CSRF-Token") == "Fetch" {
			w.Header().Set("X-CSRF-Token", "tok")
			w.WriteHeader(http.StatusOK)
			return
		}
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("ETag", b.etag)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"SapUUID":"e1","OrderID":"1234","Status":"InProcess"}`))
		case http.MethodPatch:
			b.ifMatch = append(b.ifMatch, r.Header.Get("If-Match"))
			if r.Header.Get("If-Match") != b.etag {
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}
			b.etag = b.etag + "x"
			w.Header().Set("ETag", b.etag)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestStore(t *testing.T, serverURL string) TimeEntryStore {
	t.Helper()
	cfg := config.GatewayConfig{
		TimeEntryServiceURL: serverURL + "/entries",
		RequestTimeout:      5 * time.Second,
	}
	logger := log.NewDevelopmentLogger()
	session, err := NewSession(cfg, logger)
	assert.NoError(t, err)
	return NewTimeEntryStore(cfg, session, logger)
}

func TestGetReturnsHeaderETag(t *testing.T) {
	backend := &entryBackend{etag: `W/"1"`}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := newTestStore(t, server.URL)
	entry, etag, err := store.Get(context.Background(), "e1")
	assert.NoError(t, err)
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, `W/"1"`, etag)
}

func TestPatchWithKnownTagSkipsRead(t *testing.T) {
	backend := &entryBackend{etag: `W/"1"`}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := newTestStore(t, server.URL)
	newTag, err := store.Patch(context.Background(), "e1", EntryPatch{
		Status: ptr.Any(StatusError),
	}, `W/"1"`)
	assert.NoError(t, err)
	assert.Equal(t, `W/"1"x`, newTag)
	assert.Equal(t, []string{"PATCH /entries(e1)"}, backend.requests)
}

func TestPatchWithoutTagReadsFirst(t *testing.T) {
	backend := &entryBackend{etag: `W/"1"`}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := newTestStore(t, server.URL)
	newTag, err := store.Patch(context.Background(), "e1", EntryPatch{
		Status: ptr.Any(StatusError),
	}, "")
	assert.NoError(t, err)
	assert.Equal(t, `W/"1"x`, newTag)
	assert.Equal(t, []string{"GET /entries(e1)", "PATCH /entries(e1)"}, backend.requests)
	assert.Equal(t, []string{`W/"1"`}, backend.ifMatch)
}

func TestPatchConflict(t *testing.T) {
	backend := &entryBackend{etag: `W/"2"`}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	store := newTestStore(t, server.URL)
	_, err := store.Patch(context.Background(), "e1", EntryPatch{
		Status: ptr.Any(StatusError),
	}, `W/"1"`)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListByUserFiltersServerSide(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"value":[{"SapUUID":"e1","UserID":"WORKER01"}]}`))
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)
	entries, err := store.ListByUser(context.Background(), "WORKER01")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, strings.Contains(query, "%24filter=") || strings.Contains(query, "$filter="))
	assert.Contains(t, query, "WORKER01")
}

func TestCreateDecodesWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("X-CSRF-Token", "tok")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"d":{"SapUUID":"created-1","OrderID":"1234","Status":"InProcess"}}`))
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)
	created, err := store.Create(context.Background(), TimeEntry{
		OrderID: "1234", OperationID: "0010", UserID: "WORKER01", Status: StatusInProcess,
	})
	assert.NoError(t, err)
	assert.Equal(t, "created-1", created.ID)
}
