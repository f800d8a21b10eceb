// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

// Package gateway holds the clients for the remote backend collaborators:
// the time entry store, the confirmation posting service, the personnel
// lookup and the order catalog, plus the shared authenticated session that
// manages the anti-forgery token all state-changing requests require.
package gateway

import (
	"context"
	"net/http"
)

type (
	// Session issues HTTP requests against the backend. Non-read requests
	// carry the anti-forgery token; on a token rejection the session
	// refreshes the token and retries the original request exactly once.
	// The caller owns the response body.
	Session interface {
		Do(ctx context.Context, method, url string, body interface{}) (*http.Response, error)
		// DoWithHeaders is Do with extra request headers, e.g. If-Match.
		DoWithHeaders(ctx context.Context, method, url string, body interface{}, headers map[string]string) (*http.Response, error)
		// InvalidateToken drops the cached token, e.g. on logout.
		InvalidateToken()
	}

	// TimeEntryStore is the CRUD client of the remote time entry collection.
	// Get and Patch carry the opaque concurrency tag; a Patch against a
	// stale tag fails with ErrConflict.
	TimeEntryStore interface {
		ListByUser(ctx context.Context, userID string) ([]TimeEntry, error)
		Get(ctx context.Context, entryID string) (*TimeEntry, string, error)
		Create(ctx context.Context, entry TimeEntry) (*TimeEntry, error)
		// Patch applies a conditional partial update. With an empty knownTag
		// it first reads the entry to obtain one. Returns the fresh tag.
		Patch(ctx context.Context, entryID string, patch EntryPatch, knownTag string) (string, error)
	}

	// ConfirmationService posts work confirmations. The overhead variant
	// forces the fixed overhead activity code.
	ConfirmationService interface {
		PostPrimary(ctx context.Context, input ConfirmationInput) (*ConfirmationResult, error)
		PostOverhead(ctx context.Context, input ConfirmationInput) (*ConfirmationResult, error)
	}

	// PersonnelService resolves a user id to a personnel number.
	PersonnelService interface {
		Lookup(ctx context.Context, userID string) (string, error)
	}

	// OrderCatalog lists released orders with their unconfirmed operations,
	// flattened to one row per (order, operation).
	OrderCatalog interface {
		ListOpen(ctx context.Context, orderIDFilter string) ([]OrderRow, error)
	}
)
