// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

// Package persistence stores the local timer sessions. The remote time entry
// store stays the source of truth; these rows only preserve the exact local
// clock-in instants and carried-over seconds across process restarts.
package persistence

import (
	"context"
	"time"
)

type (
	// TimerSessionRow is one running timer owned by this user session.
	TimerSessionRow struct {
		UserID             string
		OrderID            string
		OperationID        string
		TimeEntryID        string
		ClockInTime        time.Time
		BaseElapsedSeconds int64
	}

	// TimerSessionStore persists running timers per (user, order, operation).
	TimerSessionStore interface {
		Upsert(ctx context.Context, row TimerSessionRow) error
		Delete(ctx context.Context, userID, orderID, operationID string) error
		List(ctx context.Context, userID string) ([]TimerSessionRow, error)
		Close() error
	}
)
