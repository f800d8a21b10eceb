// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/plantops/timeclock/engine"
	"github.com/plantops/timeclock/gateway"
)

type Server interface {
	// Start will start running on the background
	Start() error
	Stop(ctx context.Context) error
}

// Service is the interface of the API service, decoupled from the REST
// server framework like Gin so other frameworks can serve the same requests.
type Service interface {
	ClockIn(ctx context.Context, request ClockInRequest) (*engine.TimerSnapshot, *ErrorWithStatus)
	ClockOut(ctx context.Context, request ClockOutRequest) (*engine.DialogData, *ErrorWithStatus)
	SubmitConfirmation(ctx context.Context, request engine.DialogData) (*engine.Outcome, *ErrorWithStatus)
	CancelReview(ctx context.Context, request engine.DialogData) (*engine.Outcome, *ErrorWithStatus)
	RetryOverhead(ctx context.Context, request EntryRequest) (*engine.Outcome, *ErrorWithStatus)
	RetryDraft(ctx context.Context, request EntryRequest) (*engine.DialogData, *ErrorWithStatus)
	DeleteDraft(ctx context.Context, request DeleteDraftRequest) (*engine.Outcome, *ErrorWithStatus)
	ListDrafts(ctx context.Context, class string) ([]engine.DraftEntry, *ErrorWithStatus)
	ListTimers(ctx context.Context) ([]engine.TimerSnapshot, *ErrorWithStatus)
	ListOrders(ctx context.Context, search string) ([]gateway.OrderRow, *ErrorWithStatus)
	Reload(ctx context.Context) *ErrorWithStatus
}

type (
	ClockInRequest struct {
		OrderID      string `json:"orderId" binding:"required"`
		OperationID  string `json:"operationId" binding:"required"`
		ActivityType string `json:"activityType"`
	}

	ClockOutRequest struct {
		OrderID     string `json:"orderId" binding:"required"`
		OperationID string `json:"operationId" binding:"required"`
	}

	EntryRequest struct {
		TimeEntryID string `json:"timeEntryId" binding:"required"`
	}

	DeleteDraftRequest struct {
		TimeEntryID string `json:"timeEntryId" binding:"required"`
		Class       string `json:"class"`
		Confirmed   bool   `json:"confirmed"`
	}
)
