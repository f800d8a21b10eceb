// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/engine"
	"github.com/plantops/timeclock/gateway"
)

type serviceImpl struct {
	cfg    config.Config
	engine *engine.Engine
	logger log.Logger
}

func NewServiceImpl(cfg config.Config, eng *engine.Engine, logger log.Logger) Service {
	return &serviceImpl{
		cfg:    cfg,
		engine: eng,
		logger: logger,
	}
}

func (s serviceImpl) ClockIn(
	ctx context.Context, request ClockInRequest,
) (*engine.TimerSnapshot, *ErrorWithStatus) {
	snapshot, err := s.engine.ClockIn(ctx, request.OrderID, request.OperationID, request.ActivityType)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return snapshot, nil
}

func (s serviceImpl) ClockOut(
	ctx context.Context, request ClockOutRequest,
) (*engine.DialogData, *ErrorWithStatus) {
	proposal, err := s.engine.ClockOut(ctx, request.OrderID, request.OperationID)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return proposal, nil
}

func (s serviceImpl) SubmitConfirmation(
	ctx context.Context, request engine.DialogData,
) (*engine.Outcome, *ErrorWithStatus) {
	outcome, err := s.engine.SubmitConfirmation(ctx, request)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return outcome, nil
}

func (s serviceImpl) CancelReview(
	ctx context.Context, request engine.DialogData,
) (*engine.Outcome, *ErrorWithStatus) {
	outcome, err := s.engine.CancelReview(ctx, request)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return outcome, nil
}

func (s serviceImpl) RetryOverhead(
	ctx context.Context, request EntryRequest,
) (*engine.Outcome, *ErrorWithStatus) {
	outcome, err := s.engine.RetryOverhead(ctx, request.TimeEntryID)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return outcome, nil
}

func (s serviceImpl) RetryDraft(
	ctx context.Context, request EntryRequest,
) (*engine.DialogData, *ErrorWithStatus) {
	proposal, err := s.engine.RetryDraft(ctx, request.TimeEntryID)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return proposal, nil
}

func (s serviceImpl) DeleteDraft(
	ctx context.Context, request DeleteDraftRequest,
) (*engine.Outcome, *ErrorWithStatus) {
	class := engine.DraftClass(request.Class)
	if class == "" {
		class = engine.DraftClassError
	}
	if class != engine.DraftClassError && class != engine.DraftClassOverhead {
		return nil, NewErrorWithStatus(http.StatusBadRequest, "unknown draft class")
	}
	outcome, err := s.engine.DeleteDraft(ctx, request.TimeEntryID, class, request.Confirmed)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return outcome, nil
}

func (s serviceImpl) ListDrafts(
	ctx context.Context, class string,
) ([]engine.DraftEntry, *ErrorWithStatus) {
	draftClass := engine.DraftClass(class)
	if draftClass == "" {
		draftClass = engine.DraftClassError
	}
	if draftClass != engine.DraftClassError && draftClass != engine.DraftClassOverhead {
		return nil, NewErrorWithStatus(http.StatusBadRequest, "unknown draft class")
	}
	drafts, err := s.engine.ListDrafts(ctx, draftClass)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return drafts, nil
}

func (s serviceImpl) ListTimers(_ context.Context) ([]engine.TimerSnapshot, *ErrorWithStatus) {
	return s.engine.ListTimers(), nil
}

func (s serviceImpl) ListOrders(
	ctx context.Context, search string,
) ([]gateway.OrderRow, *ErrorWithStatus) {
	rows, err := s.engine.ListOrders(ctx, search)
	if err != nil {
		return nil, s.mapEngineError(err)
	}
	return rows, nil
}

func (s serviceImpl) Reload(ctx context.Context) *ErrorWithStatus {
	if err := s.engine.Reload(ctx); err != nil {
		return s.mapEngineError(err)
	}
	return nil
}

func (s serviceImpl) mapEngineError(err error) *ErrorWithStatus {
	var validationErr *engine.ValidationError
	if errors.As(err, &validationErr) {
		return NewErrorWithStatus(http.StatusBadRequest, validationErr.Message)
	}
	if errors.Is(err, engine.ErrAlreadyClockedIn) {
		return NewErrorWithStatus(http.StatusConflict, err.Error())
	}
	if errors.Is(err, engine.ErrNoActiveTimer) {
		return NewErrorWithStatus(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, engine.ErrReloadRequired) {
		return NewErrorWithStatus(http.StatusConflict, err.Error())
	}
	var pipelineErr *engine.PipelineError
	if errors.As(err, &pipelineErr) {
		return NewErrorWithStatus(http.StatusBadGateway, pipelineErr.Error())
	}
	var remoteErr *gateway.RemoteError
	if errors.As(err, &remoteErr) {
		return NewErrorWithStatus(http.StatusBadGateway, remoteErr.Error())
	}
	s.logger.Error("unknown error on operation", tag.Error(err))
	return NewErrorWithStatus(http.StatusInternalServerError, err.Error())
}
