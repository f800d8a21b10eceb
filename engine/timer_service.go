// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"

	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/metrics"
	"github.com/plantops/timeclock/gateway"
	"github.com/plantops/timeclock/persistence"
)

// ClockIn creates an in-process time entry for the order operation and
// starts a timer for it. Refused when this session or any other already has
// an in-process entry for the same operation.
func (e *Engine) ClockIn(ctx context.Context, orderID, operationID, activityType string) (*TimerSnapshot, error) {
	if orderID == "" || operationID == "" {
		return nil, newValidationError("order and operation are required to clock in")
	}

	key := timerKey{orderID, operationID}
	e.mu.Lock()
	_, exists := e.timers[key]
	e.mu.Unlock()
	if exists {
		return nil, ErrAlreadyClockedIn
	}

	// The local map only knows this session. Check the remote store too so a
	// clock-in from another device is not doubled.
	entries, err := e.store.ListByUser(ctx, e.cfg.UserID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Status == gateway.StatusInProcess &&
			entry.OrderID == orderID && entry.OperationID == operationID {
			return nil, ErrAlreadyClockedIn
		}
	}

	now := e.clock.Now()
	businessDate, businessClock := e.normalizer.BusinessDateClock(now)
	created, err := e.store.Create(ctx, gateway.TimeEntry{
		OrderID:       orderID,
		OperationID:   operationID,
		UserID:        e.cfg.UserID,
		ActivityType:  activityType,
		ExecStartDate: businessDate,
		ExecStartTime: businessClock,
		ClockInLog:    e.normalizer.ToBusinessISO(now) + "Z",
		Status:        gateway.StatusInProcess,
	})
	if err != nil {
		return nil, err
	}

	state := &TimerState{
		IsRunning:   true,
		ClockInTime: now,
		TimeEntryID: created.ID,
	}
	e.mu.Lock()
	e.timers[key] = state
	e.mu.Unlock()

	if err := e.sessions.Upsert(ctx, persistence.TimerSessionRow{
		UserID:      e.cfg.UserID,
		OrderID:     orderID,
		OperationID: operationID,
		TimeEntryID: created.ID,
		ClockInTime: now,
	}); err != nil {
		e.logger.Warn("failed to persist timer session", tag.TimeEntry(created.ID), tag.Error(err))
	}

	e.scheduler.Start()
	e.logger.Info("clocked in",
		tag.Order(orderID), tag.Operation(operationID), tag.TimeEntry(created.ID))

	return &TimerSnapshot{
		OrderID:          orderID,
		OperationID:      operationID,
		TimerState:       *state,
		FormattedElapsed: FormatElapsed(0),
	}, nil
}

// ClockOut stops the timer for the order operation and returns the editable
// confirmation proposal. The timer is stopped even if the caller later
// cancels the review; cancelling moves the entry to the error drafts instead
// of resuming it.
func (e *Engine) ClockOut(ctx context.Context, orderID, operationID string) (*DialogData, error) {
	key := timerKey{orderID, operationID}
	e.mu.Lock()
	state, ok := e.timers[key]
	e.mu.Unlock()
	if !ok || !state.IsRunning {
		return nil, ErrNoActiveTimer
	}

	// Re-read before acting. Another session may have confirmed or deleted
	// the entry since this timer started.
	entry, _, err := e.store.Get(ctx, state.TimeEntryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != gateway.StatusInProcess {
		e.dropTimer(ctx, key)
		return nil, &StaleEntryError{
			TimeEntryID: state.TimeEntryID,
			Expected:    gateway.StatusInProcess,
			Actual:      entry.Status,
		}
	}

	now := e.clock.Now()
	elapsed := elapsedAt(state, now)
	e.mu.Lock()
	state.IsRunning = false
	state.ElapsedSeconds = elapsed
	delete(e.timers, key)
	e.mu.Unlock()
	if err := e.sessions.Delete(ctx, e.cfg.UserID, orderID, operationID); err != nil {
		e.logger.Warn("failed to drop timer session", tag.TimeEntry(state.TimeEntryID), tag.Error(err))
	}
	metrics.SetActiveTimers(len(e.ListTimers()))

	workStart, err := e.normalizer.ToLocalInstant(entry.ExecStartDate, entry.ExecStartTime)
	if err != nil {
		// Fall back to the session start. Elapsed accounting is unaffected.
		e.logger.Warn("unreadable entry start, using session start",
			tag.TimeEntry(entry.ID), tag.Error(err))
		workStart = state.ClockInTime
	}

	e.logger.Info("clocked out",
		tag.Order(orderID), tag.Operation(operationID),
		tag.TimeEntry(entry.ID), tag.ElapsedSeconds(elapsed))

	return &DialogData{
		TimeEntryID:     entry.ID,
		OrderID:         orderID,
		OperationID:     operationID,
		ActivityType:    entry.ActivityType,
		WorkStart:       workStart,
		WorkFinish:      now,
		ActualWorkHours: roundHours(elapsed),
		ElapsedSeconds:  elapsed,
		LiveClockOut:    true,
	}, nil
}

func (e *Engine) dropTimer(ctx context.Context, key timerKey) {
	e.mu.Lock()
	delete(e.timers, key)
	e.mu.Unlock()
	if err := e.sessions.Delete(ctx, e.cfg.UserID, key.orderID, key.operationID); err != nil {
		e.logger.Warn("failed to drop timer session", tag.Error(err))
	}
}
