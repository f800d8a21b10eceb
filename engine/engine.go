// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

// Package engine implements the time entry lifecycle: clocking in and out of
// order operations, the two-phase confirmation pipeline, and recovery of
// failed entries. It owns the running timers and is the only writer of the
// remote time entry store.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/plantops/timeclock/common/businesstime"
	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/metrics"
	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/gateway"
	"github.com/plantops/timeclock/persistence"
)

type Engine struct {
	cfg        config.EngineConfig
	logger     log.Logger
	normalizer *businesstime.Normalizer
	clock      Clock

	store         gateway.TimeEntryStore
	confirmations gateway.ConfirmationService
	personnel     gateway.PersonnelService
	catalog       gateway.OrderCatalog
	sessions      persistence.TimerSessionStore

	scheduler *TickScheduler

	mu     sync.Mutex
	timers map[timerKey]*TimerState

	personnelMu     sync.Mutex
	personnelNumber string
}

type Dependencies struct {
	Store         gateway.TimeEntryStore
	Confirmations gateway.ConfirmationService
	Personnel     gateway.PersonnelService
	Catalog       gateway.OrderCatalog
	Sessions      persistence.TimerSessionStore
}

func NewEngine(
	cfg config.EngineConfig,
	normalizer *businesstime.Normalizer,
	deps Dependencies,
	clock Clock,
	logger log.Logger,
) *Engine {
	if clock == nil {
		clock = NewSystemClock()
	}
	e := &Engine{
		cfg:           cfg,
		logger:        logger,
		normalizer:    normalizer,
		clock:         clock,
		store:         deps.Store,
		confirmations: deps.Confirmations,
		personnel:     deps.Personnel,
		catalog:       deps.Catalog,
		sessions:      deps.Sessions,
		timers:        map[timerKey]*TimerState{},
	}
	e.scheduler = NewTickScheduler(cfg.TickInterval, clock, e.tick, logger)
	return e
}

// Start loads the running timers from the remote store and warms the
// personnel number cache in the background.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.Reload(ctx); err != nil {
		return err
	}
	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := e.personnelNumberFor(warmCtx); err != nil {
			e.logger.Warn("personnel number prefetch failed", tag.Error(err))
		}
	}()
	return nil
}

// Stop halts the tick loop and releases the session store.
func (e *Engine) Stop() error {
	e.scheduler.Stop()
	return e.sessions.Close()
}

// Reload rebuilds the timer set from the remote in-process entries. Local
// session rows matching a remote entry restore the exact clock-in instant
// and carried-over seconds; rows without a remote counterpart are dropped.
func (e *Engine) Reload(ctx context.Context) error {
	entries, err := e.store.ListByUser(ctx, e.cfg.UserID)
	if err != nil {
		return err
	}
	localRows, err := e.sessions.List(ctx, e.cfg.UserID)
	if err != nil {
		e.logger.Warn("failed to load local timer sessions", tag.Error(err))
		localRows = nil
	}
	byEntryID := map[string]persistence.TimerSessionRow{}
	for _, row := range localRows {
		byEntryID[row.TimeEntryID] = row
	}

	now := e.clock.Now()
	timers := map[timerKey]*TimerState{}
	remoteEntryIDs := map[string]bool{}
	for i := range entries {
		entry := entries[i]
		if entry.Status != gateway.StatusInProcess {
			continue
		}
		remoteEntryIDs[entry.ID] = true

		state := &TimerState{
			IsRunning:   true,
			TimeEntryID: entry.ID,
		}
		if row, ok := byEntryID[entry.ID]; ok {
			state.ClockInTime = row.ClockInTime
			state.BaseElapsedSeconds = row.BaseElapsedSeconds
		} else {
			startLocal, err := e.normalizer.ToLocalInstant(entry.ExecStartDate, entry.ExecStartTime)
			if err != nil {
				e.logger.Warn("skipping in-process entry with unreadable start",
					tag.TimeEntry(entry.ID), tag.Error(err))
				continue
			}
			state.ClockInTime = startLocal
		}
		state.ElapsedSeconds = elapsedAt(state, now)
		timers[timerKey{entry.OrderID, entry.OperationID}] = state

		if upsertErr := e.sessions.Upsert(ctx, persistence.TimerSessionRow{
			UserID:             e.cfg.UserID,
			OrderID:            entry.OrderID,
			OperationID:        entry.OperationID,
			TimeEntryID:        entry.ID,
			ClockInTime:        state.ClockInTime,
			BaseElapsedSeconds: state.BaseElapsedSeconds,
		}); upsertErr != nil {
			e.logger.Warn("failed to persist timer session", tag.TimeEntry(entry.ID), tag.Error(upsertErr))
		}
	}

	for _, row := range localRows {
		if !remoteEntryIDs[row.TimeEntryID] {
			if delErr := e.sessions.Delete(ctx, row.UserID, row.OrderID, row.OperationID); delErr != nil {
				e.logger.Warn("failed to drop orphan timer session", tag.TimeEntry(row.TimeEntryID), tag.Error(delErr))
			}
		}
	}

	e.mu.Lock()
	e.timers = timers
	running := len(timers)
	e.mu.Unlock()
	metrics.SetActiveTimers(running)

	e.logger.Info("reloaded timers", tag.Value(running))
	if running > 0 {
		e.scheduler.Start()
	}
	return nil
}

// ListTimers returns a stable snapshot of all timers, running or stopped.
func (e *Engine) ListTimers() []TimerSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshots := make([]TimerSnapshot, 0, len(e.timers))
	for key, state := range e.timers {
		snapshots = append(snapshots, TimerSnapshot{
			OrderID:          key.orderID,
			OperationID:      key.operationID,
			TimerState:       *state,
			FormattedElapsed: FormatElapsed(state.ElapsedSeconds),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].OrderID != snapshots[j].OrderID {
			return snapshots[i].OrderID < snapshots[j].OrderID
		}
		return snapshots[i].OperationID < snapshots[j].OperationID
	})
	return snapshots
}

// ListOrders returns the open order operations, optionally narrowed by an
// order id fragment. Fragments shorter than three characters are rejected
// to keep the remote query selective.
func (e *Engine) ListOrders(ctx context.Context, search string) ([]gateway.OrderRow, error) {
	if search != "" && len(search) < 3 {
		return nil, newValidationError("order search needs at least 3 characters")
	}
	return e.catalog.ListOpen(ctx, search)
}

// tick recomputes elapsed seconds of every running timer. Returns false
// once no timer is running so the scheduler can stop itself.
func (e *Engine) tick(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	running := 0
	for _, state := range e.timers {
		if !state.IsRunning {
			continue
		}
		state.ElapsedSeconds = elapsedAt(state, now)
		running++
	}
	metrics.SetActiveTimers(running)
	return running > 0
}

func elapsedAt(state *TimerState, now time.Time) int64 {
	elapsed := int64(now.Sub(state.ClockInTime).Round(time.Second).Seconds()) + state.BaseElapsedSeconds
	if elapsed < 0 {
		return state.BaseElapsedSeconds
	}
	return elapsed
}

// personnelNumberFor resolves and caches the personnel number of the
// configured user.
func (e *Engine) personnelNumberFor(ctx context.Context) (string, error) {
	e.personnelMu.Lock()
	defer e.personnelMu.Unlock()
	if e.personnelNumber != "" {
		return e.personnelNumber, nil
	}
	number, err := e.personnel.Lookup(ctx, e.cfg.UserID)
	if err != nil {
		return "", err
	}
	e.personnelNumber = number
	e.logger.Info("cached personnel number", tag.User(e.cfg.UserID))
	return number, nil
}
