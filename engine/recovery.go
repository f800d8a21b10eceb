// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sort"

	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/ptr"
	"github.com/plantops/timeclock/gateway"
)

// ListDrafts returns the recoverable entries of one class, annotated with
// the stored work interval for display. Entries with unreadable intervals
// still list, with a placeholder duration.
func (e *Engine) ListDrafts(ctx context.Context, class DraftClass) ([]DraftEntry, error) {
	entries, err := e.store.ListByUser(ctx, e.cfg.UserID)
	if err != nil {
		return nil, err
	}
	want := class.EntryStatus()
	var drafts []DraftEntry
	for i := range entries {
		entry := entries[i]
		if entry.Status != want {
			continue
		}
		draft := DraftEntry{
			TimeEntry:        entry,
			FormattedElapsed: "--:--",
		}
		if _, _, elapsed, err := e.storedWorkInterval(&entry); err == nil {
			draft.FormattedElapsed = formatHoursMinutes(elapsed)
			draft.RecomputedHours = roundHours(elapsed)
		}
		drafts = append(drafts, draft)
	}
	sort.Slice(drafts, func(i, j int) bool {
		if drafts[i].OrderID != drafts[j].OrderID {
			return drafts[i].OrderID < drafts[j].OrderID
		}
		return drafts[i].OperationID < drafts[j].OperationID
	})
	return drafts, nil
}

// RetryDraft rebuilds the confirmation proposal of a failed entry so the
// caller can review and submit it again through the regular pipeline.
func (e *Engine) RetryDraft(ctx context.Context, entryID string) (*DialogData, error) {
	entry, _, err := e.store.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != gateway.StatusError {
		return nil, &StaleEntryError{
			TimeEntryID: entryID,
			Expected:    gateway.StatusError,
			Actual:      entry.Status,
		}
	}
	start, end, elapsed, err := e.storedWorkInterval(entry)
	if err != nil {
		return nil, err
	}
	return &DialogData{
		TimeEntryID:       entry.ID,
		OrderID:           entry.OrderID,
		OperationID:       entry.OperationID,
		ActivityType:      entry.ActivityType,
		WorkStart:         start,
		WorkFinish:        end,
		ActualWorkHours:   roundHours(elapsed),
		ElapsedSeconds:    elapsed,
		FinalConfirmation: entry.OverheadFlag == overheadFlagFinal,
	}, nil
}

// DeleteDraft soft-deletes a recoverable entry. The caller must pass
// confirmed=true; the delete is refused otherwise so a UI can require an
// explicit confirmation step.
func (e *Engine) DeleteDraft(ctx context.Context, entryID string, class DraftClass, confirmed bool) (*Outcome, error) {
	if !confirmed {
		return nil, newValidationError("deleting a draft requires confirmation")
	}
	entry, etag, err := e.store.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != class.EntryStatus() {
		return nil, &StaleEntryError{
			TimeEntryID: entryID,
			Expected:    class.EntryStatus(),
			Actual:      entry.Status,
		}
	}
	if _, err := e.store.Patch(ctx, entryID, gateway.EntryPatch{
		Status: ptr.Any(gateway.StatusDeleted),
	}, etag); err != nil {
		return nil, wrapConflict(err, entryID)
	}
	e.logger.Info("draft deleted",
		tag.Order(entry.OrderID), tag.Operation(entry.OperationID), tag.TimeEntry(entryID))
	return &Outcome{
		Status:  gateway.StatusDeleted,
		Message: "draft deleted",
	}, nil
}
