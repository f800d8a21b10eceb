// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/common/ptr"
	"github.com/plantops/timeclock/gateway"
)

const (
	// OverheadFlag wire values. "T"/"F" carry the final-confirmation choice
	// while the pipeline runs; "X" marks the overhead phase as posted.
	overheadFlagFinal    = "T"
	overheadFlagNotFinal = "F"
	overheadFlagPosted   = "X"

	workUnitHours = "HR"

	phasePrimary  = "primary"
	phaseOverhead = "overhead"
)

// SubmitConfirmation runs the two-phase confirmation pipeline for a reviewed
// proposal. The entry's work figures are saved first, then the primary
// confirmation posts, then the overhead confirmation. A primary failure moves
// the entry to Error; an overhead failure after a posted primary moves it to
// OverheadError and returns a partial outcome so the primary result is never
// re-posted.
func (e *Engine) SubmitConfirmation(ctx context.Context, d DialogData) (*Outcome, error) {
	if err := validateProposal(d); err != nil {
		return nil, err
	}
	personnelNumber, err := e.personnelNumberFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot confirm without a personnel number: %w", err)
	}

	input := gateway.ConfirmationInput{
		OrderID:           d.OrderID,
		OperationID:       d.OperationID,
		PersonnelNumber:   personnelNumber,
		ActivityType:      d.ActivityType,
		WorkStart:         d.WorkStart,
		WorkFinish:        d.WorkFinish,
		ActualWorkHours:   d.ActualWorkHours,
		ElapsedSeconds:    d.ElapsedSeconds,
		FinalConfirmation: d.FinalConfirmation,
		Note:              d.Note,
	}

	finDate, finClock := e.normalizer.BusinessDateClock(d.WorkFinish)
	etag, err := e.store.Patch(ctx, d.TimeEntryID, gateway.EntryPatch{
		ActualWorkHours: ptr.Any(d.ActualWorkHours),
		WorkUnit:        ptr.Any(workUnitHours),
		ExecFinDate:     ptr.Any(finDate),
		ExecFinTime:     ptr.Any(finClock),
		OverheadFlag:    ptr.Any(finalFlag(d.FinalConfirmation)),
		ClockOutLog:     ptr.Any(e.normalizer.ToBusinessISO(d.WorkFinish) + "Z"),
	}, "")
	if err != nil {
		return nil, wrapConflict(err, d.TimeEntryID)
	}

	primary, err := e.confirmations.PostPrimary(ctx, input)
	if err != nil {
		e.markStatus(ctx, d.TimeEntryID, gateway.StatusError, etag)
		return nil, &PipelineError{Phase: phasePrimary, Cause: err}
	}

	etag, err = e.store.Patch(ctx, d.TimeEntryID, gateway.EntryPatch{
		Status:              ptr.Any(gateway.StatusPrimaryDone),
		ConfirmationNumber:  ptr.Any(primary.Number),
		ConfirmationCounter: ptr.Any(primary.Counter),
	}, etag)
	if err != nil {
		return nil, fmt.Errorf("primary confirmation %v posted but could not be recorded: %w",
			primary.Number, wrapConflict(err, d.TimeEntryID))
	}

	overhead, err := e.confirmations.PostOverhead(ctx, input)
	if err != nil {
		e.markStatus(ctx, d.TimeEntryID, gateway.StatusOverheadError, etag)
		e.logger.Warn("overhead confirmation failed after posted primary",
			tag.TimeEntry(d.TimeEntryID), tag.Error(err))
		return &Outcome{
			Status:              gateway.StatusOverheadError,
			ConfirmationNumber:  primary.Number,
			ConfirmationCounter: primary.Counter,
			Partial:             true,
			Message: fmt.Sprintf(
				"confirmation %v for order %v operation %v is saved, but the overhead posting failed: %v. Retry it from the overhead queue.",
				primary.Number, d.OrderID, d.OperationID, err),
		}, nil
	}

	if _, err := e.store.Patch(ctx, d.TimeEntryID, gateway.EntryPatch{
		Status:                      ptr.Any(gateway.StatusCompleted),
		OverheadFlag:                ptr.Any(overheadFlagPosted),
		OverheadConfirmationNumber:  ptr.Any(overhead.Number),
		OverheadConfirmationCounter: ptr.Any(overhead.Counter),
	}, etag); err != nil {
		return nil, fmt.Errorf("confirmations posted but the entry could not be completed: %w",
			wrapConflict(err, d.TimeEntryID))
	}

	e.logger.Info("confirmation pipeline completed",
		tag.Order(d.OrderID), tag.Operation(d.OperationID), tag.TimeEntry(d.TimeEntryID))
	return &Outcome{
		Status:                      gateway.StatusCompleted,
		ConfirmationNumber:          primary.Number,
		ConfirmationCounter:         primary.Counter,
		OverheadConfirmationNumber:  overhead.Number,
		OverheadConfirmationCounter: overhead.Counter,
		Message: fmt.Sprintf("confirmation %v posted for order %v operation %v",
			primary.Number, d.OrderID, d.OperationID),
	}, nil
}

// CancelReview abandons a confirmation proposal. A live clock-out proposal
// has already stopped its timer, so the entry is closed out and moved to the
// error drafts where it can be retried or deleted later. Cancelling a draft
// retry changes nothing remotely.
func (e *Engine) CancelReview(ctx context.Context, d DialogData) (*Outcome, error) {
	if !d.LiveClockOut {
		return &Outcome{Message: "review cancelled"}, nil
	}
	if d.TimeEntryID == "" {
		return nil, newValidationError("time entry id is required")
	}
	finDate, finClock := e.normalizer.BusinessDateClock(d.WorkFinish)
	if _, err := e.store.Patch(ctx, d.TimeEntryID, gateway.EntryPatch{
		Status:      ptr.Any(gateway.StatusError),
		ExecFinDate: ptr.Any(finDate),
		ExecFinTime: ptr.Any(finClock),
		ClockOutLog: ptr.Any(e.normalizer.ToBusinessISO(d.WorkFinish) + "Z"),
	}, ""); err != nil {
		return nil, wrapConflict(err, d.TimeEntryID)
	}
	e.logger.Info("review cancelled, entry moved to drafts", tag.TimeEntry(d.TimeEntryID))
	return &Outcome{
		Status:  gateway.StatusError,
		Message: fmt.Sprintf("time entry for order %v operation %v moved to drafts", d.OrderID, d.OperationID),
	}, nil
}

// RetryOverhead re-posts the overhead confirmation of an entry whose primary
// phase already succeeded. The work figures are rebuilt from the stored
// entry, so the primary confirmation is never posted again.
func (e *Engine) RetryOverhead(ctx context.Context, entryID string) (*Outcome, error) {
	entry, etag, err := e.store.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != gateway.StatusOverheadError {
		return nil, &StaleEntryError{
			TimeEntryID: entryID,
			Expected:    gateway.StatusOverheadError,
			Actual:      entry.Status,
		}
	}
	personnelNumber, err := e.personnelNumberFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot confirm without a personnel number: %w", err)
	}

	start, end, elapsed, err := e.storedWorkInterval(entry)
	if err != nil {
		return nil, err
	}

	overhead, err := e.confirmations.PostOverhead(ctx, gateway.ConfirmationInput{
		OrderID:           entry.OrderID,
		OperationID:       entry.OperationID,
		PersonnelNumber:   personnelNumber,
		ActivityType:      entry.ActivityType,
		WorkStart:         start,
		WorkFinish:        end,
		ActualWorkHours:   float64(entry.ActualWorkHours),
		ElapsedSeconds:    elapsed,
		FinalConfirmation: entry.OverheadFlag == overheadFlagFinal,
	})
	if err != nil {
		return nil, &PipelineError{Phase: phaseOverhead, Cause: err}
	}

	if _, err := e.store.Patch(ctx, entryID, gateway.EntryPatch{
		Status:                      ptr.Any(gateway.StatusCompleted),
		OverheadFlag:                ptr.Any(overheadFlagPosted),
		OverheadConfirmationNumber:  ptr.Any(overhead.Number),
		OverheadConfirmationCounter: ptr.Any(overhead.Counter),
	}, etag); err != nil {
		return nil, fmt.Errorf("overhead confirmation posted but the entry could not be completed: %w",
			wrapConflict(err, entryID))
	}

	e.logger.Info("overhead confirmation retried",
		tag.Order(entry.OrderID), tag.Operation(entry.OperationID), tag.TimeEntry(entryID))
	return &Outcome{
		Status:                      gateway.StatusCompleted,
		ConfirmationNumber:          entry.ConfirmationNumber,
		ConfirmationCounter:         entry.ConfirmationCounter,
		OverheadConfirmationNumber:  overhead.Number,
		OverheadConfirmationCounter: overhead.Counter,
		Message: fmt.Sprintf("overhead confirmation %v posted for order %v operation %v",
			overhead.Number, entry.OrderID, entry.OperationID),
	}, nil
}

// storedWorkInterval rebuilds the local work interval of a stored entry.
func (e *Engine) storedWorkInterval(entry *gateway.TimeEntry) (start, end time.Time, elapsed int64, err error) {
	start, err = e.normalizer.ToLocalInstant(entry.ExecStartDate, entry.ExecStartTime)
	if err != nil {
		return start, end, 0, fmt.Errorf("entry %v has an unreadable start: %w", entry.ID, err)
	}
	end, err = e.normalizer.ToLocalInstant(entry.ExecFinDate, entry.ExecFinTime)
	if err != nil {
		return start, end, 0, fmt.Errorf("entry %v has an unreadable finish: %w", entry.ID, err)
	}
	elapsed = int64(end.Sub(start).Round(time.Second).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	return start, end, elapsed, nil
}

// markStatus is a best-effort status transition after a posting failure. The
// posting error is the one the caller needs to see; a failure here only logs.
func (e *Engine) markStatus(ctx context.Context, entryID string, status gateway.Status, etag string) {
	if _, err := e.store.Patch(ctx, entryID, gateway.EntryPatch{
		Status: ptr.Any(status),
	}, etag); err != nil {
		e.logger.Error("failed to mark time entry after posting failure",
			tag.TimeEntry(entryID), tag.EntryStatus(string(status)), tag.Error(err))
	}
}

func validateProposal(d DialogData) error {
	if d.TimeEntryID == "" {
		return newValidationError("time entry id is required")
	}
	if d.WorkStart.IsZero() || d.WorkFinish.IsZero() {
		return newValidationError("work start and finish are required")
	}
	if !d.WorkFinish.After(d.WorkStart) {
		return newValidationError("work finish must be after work start")
	}
	if d.ActualWorkHours < 0 {
		return newValidationError("actual work hours cannot be negative")
	}
	return nil
}

func finalFlag(final bool) string {
	if final {
		return overheadFlagFinal
	}
	return overheadFlagNotFinal
}

func wrapConflict(err error, entryID string) error {
	if errors.Is(err, gateway.ErrConflict) {
		return fmt.Errorf("time entry %v was changed in another session: %w", entryID, ErrReloadRequired)
	}
	return err
}
