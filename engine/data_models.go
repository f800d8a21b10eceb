// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"time"

	"github.com/plantops/timeclock/gateway"
)

type (
	// TimerState is the live state of one running or stopped timer.
	// ClockInTime is the local start of the current session and
	// BaseElapsedSeconds carries the seconds accumulated in earlier
	// interrupted sessions, so the total elapsed is always
	// base + (now - clockInTime).
	TimerState struct {
		ElapsedSeconds     int64     `json:"elapsedSeconds"`
		BaseElapsedSeconds int64     `json:"baseElapsedSeconds"`
		IsRunning          bool      `json:"isRunning"`
		ClockInTime        time.Time `json:"clockInTime"`
		TimeEntryID        string    `json:"timeEntryId"`
	}

	// TimerSnapshot is a timer with its identity, as reported to callers.
	TimerSnapshot struct {
		OrderID          string `json:"orderId"`
		OperationID      string `json:"operationId"`
		TimerState
		FormattedElapsed string `json:"formattedElapsed"`
	}

	// DialogData is the editable confirmation proposal produced by a clock-out
	// or a draft retry. The caller may adjust hours, note and the final flag
	// before submitting.
	DialogData struct {
		TimeEntryID       string    `json:"timeEntryId"`
		OrderID           string    `json:"orderId"`
		OperationID       string    `json:"operationId"`
		ActivityType      string    `json:"activityType"`
		WorkStart         time.Time `json:"workStart"`
		WorkFinish        time.Time `json:"workFinish"`
		ActualWorkHours   float64   `json:"actualWorkHours"`
		ElapsedSeconds    int64     `json:"elapsedSeconds"`
		Note              string    `json:"note"`
		FinalConfirmation bool      `json:"finalConfirmation"`
		// LiveClockOut is true when this proposal came from stopping a
		// running timer, false when it was rebuilt from a saved draft.
		LiveClockOut bool `json:"liveClockOut"`
	}

	// Outcome reports the result of a confirmation pipeline run.
	Outcome struct {
		Message                     string         `json:"message"`
		Status                      gateway.Status `json:"status"`
		ConfirmationNumber          string         `json:"confirmationNumber,omitempty"`
		ConfirmationCounter         string         `json:"confirmationCounter,omitempty"`
		OverheadConfirmationNumber  string         `json:"overheadConfirmationNumber,omitempty"`
		OverheadConfirmationCounter string         `json:"overheadConfirmationCounter,omitempty"`
		// Partial is true when the primary confirmation posted but the
		// overhead phase failed, leaving the entry retryable.
		Partial bool `json:"partial,omitempty"`
	}

	// DraftEntry is a recoverable entry annotated for display.
	DraftEntry struct {
		gateway.TimeEntry
		FormattedElapsed string  `json:"formattedElapsed"`
		RecomputedHours  float64 `json:"recomputedHours"`
	}

	// DraftClass selects which recoverable entries an operation targets.
	DraftClass string
)

const (
	DraftClassError    DraftClass = "error"
	DraftClassOverhead DraftClass = "overhead"
)

// EntryStatus returns the remote status a class of drafts carries.
func (c DraftClass) EntryStatus() gateway.Status {
	if c == DraftClassOverhead {
		return gateway.StatusOverheadError
	}
	return gateway.StatusError
}

type timerKey struct {
	orderID     string
	operationID string
}

// FormatElapsed renders seconds as hh:mm:ss for live timer display.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// formatHoursMinutes renders seconds as h:mm for draft annotations.
func formatHoursMinutes(seconds int64) string {
	if seconds < 0 {
		return "--:--"
	}
	return fmt.Sprintf("%d:%02d", seconds/3600, (seconds%3600)/60)
}

// roundHours converts seconds to hours with two decimal places, the
// precision shown for review before posting.
func roundHours(seconds int64) float64 {
	return float64(int64(float64(seconds)/3600*100+0.5)) / 100
}
