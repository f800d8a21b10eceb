// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"

	"github.com/plantops/timeclock/gateway"
)

var (
	// ErrAlreadyClockedIn is returned when an in-process entry already
	// exists for the requested order operation.
	ErrAlreadyClockedIn = errors.New("an in-process time entry already exists for this operation")

	// ErrNoActiveTimer is returned when a clock-out targets an operation
	// without a running timer.
	ErrNoActiveTimer = errors.New("no active timer for this operation")

	// ErrReloadRequired signals that the remote entry changed in another
	// session and local state must be refreshed before retrying.
	ErrReloadRequired = errors.New("reload required")
)

// ValidationError rejects malformed input before any remote call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StaleEntryError is returned when a pre-action status check finds the
// remote entry in a different state than this session last saw.
type StaleEntryError struct {
	TimeEntryID string
	Expected    gateway.Status
	Actual      gateway.Status
}

func (e *StaleEntryError) Error() string {
	return fmt.Sprintf("time entry %v is now %v, expected %v, reload required",
		e.TimeEntryID, e.Actual, e.Expected)
}

func (e *StaleEntryError) Unwrap() error {
	return ErrReloadRequired
}

// PipelineError wraps a confirmation posting failure with the phase that
// failed and the message extracted from the remote response.
type PipelineError struct {
	Phase string
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%v confirmation failed: %v", e.Phase, e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}
