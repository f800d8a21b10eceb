// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plantops/timeclock/gateway"
)

func draftEntry(t *testing.T, id string, status gateway.Status, start time.Time, finish time.Time) gateway.TimeEntry {
	t.Helper()
	entry := inProcessEntry(t, id, "1234", "0010", start)
	entry.Status = status
	if !finish.IsZero() {
		date, clock := testNormalizer(t).BusinessDateClock(finish)
		entry.ExecFinDate = date
		entry.ExecFinTime = clock
	}
	return entry
}

func TestListDraftsFiltersAndAnnotates(t *testing.T) {
	start := time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		listFn: func(_ context.Context, userID string) ([]gateway.TimeEntry, error) {
			assert.Equal(t, testUserID, userID)
			return []gateway.TimeEntry{
				draftEntry(t, "err-1", gateway.StatusError, start, start.Add(90*time.Minute)),
				draftEntry(t, "ovh-1", gateway.StatusOverheadError, start, start.Add(time.Hour)),
				draftEntry(t, "done-1", gateway.StatusCompleted, start, start.Add(time.Hour)),
				draftEntry(t, "err-2", gateway.StatusError, start, time.Time{}),
			}, nil
		},
	}
	eng := newTestEngine(t, newFakeClock(time.Now()), store, &fakeConfirmations{}, &fakePersonnel{number: "00001234"})

	drafts, err := eng.ListDrafts(context.Background(), DraftClassError)
	assert.NoError(t, err)
	assert.Len(t, drafts, 2)
	assert.Equal(t, "err-1", drafts[0].ID)
	assert.Equal(t, "1:30", drafts[0].FormattedElapsed)
	assert.Equal(t, 1.5, drafts[0].RecomputedHours)
	// no finish on record, annotated with a placeholder
	assert.Equal(t, "err-2", drafts[1].ID)
	assert.Equal(t, "--:--", drafts[1].FormattedElapsed)

	overheadDrafts, err := eng.ListDrafts(context.Background(), DraftClassOverhead)
	assert.NoError(t, err)
	assert.Len(t, overheadDrafts, 1)
	assert.Equal(t, "ovh-1", overheadDrafts[0].ID)
}

func TestRetryDraftRebuildsProposal(t *testing.T) {
	start := time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)
	entry := draftEntry(t, "err-1", gateway.StatusError, start, start.Add(90*time.Second))
	entry.OverheadFlag = "T"
	store := &fakeStore{
		getFn: func(_ context.Context, _ string) (*gateway.TimeEntry, string, error) {
			copied := entry
			return &copied, "", nil
		},
	}
	eng := newTestEngine(t, newFakeClock(time.Now()), store, &fakeConfirmations{}, &fakePersonnel{number: "00001234"})

	proposal, err := eng.RetryDraft(context.Background(), "err-1")
	assert.NoError(t, err)
	assert.Equal(t, "err-1", proposal.TimeEntryID)
	assert.EqualValues(t, 90, proposal.ElapsedSeconds)
	assert.Equal(t, 0.03, proposal.ActualWorkHours)
	assert.True(t, proposal.FinalConfirmation)
	assert.False(t, proposal.LiveClockOut)
}

func TestRetryDraftRejectsWrongStatus(t *testing.T) {
	store := &fakeStore{
		getFn: func(_ context.Context, entryID string) (*gateway.TimeEntry, string, error) {
			return &gateway.TimeEntry{ID: entryID, Status: gateway.StatusInProcess}, "", nil
		},
	}
	eng := newTestEngine(t, newFakeClock(time.Now()), store, &fakeConfirmations{}, &fakePersonnel{number: "00001234"})

	_, err := eng.RetryDraft(context.Background(), "e1")
	var staleErr *StaleEntryError
	assert.ErrorAs(t, err, &staleErr)
	assert.Equal(t, gateway.StatusError, staleErr.Expected)
}

func TestDeleteDraftRequiresConfirmation(t *testing.T) {
	eng := newTestEngine(t, newFakeClock(time.Now()), &fakeStore{}, &fakeConfirmations{}, &fakePersonnel{number: "00001234"})

	_, err := eng.DeleteDraft(context.Background(), "e1", DraftClassError, false)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDeleteDraftSoftDeletes(t *testing.T) {
	start := time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)
	entry := draftEntry(t, "err-1", gateway.StatusError, start, start.Add(time.Hour))
	var patched *gateway.EntryPatch
	var usedTag string
	store := &fakeStore{
		getFn: func(_ context.Context, _ string) (*gateway.TimeEntry, string, error) {
			copied := entry
			return &copied, `W/"9"`, nil
		},
		patchFn: func(_ context.Context, _ string, patch gateway.EntryPatch, knownTag string) (string, error) {
			patched = &patch
			usedTag = knownTag
			return `W/"10"`, nil
		},
	}
	eng := newTestEngine(t, newFakeClock(time.Now()), store, &fakeConfirmations{}, &fakePersonnel{number: "00001234"})

	outcome, err := eng.DeleteDraft(context.Background(), "err-1", DraftClassError, true)
	assert.NoError(t, err)
	assert.Equal(t, gateway.StatusDeleted, outcome.Status)
	assert.NotNil(t, patched)
	assert.Equal(t, gateway.StatusDeleted, *patched.Status)
	assert.Equal(t, `W/"9"`, usedTag)
}

func TestDeleteDraftRejectsClassMismatch(t *testing.T) {
	store := &fakeStore{
		getFn: func(_ context.Context, entryID string) (*gateway.TimeEntry, string, error) {
			return &gateway.TimeEntry{ID: entryID, Status: gateway.StatusError}, "", nil
		},
	}
	eng := newTestEngine(t, newFakeClock(time.Now()), store, &fakeConfirmations{}, &fakePersonnel{number: "00001234"})

	_, err := eng.DeleteDraft(context.Background(), "e1", DraftClassOverhead, true)
	var staleErr *StaleEntryError
	assert.ErrorAs(t, err, &staleErr)
}
