// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plantops/timeclock/common/businesstime"
	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/gateway"
	"github.com/plantops/timeclock/persistence"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeStore struct {
	listFn   func(ctx context.Context, userID string) ([]gateway.TimeEntry, error)
	getFn    func(ctx context.Context, entryID string) (*gateway.TimeEntry, string, error)
	createFn func(ctx context.Context, entry gateway.TimeEntry) (*gateway.TimeEntry, error)
	patchFn  func(ctx context.Context, entryID string, patch gateway.EntryPatch, knownTag string) (string, error)
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]gateway.TimeEntry, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, userID)
}

func (f *fakeStore) Get(ctx context.Context, entryID string) (*gateway.TimeEntry, string, error) {
	return f.getFn(ctx, entryID)
}

func (f *fakeStore) Create(ctx context.Context, entry gateway.TimeEntry) (*gateway.TimeEntry, error) {
	return f.createFn(ctx, entry)
}

func (f *fakeStore) Patch(
	ctx context.Context, entryID string, patch gateway.EntryPatch, knownTag string,
) (string, error) {
	return f.patchFn(ctx, entryID, patch, knownTag)
}

type fakeConfirmations struct {
	primaryFn  func(ctx context.Context, input gateway.ConfirmationInput) (*gateway.ConfirmationResult, error)
	overheadFn func(ctx context.Context, input gateway.ConfirmationInput) (*gateway.ConfirmationResult, error)
}

func (f *fakeConfirmations) PostPrimary(
	ctx context.Context, input gateway.ConfirmationInput,
) (*gateway.ConfirmationResult, error) {
	return f.primaryFn(ctx, input)
}

func (f *fakeConfirmations) PostOverhead(
	ctx context.Context, input gateway.ConfirmationInput,
) (*gateway.ConfirmationResult, error) {
	return f.overheadFn(ctx, input)
}

type fakePersonnel struct {
	mu     sync.Mutex
	number string
	err    error
	calls  int
}

func (f *fakePersonnel) Lookup(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.number, f.err
}

type fakeCatalog struct {
	rows   []gateway.OrderRow
	err    error
	filter string
}

func (f *fakeCatalog) ListOpen(_ context.Context, orderIDFilter string) ([]gateway.OrderRow, error) {
	f.filter = orderIDFilter
	return f.rows, f.err
}

const testUserID = "WORKER01"

func testNormalizer(t *testing.T) *businesstime.Normalizer {
	t.Helper()
	n, err := businesstime.NewNormalizer("UTC")
	assert.NoError(t, err)
	return n
}

func newTestEngine(
	t *testing.T, clock *fakeClock, store *fakeStore, confirmations *fakeConfirmations, personnel *fakePersonnel,
) *Engine {
	t.Helper()
	return NewEngine(config.EngineConfig{
		UserID:               testUserID,
		BusinessTimezone:     "UTC",
		OverheadActivityType: "OVRHD",
		TickInterval:         time.Minute,
	}, testNormalizer(t), Dependencies{
		Store:         store,
		Confirmations: confirmations,
		Personnel:     personnel,
		Catalog:       &fakeCatalog{},
		Sessions:      persistence.NewInMemTimerSessionStore(),
	}, clock, log.NewDevelopmentLogger())
}

// inProcessEntry builds a remote entry whose exec start fields encode the
// given instant on the business clock.
func inProcessEntry(t *testing.T, id, orderID, operationID string, start time.Time) gateway.TimeEntry {
	t.Helper()
	date, clock := testNormalizer(t).BusinessDateClock(start)
	return gateway.TimeEntry{
		ID:            id,
		OrderID:       orderID,
		OperationID:   operationID,
		UserID:        testUserID,
		ActivityType:  "MNT",
		ExecStartDate: date,
		ExecStartTime: clock,
		Status:        gateway.StatusInProcess,
	}
}
