// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

// Package businesstime converts between the fixed business timezone used by
// the backend for all date/time fields and the local wall clock of this
// process. The backend stores dates and times as separate zone-less fields,
// so the conversion works on rendered wall-clock strings: the current offset
// is derived by rendering "now" in both zones and diffing the naive
// re-parses. This keeps the conversion correct even when the runtime cannot
// parse arbitrary zone-annotated timestamps.
package businesstime

import (
	"fmt"
	"time"
)

const (
	// ISOLayout is the zone-less wire layout for combined date/time fields.
	ISOLayout = "2006-01-02T15:04:05"
	// DateLayout and ClockLayout are the wire layouts of the split fields.
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Normalizer converts instants between the local clock and the business zone.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// NewNormalizer loads the given IANA zone name, e.g. "America/Chicago".
func NewNormalizer(zone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", zone, err)
	}
	return &Normalizer{loc: loc, now: time.Now}, nil
}

// WithNowFunc overrides the clock, for deterministic tests.
func (n *Normalizer) WithNowFunc(now func() time.Time) *Normalizer {
	return &Normalizer{loc: n.loc, now: now}
}

// Zone returns the business zone location.
func (n *Normalizer) Zone() *time.Location {
	return n.loc
}

// ToBusinessISO renders the instant as a zone-less ISO string on the
// business clock.
func (n *Normalizer) ToBusinessISO(t time.Time) string {
	return t.In(n.loc).Format(ISOLayout)
}

// BusinessDateClock renders the instant as the split date and time fields of
// the remote schema.
func (n *Normalizer) BusinessDateClock(t time.Time) (string, string) {
	bt := t.In(n.loc)
	return bt.Format(DateLayout), bt.Format(ClockLayout)
}

// ToLocalInstant converts split business-zone date/time fields back to a
// local instant by applying the current offset between the two clocks. The
// offset is computed from "now" rendered in both zones, not from the zone
// database, so it tracks DST the same way the rendering does.
func (n *Normalizer) ToLocalInstant(businessDate, businessClock string) (time.Time, error) {
	if businessDate == "" || businessClock == "" {
		return time.Time{}, fmt.Errorf("empty business date/time: %q %q", businessDate, businessClock)
	}
	naive, err := time.ParseInLocation(ISOLayout, businessDate+"T"+businessClock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed business date/time %q %q: %w", businessDate, businessClock, err)
	}
	return naive.Add(n.currentOffset()), nil
}

// currentOffset is localWall(now) - businessWall(now), both re-parsed as
// naive local timestamps.
func (n *Normalizer) currentOffset() time.Duration {
	now := n.now().Truncate(time.Second)
	localNaive, _ := time.ParseInLocation(ISOLayout, now.Format(ISOLayout), time.Local)
	businessNaive, _ := time.ParseInLocation(ISOLayout, n.ToBusinessISO(now), time.Local)
	return localNaive.Sub(businessNaive)
}
