// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import "time"

// Clock abstracts wall time so elapsed accounting is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}
