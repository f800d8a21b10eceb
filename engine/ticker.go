// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/plantops/timeclock/common/log"
)

// TickScheduler drives the periodic elapsed-time recomputation. The tick
// callback returns whether any timer is still running; the scheduler stops
// itself once it reports false. Start is idempotent while running.
type TickScheduler struct {
	interval time.Duration
	clock    Clock
	tick     func(now time.Time) bool
	logger   log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewTickScheduler(
	interval time.Duration, clock Clock, tick func(now time.Time) bool, logger log.Logger,
) *TickScheduler {
	return &TickScheduler{
		interval: interval,
		clock:    clock,
		tick:     tick,
		logger:   logger,
	}
}

func (s *TickScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.logger.Debug("tick scheduler started")
	go s.loop(ctx)
}

func (s *TickScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.logger.Debug("tick scheduler stopped")
}

func (s *TickScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *TickScheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.tick(s.clock.Now()) {
				s.Stop()
				return
			}
		}
	}
}
