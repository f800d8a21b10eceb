// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package persistence

import (
	"context"
	"sync"
)

type sessionKey struct {
	userID      string
	orderID     string
	operationID string
}

type inMemStore struct {
	mu   sync.Mutex
	rows map[sessionKey]TimerSessionRow
}

// NewInMemTimerSessionStore keeps timer sessions in process memory only.
// Running timers are then reconstructed from the remote store on reload.
func NewInMemTimerSessionStore() TimerSessionStore {
	return &inMemStore{
		rows: map[sessionKey]TimerSessionRow{},
	}
}

func (s *inMemStore) Upsert(_ context.Context, row TimerSessionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sessionKey{row.UserID, row.OrderID, row.OperationID}] = row
	return nil
}

func (s *inMemStore) Delete(_ context.Context, userID, orderID, operationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, sessionKey{userID, orderID, operationID})
	return nil
}

func (s *inMemStore) List(_ context.Context, userID string) ([]TimerSessionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []TimerSessionRow
	for key, row := range s.rows {
		if key.userID == userID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *inMemStore) Close() error {
	return nil
}
