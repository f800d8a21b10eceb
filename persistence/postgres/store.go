// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

// Package postgres is the SQL implementation of the timer session store.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/iancoleman/strcase"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // load the SQL driver for postgres

	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/persistence"
)

const (
	driverName = "postgres"
	dsnFmt     = "postgres://%s@%s:%s/%s"
)

type sqlStore struct {
	db *sqlx.DB
}

// NewTimerSessionStore connects to postgres and returns a durable timer
// session store.
func NewTimerSessionStore(cfg *config.SQL) (persistence.TimerSessionStore, error) {
	db, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return &sqlStore{db: db}, nil
}

func connect(cfg *config.SQL) (*sqlx.DB, error) {
	host, port, err := net.SplitHostPort(cfg.ConnectAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid connect address, it must be in host:port format, %v, err: %v", cfg.ConnectAddr, err)
	}

	sslParams := url.Values{}
	sslParams.Set("sslmode", "disable")
	db, err := sqlx.Connect(driverName, buildDSN(cfg, host, port, sslParams))
	if err != nil {
		return nil, err
	}

	// Maps struct names in CamelCase to snake without need for db struct tags.
	db.MapperFunc(strcase.ToSnake)
	return db, nil
}

func buildDSN(cfg *config.SQL, host string, port string, params url.Values) string {
	credentialString := cfg.User
	if cfg.Password != "" {
		credentialString += ":" + url.QueryEscape(cfg.Password)
	}
	dsn := fmt.Sprintf(dsnFmt, credentialString, host, port, cfg.DatabaseName)
	if attrs := params.Encode(); attrs != "" {
		dsn += "?" + attrs
	}
	return dsn
}

const upsertTimerSessionQuery = `INSERT INTO timer_sessions
	(user_id, order_id, operation_id, time_entry_id, clock_in_time, base_elapsed_seconds)
	VALUES (:user_id, :order_id, :operation_id, :time_entry_id, :clock_in_time, :base_elapsed_seconds)
	ON CONFLICT (user_id, order_id, operation_id) DO UPDATE SET
	time_entry_id = excluded.time_entry_id,
	clock_in_time = excluded.clock_in_time,
	base_elapsed_seconds = excluded.base_elapsed_seconds`

func (s *sqlStore) Upsert(ctx context.Context, row persistence.TimerSessionRow) error {
	_, err := s.db.NamedExecContext(ctx, upsertTimerSessionQuery, row)
	return err
}

const deleteTimerSessionQuery = `DELETE FROM timer_sessions
	WHERE user_id = $1 AND order_id = $2 AND operation_id = $3`

func (s *sqlStore) Delete(ctx context.Context, userID, orderID, operationID string) error {
	_, err := s.db.ExecContext(ctx, deleteTimerSessionQuery, userID, orderID, operationID)
	return err
}

const selectTimerSessionsQuery = `SELECT
	user_id, order_id, operation_id, time_entry_id, clock_in_time, base_elapsed_seconds
	FROM timer_sessions WHERE user_id = $1`

func (s *sqlStore) List(ctx context.Context, userID string) ([]persistence.TimerSessionRow, error) {
	var rows []persistence.TimerSessionRow
	err := s.db.SelectContext(ctx, &rows, selectTimerSessionsQuery, userID)
	return rows, err
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
