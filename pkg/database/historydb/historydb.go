// Lux
// Copyright (c) 2026 The Lux Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Lux.
//
// Lux is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lux is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lux.  If not, see <http://www.gnu.org/licenses/>.

// Package historydb records every launch lux performs in a small sqlite
// database, for the mgmt listing and for diagnosing failed starts.
package historydb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/luxtorpeda-dev/lux/pkg/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// File is the database filename inside the data dir.
const File = "history.db"

var ErrNullSQL = errors.New("history database is not connected")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Launch is one finished (or failed) launch.
type Launch struct {
	StartedAt time.Time
	EndedAt   time.Time
	RunID     string
	AppID     string
	Program   string
	Kind      string
	Error     string
	Args      []string
	DBID      int64
	ExitCode  int
}

// Succeeded reports whether the game was started and exited cleanly.
func (l Launch) Succeeded() bool {
	return l.Error == "" && l.ExitCode == 0
}

type Options struct {
	Clock clockwork.Clock
	// RunID is stored with launches that don't carry their own.
	RunID string
	Path  string
}

type HistoryDB struct {
	sql   *sql.DB
	clock clockwork.Clock
	runID string
}

// Open opens or creates the database at opts.Path and migrates it.
func Open(ctx context.Context, opts Options) (*HistoryDB, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlDB, err := sql.Open("sqlite3", opts.Path+database.SQLiteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := database.MigrateUp(ctx, sqlDB, migrationFiles, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run history database migrations: %w", err)
	}
	return newHistoryDB(sqlDB, opts), nil
}

func newHistoryDB(sqlDB *sql.DB, opts Options) *HistoryDB {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HistoryDB{sql: sqlDB, clock: clock, runID: opts.RunID}
}

func (db *HistoryDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Record stores l. Zero timestamps are filled from the clock.
func (db *HistoryDB) Record(ctx context.Context, l Launch) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	now := db.clock.Now()
	if l.StartedAt.IsZero() {
		l.StartedAt = now
	}
	if l.EndedAt.IsZero() {
		l.EndedAt = now
	}
	if l.RunID == "" {
		l.RunID = db.runID
	}
	if l.Args == nil {
		l.Args = []string{}
	}
	args, err := json.Marshal(l.Args)
	if err != nil {
		return fmt.Errorf("failed to encode launch args: %w", err)
	}

	_, err = db.sql.ExecContext(ctx, `
		insert into Launches(
			RunID, AppID, Program, Args, StartedAt, EndedAt, ExitCode, Kind, Error
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		l.RunID,
		l.AppID,
		l.Program,
		string(args),
		l.StartedAt.UnixMilli(),
		l.EndedAt.UnixMilli(),
		l.ExitCode,
		l.Kind,
		l.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to execute launch insert: %w", err)
	}
	return nil
}

// Recent returns up to limit launches, newest first.
func (db *HistoryDB) Recent(ctx context.Context, limit int) ([]Launch, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	rows, err := db.sql.QueryContext(ctx, `
		select DBID, RunID, AppID, Program, Args, StartedAt, EndedAt, ExitCode, Kind, Error
		from Launches
		order by StartedAt desc, DBID desc
		limit ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query launches: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	list := make([]Launch, 0, limit)
	for rows.Next() {
		var (
			l                 Launch
			args              string
			started, finished int64
		)
		if err := rows.Scan(
			&l.DBID, &l.RunID, &l.AppID, &l.Program, &args,
			&started, &finished, &l.ExitCode, &l.Kind, &l.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan launch row: %w", err)
		}
		if err := json.Unmarshal([]byte(args), &l.Args); err != nil {
			log.Warn().Err(err).Int64("dbid", l.DBID).Msg("invalid stored launch args")
		}
		l.StartedAt = time.UnixMilli(started)
		l.EndedAt = time.UnixMilli(finished)
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read launch rows: %w", err)
	}
	return list, nil
}

// Prune deletes launches that started more than retention ago.
func (db *HistoryDB) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	cutoff := db.clock.Now().Add(-retention).UnixMilli()
	result, err := db.sql.ExecContext(ctx, `delete from Launches where StartedAt < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to execute launch cleanup: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		log.Debug().Int64("rows", n).Msg("pruned launch history")
	}
	return n, nil
}
