// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metricstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	mattnsqlite3 "github.com/mattn/go-sqlite3"
	"github.com/qustavo/sqlhooks/v2"
)

//go:embed migrations/sqlite3/*.sql
var sqliteMigrations embed.FS

// SQLiteBackend is the local-development and test Backend. It models
// the same wide-column layout (tenant, rollup, period, path, time,
// data) as the production Cassandra table, but stores the value list
// as a JSON array since SQLite has no native list type, and emulates
// append semantics with a read-modify-write inside a transaction.
type SQLiteBackend struct {
	db *sqlx.DB
}

var registerHooksOnce = false

// NewSQLiteBackend opens (and migrates) a SQLite database at path,
// instrumenting every query through sqlhooks for slow-query logging.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	driverName := "sqlite3_metriccore"
	if !registerHooksOnce {
		sql.Register(driverName, sqlhooks.Wrap(&mattnsqlite3.SQLiteDriver{}, &queryLogHook{}))
		registerHooksOnce = true
	}

	db, err := sqlx.Open(driverName, fmt.Sprintf("%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("metricstore: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrateSQLite(db.DB); err != nil {
		return nil, err
	}

	return &SQLiteBackend{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("metricstore: sqlite migration driver: %w", err)
	}

	src, err := iofs.New(sqliteMigrations, "migrations/sqlite3")
	if err != nil {
		return fmt.Errorf("metricstore: loading embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("metricstore: building migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("metricstore: running migrations: %w", err)
	}
	return nil
}

// AppendBatch commits one transaction per batch, upserting each
// sample's key row and appending to its JSON-encoded value list.
func (b *SQLiteBackend) AppendBatch(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range samples {
		if err := appendOne(ctx, tx, s); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func appendOne(ctx context.Context, tx *sqlx.Tx, s Sample) error {
	sel, args, err := squirrel.Select("data").
		From("metric").
		Where(squirrel.Eq{
			"tenant": s.Tenant, "rollup": s.Rollup, "period": s.Period,
			"path": s.Path, "time": s.Time,
		}).
		ToSql()
	if err != nil {
		return err
	}

	var raw sql.NullString
	err = tx.QueryRowContext(ctx, sel, args...).Scan(&raw)

	var values []float64
	if err == nil && raw.Valid {
		if jerr := json.Unmarshal([]byte(raw.String), &values); jerr != nil {
			return jerr
		}
	} else if err != nil && err != sql.ErrNoRows {
		return err
	}

	values = append(values, s.Metric)
	encoded, err := json.Marshal(values)
	if err != nil {
		return err
	}

	upsert, args, err := squirrel.Insert("metric").
		Columns("tenant", "rollup", "period", "path", "time", "data", "ttl").
		Values(s.Tenant, s.Rollup, s.Period, s.Path, s.Time, string(encoded), s.TTL).
		Suffix("ON CONFLICT(tenant, rollup, period, path, time) DO UPDATE SET data = excluded.data, ttl = excluded.ttl").
		ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsert, args...)
	return err
}

// Fetch reads rows for one path within [from, to].
func (b *SQLiteBackend) Fetch(ctx context.Context, tenant, path string, rollup, period int32, from, to int64) ([]Row, error) {
	query, args, err := squirrel.Select("time", "data").
		From("metric").
		Where(squirrel.Eq{"tenant": tenant, "rollup": rollup, "period": period, "path": path}).
		Where(squirrel.GtOrEq{"time": from}).
		Where(squirrel.LtOrEq{"time": to}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rowsIter, err := b.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("metricstore: reading path %q: %w", path, err)
	}
	defer rowsIter.Close()

	var rows []Row
	for rowsIter.Next() {
		var t int64
		var raw string
		if err := rowsIter.Scan(&t, &raw); err != nil {
			return nil, err
		}
		var values []float64
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, err
		}
		rows = append(rows, Row{Time: t, Values: values})
	}

	return rows, rowsIter.Err()
}

// Close releases the underlying SQLite connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// queryLogHook logs every query at debug level through sqlhooks,
// mirroring the production Cassandra path's observability.
type queryLogHook struct{}

func (h *queryLogHook) Before(ctx context.Context, query string, args ...any) (context.Context, error) {
	cclog.Debugf("metricstore: sql query %q args=%v", query, args)
	return ctx, nil
}

func (h *queryLogHook) After(ctx context.Context, query string, args ...any) (context.Context, error) {
	return ctx, nil
}
