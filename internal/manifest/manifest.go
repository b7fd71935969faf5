// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package manifest caches per-file RecordReader metadata (size, data
// size, entry count) in a sqlite database, so a large dataset doesn't
// pay RecordReader.Metadata's full scan cost on every process start.
// Grounded on sqliteBackend.go's sqlite-as-cache pattern, rebuilt on
// sqlx/squirrel/golang-migrate instead of raw database/sql and a
// hand-rolled schema-version column.
package manifest

import (
	"database/sql"
	"embed"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/podgorskiy/DareBlopy/pkg/errs"
	"github.com/podgorskiy/DareBlopy/pkg/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Stat is one file_stats row: the metadata RecordReader.Metadata would
// otherwise have to recompute by scanning the file.
type Stat struct {
	Path       string `db:"path"`
	Size       int64  `db:"size"`
	DataSize   int64  `db:"data_size"`
	EntryCount int64  `db:"entry_count"`
	MTime      int64  `db:"mtime"`
	CheckedAt  int64  `db:"checked_at"`
}

// Manifest is a sqlite-backed file_stats cache.
type Manifest struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the sqlite database at dbPath and
// migrates it to the latest schema.
func Open(dbPath string) (*Manifest, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, errs.WithPath(errs.Io, "manifest.Open", dbPath, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warnf("manifest: pragma %q failed: %v", pragma, err)
		}
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manifest{db: db}, nil
}

func migrateUp(db *sqlx.DB) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errs.New(errs.Io, "manifest.migrateUp", err)
	}
	target, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return errs.New(errs.Io, "manifest.migrateUp", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", target)
	if err != nil {
		return errs.New(errs.Io, "manifest.migrateUp", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errs.New(errs.Io, "manifest.migrateUp", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (m *Manifest) Close() error { return m.db.Close() }

// Get returns the cached stat for path, if any.
func (m *Manifest) Get(path string) (Stat, bool, error) {
	query, args, err := sq.Select("path", "size", "data_size", "entry_count", "mtime", "checked_at").
		From("file_stats").
		Where(sq.Eq{"path": path}).
		ToSql()
	if err != nil {
		return Stat{}, false, errs.New(errs.Io, "manifest.Get", err)
	}

	var s Stat
	if err := m.db.Get(&s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stat{}, false, nil
		}
		return Stat{}, false, errs.WithPath(errs.Io, "manifest.Get", path, err)
	}
	return s, true, nil
}

// Put upserts s. squirrel has no native upsert builder, so the
// conflict clause is appended as a raw suffix.
func (m *Manifest) Put(s Stat) error {
	query, args, err := sq.Insert("file_stats").
		Columns("path", "size", "data_size", "entry_count", "mtime", "checked_at").
		Values(s.Path, s.Size, s.DataSize, s.EntryCount, s.MTime, s.CheckedAt).
		Suffix(`ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			data_size = excluded.data_size,
			entry_count = excluded.entry_count,
			mtime = excluded.mtime,
			checked_at = excluded.checked_at`).
		ToSql()
	if err != nil {
		return errs.New(errs.Io, "manifest.Put", err)
	}
	if _, err := m.db.Exec(query, args...); err != nil {
		return errs.WithPath(errs.Io, "manifest.Put", s.Path, err)
	}
	return nil
}

// Stale reports whether a cached stat should be recomputed because the
// file's mtime has moved on.
func (s Stat) Stale(currentMTime int64) bool {
	return currentMTime != s.MTime
}

// Now is a small seam so callers (and the revalidation job) can stamp
// CheckedAt without importing time directly into call sites that don't
// otherwise need it.
func Now() int64 { return time.Now().Unix() }
