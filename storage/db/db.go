// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives cache benchmark datasets in a SQL database.
package db

import (
	"context"
	"database/sql"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"cacheplot/cachelog"
	"cacheplot/dataset"
)

// A DB is an archive of cache benchmark datasets. Each archived
// dataset is an upload holding its records and their metrics. A DB may
// be shared by concurrent goroutines.
type DB struct {
	sql *sql.DB

	newUpload *sql.Stmt // allocates an upload ID
	addRecord *sql.Stmt // stores one row of Records
}

// OpenSQL opens the archive at dataSourceName using the named
// database/sql driver, creating its tables if they do not exist.
// The schema is written for mysql and sqlite3.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	conn, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook, ok := openHooks[driverName]; ok {
		if err := hook(conn); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "configuring %s", driverName)
		}
	}
	db := &DB{sql: conn}
	if err := db.migrate(driverName); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.prepare(driverName); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

var openHooks = map[string]func(*sql.DB) error{}

// RegisterOpenHook arranges for hook to configure every *sql.DB that
// OpenSQL opens with driverName, before any table is touched. Driver
// packages call it from init.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// schema holds the CREATE statements of the archive, separated by
// semicolons. It is executed with a map whose only true key is the
// driver name.
var schema = template.Must(template.New("schema").Parse(`
CREATE TABLE IF NOT EXISTS Uploads (
	UploadID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}}
);
CREATE TABLE IF NOT EXISTS Records (
	UploadID BIGINT UNSIGNED NOT NULL,
	RecordID BIGINT UNSIGNED NOT NULL,
	Target VARCHAR(255) NOT NULL,
	KB BIGINT,
	NsecPerKB DOUBLE,
	PRIMARY KEY (UploadID, RecordID),
	FOREIGN KEY (UploadID) REFERENCES Uploads(UploadID) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS RecordMetrics (
	UploadID BIGINT UNSIGNED NOT NULL,
	RecordID BIGINT UNSIGNED NOT NULL,
	Pos INT NOT NULL,
	Name VARCHAR(255) NOT NULL,
	Value BIGINT,
	PRIMARY KEY (UploadID, RecordID, Pos),
{{- if not .sqlite3}}
	INDEX (Name(100)),
{{- end}}
	FOREIGN KEY (UploadID, RecordID) REFERENCES Records(UploadID, RecordID) ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RecordMetricsName ON RecordMetrics(Name);
{{end}}
`))

// migrate creates whatever tables of the schema are missing.
func (db *DB) migrate(driverName string) error {
	var ddl strings.Builder
	if err := schema.Execute(&ddl, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, stmt := range strings.Split(ddl.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := db.sql.Exec(stmt); err != nil {
			return errors.Wrapf(err, "creating archive tables")
		}
	}
	return nil
}

// prepare compiles the statements used for every upload.
func (db *DB) prepare(driverName string) error {
	newUpload := "INSERT INTO Uploads() VALUES ()"
	if driverName == "sqlite3" {
		newUpload = "INSERT INTO Uploads DEFAULT VALUES"
	}
	for _, s := range []struct {
		stmt  **sql.Stmt
		query string
	}{
		{&db.newUpload, newUpload},
		{&db.addRecord, "INSERT INTO Records(UploadID, RecordID, Target, KB, NsecPerKB) VALUES (?, ?, ?, ?, ?)"},
	} {
		stmt, err := db.sql.Prepare(s.query)
		if err != nil {
			return errors.Wrapf(err, "preparing %q", s.query)
		}
		*s.stmt = stmt
	}
	return nil
}

// An Upload is one archived dataset.
type Upload struct {
	// ID names the upload for Records and the --from-upload flag.
	ID string

	id   int64 // UploadID column
	next int64 // RecordID of the next record
	db   *DB
}

// NewUpload returns an upload for storing new records.
func (db *DB) NewUpload(ctx context.Context) (*Upload, error) {
	res, err := db.newUpload.ExecContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "new upload")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Upload{ID: strconv.FormatInt(id, 10), id: id, db: db}, nil
}

// InsertRecord inserts a single record in an existing upload. The
// record and its metrics are written in one transaction.
func (u *Upload) InsertRecord(ctx context.Context, r *cachelog.Record) (err error) {
	tx, err := u.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if _, err = tx.StmtContext(ctx, u.db.addRecord).ExecContext(ctx, u.id, u.next, r.Target, r.KB, r.NsecPerKB); err != nil {
		return err
	}
	if len(r.Metrics) > 0 {
		values := make([]string, len(r.Metrics))
		args := make([]interface{}, 0, 5*len(r.Metrics))
		for i, m := range r.Metrics {
			values[i] = "(?, ?, ?, ?, ?)"
			args = append(args, u.id, u.next, i, m.Name, m.Value)
		}
		query := "INSERT INTO RecordMetrics(UploadID, RecordID, Pos, Name, Value) VALUES " + strings.Join(values, ", ")
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	u.next++
	return nil
}

// InsertDataset stores every record of ds in a new upload. If any
// record cannot be stored, the upload is deleted again.
func (db *DB) InsertDataset(ctx context.Context, ds *dataset.Dataset) (*Upload, error) {
	u, err := db.NewUpload(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range ds.Records() {
		if err := u.InsertRecord(ctx, rec); err != nil {
			err = errors.Wrapf(err, "upload %s: record %s", u.ID, rec.Target)
			if aerr := u.Abort(context.WithoutCancel(ctx)); aerr != nil {
				return nil, errors.Wrapf(err, "deleting upload after error: %v", aerr)
			}
			return nil, err
		}
	}
	return u, nil
}

// Abort deletes u together with every record stored in it.
func (u *Upload) Abort(ctx context.Context) (err error) {
	tx, err := u.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	for _, table := range []string{"RecordMetrics", "Records", "Uploads"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE UploadID = ?", u.id); err != nil {
			return errors.Wrapf(err, "deleting upload %s from %s", u.ID, table)
		}
	}
	return nil
}

// Records returns the records of the upload with the given ID in the
// order they were inserted. An upload of an empty dataset has no
// records; an unknown ID is an error.
func (db *DB) Records(ctx context.Context, uploadID string) ([]*cachelog.Record, error) {
	id, err := strconv.ParseInt(uploadID, 10, 64)
	if err != nil {
		return nil, errors.Errorf("invalid upload ID %q", uploadID)
	}

	// Each result set is drained before the next query so that a
	// single-connection database does not deadlock.
	rows, err := db.sql.QueryContext(ctx, "SELECT RecordID, Target, KB, NsecPerKB FROM Records WHERE UploadID = ? ORDER BY RecordID", id)
	if err != nil {
		return nil, err
	}
	var recs []*cachelog.Record
	byID := make(map[int64]*cachelog.Record)
	for rows.Next() {
		var recordID int64
		rec := new(cachelog.Record)
		if err := rows.Scan(&recordID, &rec.Target, &rec.KB, &rec.NsecPerKB); err != nil {
			rows.Close()
			return nil, err
		}
		recs = append(recs, rec)
		byID[recordID] = rec
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(recs) == 0 {
		var n int
		if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Uploads WHERE UploadID = ?", id).Scan(&n); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errors.Errorf("upload %s not found", uploadID)
		}
		return nil, nil
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT RecordID, Name, Value FROM RecordMetrics WHERE UploadID = ? ORDER BY RecordID, Pos", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var recordID int64
		var m cachelog.Metric
		if err := rows.Scan(&recordID, &m.Name, &m.Value); err != nil {
			return nil, err
		}
		rec := byID[recordID]
		if rec == nil {
			return nil, errors.Errorf("upload %s: metric %s of unknown record %d", uploadID, m.Name, recordID)
		}
		rec.Metrics = append(rec.Metrics, m)
	}
	return recs, rows.Err()
}

// CountUploads returns the number of uploads in the database.
func (db *DB) CountUploads() (int, error) {
	var uploads int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Uploads").Scan(&uploads)
	return uploads, err
}

// Close releases the prepared statements and the connection pool.
func (db *DB) Close() error {
	var first error
	for _, c := range []io.Closer{db.newUpload, db.addRecord, db.sql} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
