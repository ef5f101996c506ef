// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens throwaway archive databases for tests.
//
// By default every database is a private in-memory SQLite database.
// Run tests with -mysql=user:pass@tcp(host)/ to exercise a MySQL
// server instead; each test then gets its own scratch database, which
// is dropped when the test ends.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"cacheplot/storage/db"
	_ "cacheplot/storage/db/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "archive tests use the MySQL server at this `DSN` instead of in-memory SQLite")

// scratchMySQL creates an empty database on the server named by -mysql
// and returns a DSN for it. The database is dropped by t.Cleanup.
func scratchMySQL(t *testing.T) string {
	t.Helper()
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatal(err)
	}
	name := "cacheplot_" + hex.EncodeToString(suffix)

	server, err := sql.Open("mysql", *mysqlDSN)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := server.Exec("CREATE DATABASE " + name); err != nil {
		server.Close()
		t.Fatalf("creating scratch database: %v", err)
	}
	t.Cleanup(func() {
		if _, err := server.Exec("DROP DATABASE " + name); err != nil {
			t.Errorf("dropping %s: %v", name, err)
		}
		server.Close()
	})
	t.Logf("archive database %s", name)
	return *mysqlDSN + name
}

// NewDB returns an empty archive for t. It is closed when t ends.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driver, dsn := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driver, dsn = "mysql", scratchMySQL(t)
	}
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		t.Fatalf("opening %s archive: %v", driver, err)
	}
	// Registered after the scratch database's cleanup, so it runs first.
	t.Cleanup(func() { d.Close() })

	if n, err := d.CountUploads(); err != nil {
		t.Fatal(err)
	} else if n != 0 {
		t.Fatalf("new archive has %d upload(s), want 0", n)
	}
	return d
}
