package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/test-pad/testpad/internal/eventlog"
)

func TestOpenSQLiteBootstrapsSchema(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := Open(ctx, DriverSQLite, "file:"+filepath.Join(t.TempDir(), "boot.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	// Every table the stores touch must exist after Open.
	for _, table := range []string{"users", "auth_tokens", "tests", "attempts", "sessions", "event_log"} {
		if _, err := dbh.ExecContext(ctx, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}

	repo := eventlog.NewRepo(dbh)
	if err := repo.Append(ctx, eventlog.TestCreated, "t-1", `{"creator_id":"u-1"}`); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, eventlog.AttemptSubmitted, "a-1", `{}`); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows, err := dbh.QueryContext(ctx, `SELECT seq, typ, key FROM event_log ORDER BY seq`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var got []string
	var lastSeq int64
	for rows.Next() {
		var seq int64
		var typ, key string
		if err := rows.Scan(&seq, &typ, &key); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if seq <= lastSeq {
			t.Fatalf("seq not increasing: %d after %d", seq, lastSeq)
		}
		lastSeq = seq
		got = append(got, typ)
	}
	if len(got) != 2 || got[0] != eventlog.TestCreated || got[1] != eventlog.AttemptSubmitted {
		t.Fatalf("events = %v", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, Driver("mysql"), ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

// The postgres DDL cannot run without a server, but it must at least not
// name columns PostgreSQL's grammar reserves. OFFSET is in the reserved
// class (like LIMIT), so the event_log sequence column is seq.
func TestPostgresSchemaAvoidsReservedColumns(t *testing.T) {
	if !strings.Contains(schemaPostgres, "seq BIGSERIAL PRIMARY KEY") {
		t.Fatal("event_log sequence column missing from postgres schema")
	}
	for _, reserved := range []string{"\n  offset ", "\n  limit ", "\n  order ", "\n  user "} {
		if strings.Contains(schemaPostgres, reserved) {
			t.Fatalf("postgres schema declares reserved column %q", strings.TrimSpace(reserved))
		}
		if strings.Contains(schemaSQLite, reserved) {
			t.Fatalf("sqlite schema declares reserved column %q", strings.TrimSpace(reserved))
		}
	}
}
