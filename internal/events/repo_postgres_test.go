package events

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"
)

// Both implementations must satisfy the contract.
var (
	_ Repository = (*PostgresRepo)(nil)
	_ Repository = (*MemoryRepo)(nil)
)

// stubDriver records the last statement so the insert can be asserted
// without a live database.

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type stubConn struct {
	lastQuery string
	lastArgs  []driver.Value
}

func (c *stubConn) Prepare(q string) (driver.Stmt, error) { return &stubStmt{conn: c, query: q}, nil }
func (c *stubConn) Close() error                          { return nil }
func (c *stubConn) Begin() (driver.Tx, error)             { return nil, errors.New("not supported") }

type stubStmt struct {
	conn  *stubConn
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.lastQuery = s.query
	s.conn.lastArgs = args
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("not supported")
}

func TestPostgresRepo_Append(t *testing.T) {
	conn := &stubConn{}
	sql.Register("events-stub", &stubDriver{conn: conn})
	db, err := sql.Open("events-stub", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRepo(db)
	err = repo.Append(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventTypeTranscribeComplete,
		CallID:    "call-1",
		RemoteIP:  "203.0.113.9",
		Payload:   "TranscriptionStatus=completed",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if !strings.Contains(conn.lastQuery, "INSERT INTO webhook_events") {
		t.Fatalf("unexpected query: %q", conn.lastQuery)
	}
	if len(conn.lastArgs) != 6 {
		t.Fatalf("expected 6 bind args, got %d: %v", len(conn.lastArgs), conn.lastArgs)
	}
	if conn.lastArgs[0] != "evt-1" || conn.lastArgs[1] != "transcribe_complete" {
		t.Fatalf("unexpected args: %v", conn.lastArgs)
	}
}
