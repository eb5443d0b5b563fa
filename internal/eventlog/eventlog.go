package eventlog

import (
	"context"
	"database/sql"
	"time"
)

// Event types appended by the stores.
const (
	TestCreated      = "TestCreated"
	AttemptSubmitted = "AttemptSubmitted"
	SessionCreated   = "SessionCreated"
)

// Seq is the append order. The column cannot be named offset; OFFSET is
// reserved in the PostgreSQL grammar.
type Event struct {
	Seq       int64
	Type      string
	Key       string // natural key: test/attempt/session ID
	DataJSON  string
	CreatedAt int64
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, typ, key, dataJSON string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, dataJSON, time.Now().Unix())
	return err
}
