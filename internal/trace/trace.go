// Package trace journals one row per machine step to an embedded SQLite
// file or a Postgres table, for out-of-process replay tooling
// (spec.md §13, -trace sqlite|postgres).
package trace

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Backend selects which driver a Journal opens.
type Backend int

const (
	None Backend = iota
	SQLite
	Postgres
)

// ParseBackend parses the -trace flag's value.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "", "none":
		return None, nil
	case "sqlite":
		return SQLite, nil
	case "postgres":
		return Postgres, nil
	default:
		return None, fmt.Errorf("unknown -trace value %q (want none|sqlite|postgres)", s)
	}
}

const schema = `CREATE TABLE IF NOT EXISTS oocesk_trace (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	pos TEXT NOT NULL,
	kont_depth INTEGER NOT NULL,
	store_size INTEGER NOT NULL
)`

// Journal records one row per step under a single run_id, so multiple
// interpreter invocations share one trace store without collision.
type Journal struct {
	db     *sql.DB
	driver string
	runID  string
	seq    int64
}

// Open opens backend at dsn and ensures the trace table exists.
// sqlite's dsn is a file path (defaulting to "oocesk-trace.db" when
// empty); postgres's dsn is a standard "postgres://..." URL.
func Open(backend Backend, dsn string) (*Journal, error) {
	var driver string
	switch backend {
	case SQLite:
		driver = "sqlite"
		if dsn == "" {
			dsn = "oocesk-trace.db"
		}
	case Postgres:
		driver = "postgres"
		if dsn == "" {
			return nil, fmt.Errorf("-trace postgres requires -trace-dsn")
		}
	default:
		return nil, fmt.Errorf("trace.Open: backend %v has no driver", backend)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening trace store: %w", err)
	}
	if _, err := db.Exec(rebind(driver, schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating trace table: %w", err)
	}
	return &Journal{db: db, driver: driver, runID: uuid.NewString()}, nil
}

// RunID returns the run identifier stamping every row this Journal
// writes.
func (j *Journal) RunID() string { return j.runID }

// Record appends one step to the journal.
func (j *Journal) Record(pos string, kontDepth, storeSize int) error {
	j.seq++
	stmt := rebind(j.driver, `INSERT INTO oocesk_trace (run_id, seq, pos, kont_depth, store_size) VALUES (?, ?, ?, ?, ?)`)
	_, err := j.db.Exec(stmt, j.runID, j.seq, pos, kontDepth, storeSize)
	if err != nil {
		return fmt.Errorf("recording trace step %d: %w", j.seq, err)
	}
	return nil
}

// rebind rewrites "?" placeholders into lib/pq's "$N" style when the
// postgres driver is in use; sqlite accepts "?" as-is.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}
	n := 0
	out := make([]byte, 0, len(query)+8)
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, []byte(fmt.Sprintf("$%d", n))...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
