package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/cadencehq/cadence/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          TEXT PRIMARY KEY,
	ts          TEXT NOT NULL,
	activity    TEXT NOT NULL,
	domain      TEXT NOT NULL,
	action      TEXT NOT NULL,
	reasoning   TEXT NOT NULL DEFAULT '',
	constraints TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(ts);
`

// SQLiteStore persists the decision log in a SQLite database.
type SQLiteStore struct {
	mu sync.Mutex // serializes writes
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the decision log at path.
// WAL mode keeps readers unblocked during appends.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts one decision. The primary key rejects duplicate IDs,
// which preserves immutability of already-appended entries.
func (s *SQLiteStore) Append(ctx context.Context, d types.Decision) error {
	if err := validate(d); err != nil {
		return err
	}

	constraintsJSON, err := json.Marshal(d.Constraints)
	if err != nil {
		return fmt.Errorf("marshal constraints: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, ts, activity, domain, action, reasoning, constraints)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Timestamp.UTC().Format(time.RFC3339Nano), d.Activity,
		string(d.Domain), string(d.Action), d.Reasoning, string(constraintsJSON))
	if err != nil {
		return fmt.Errorf("append decision %s: %w", d.ID, err)
	}
	return nil
}

// Snapshot reads the full log ordered by timestamp then id.
func (s *SQLiteStore) Snapshot(ctx context.Context) ([]types.Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, activity, domain, action, reasoning, constraints
		 FROM decisions ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []types.Decision
	for rows.Next() {
		var d types.Decision
		var ts, domain, action, constraintsJSON string
		if err := rows.Scan(&d.ID, &ts, &d.Activity, &domain, &action, &d.Reasoning, &constraintsJSON); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp for %s: %w", d.ID, err)
		}
		d.Domain = types.Domain(domain)
		d.Action = types.DecisionAction(action)
		if err := json.Unmarshal([]byte(constraintsJSON), &d.Constraints); err != nil {
			return nil, fmt.Errorf("unmarshal constraints for %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
