// Package checkpoint provides Checkpointer implementations for the optional
// out-of-band "checkpoint now" capability of the foreground writer.
package checkpoint

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bft-labs/snapsync/internal/ports"
)

// SQLiteCheckpointer folds the SQLite WAL into the database file with
// PRAGMA wal_checkpoint(TRUNCATE), so the file copied by the next sync step
// is self-consistent.
//
// It opens its own read-write connection to the live database. SQLite
// serializes the checkpoint against the writer internally; no coordination
// with the writer process is needed beyond this pragma.
type SQLiteCheckpointer struct {
	path string
}

// NewSQLiteCheckpointer creates a checkpointer for the database at path.
func NewSQLiteCheckpointer(path string) *SQLiteCheckpointer {
	return &SQLiteCheckpointer{path: path}
}

// Checkpoint runs one TRUNCATE checkpoint pass.
func (c *SQLiteCheckpointer) Checkpoint(ctx context.Context) error {
	db, err := sql.Open("sqlite3", c.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.path, err)
	}
	defer db.Close()

	// TRUNCATE blocks until readers allow the full WAL to be folded, then
	// resets the WAL to zero length.
	if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`); err != nil {
		return fmt.Errorf("wal_checkpoint: %w", err)
	}
	return nil
}

var _ ports.Checkpointer = (*SQLiteCheckpointer)(nil)
