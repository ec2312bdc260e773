package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/kinderstats/internal/logging"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	run_id    TEXT    NOT NULL,
	dataset   TEXT    NOT NULL,
	id        TEXT    NOT NULL,
	region    TEXT    NOT NULL,
	aggregate TEXT    NOT NULL,
	year      INTEGER NOT NULL,
	value     REAL,
	PRIMARY KEY (run_id, region, year, id)
);
CREATE INDEX IF NOT EXISTS records_dataset ON records (dataset, region, year);
`

const insertRecord = `INSERT INTO records (run_id, dataset, id, region, aggregate, year, value)
VALUES (:run_id, :dataset, :id, :region, :aggregate, :year, :value)`

// StoredRecord is a long record tagged with its export run.
type StoredRecord struct {
	RunID   string `db:"run_id"`
	Dataset string `db:"dataset"`
	tidy.LongRecord
}

// SQLite appends records to the records table of the database at dsn and
// returns the run id assigned to this export. All rows are written in one
// transaction.
func SQLite(ctx context.Context, dsn, dataset string, recs []tidy.LongRecord) (string, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return "", fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return "", fmt.Errorf("create schema: %w", err)
	}
	runID := uuid.NewString()
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertRecord)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range recs {
		row := StoredRecord{RunID: runID, Dataset: dataset, LongRecord: r}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return "", fmt.Errorf("insert %s %d: %w", r.Region, r.Year, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	logging.Logger().Debug("sqlite export", "dsn", dsn, "dataset", dataset, "run", runID, "rows", len(recs))
	return runID, nil
}

// LoadRun reads back the records of one export run ordered by region and year.
func LoadRun(ctx context.Context, dsn, runID string) ([]StoredRecord, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	var out []StoredRecord
	err = db.SelectContext(ctx, &out,
		`SELECT run_id, dataset, id, region, aggregate, year, value FROM records WHERE run_id = ? ORDER BY region, year`, runID)
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	return out, nil
}
