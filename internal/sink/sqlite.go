package sink

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type sqliteWriter struct {
	path string
}

func newSQLiteWriter(path string) (*sqliteWriter, error) {
	if path == "" {
		return nil, eris.New("sink: sqlite output path required")
	}
	return &sqliteWriter{path: path}, nil
}

// Write rebuilds the area_stats table from scratch each run. The schema
// is derived from the table columns: text identity columns, numeric
// everything else.
func (w *sqliteWriter) Write(ctx context.Context, t *Table) error {
	db, err := sql.Open("sqlite", w.path)
	if err != nil {
		return eris.Wrap(err, "sink: open sqlite")
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return eris.Wrap(err, "sink: exec PRAGMA journal_mode=WAL")
	}

	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS area_stats`); err != nil {
		return eris.Wrap(err, "sink: drop area_stats")
	}
	if _, err := db.ExecContext(ctx, createTableSQL(t.Columns)); err != nil {
		return eris.Wrap(err, "sink: create area_stats")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sink: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(t.Columns))
	if err != nil {
		return eris.Wrap(err, "sink: prepare insert")
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return eris.Wrap(err, "sink: insert area row")
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sink: commit")
	}

	zap.L().Info("sink: wrote sqlite", zap.String("path", w.path), zap.Int("rows", len(t.Rows)))
	return nil
}

func createTableSQL(columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		typ := "NUMERIC"
		if col == "CRA_NO" || col == "GEN_ALIAS" {
			typ = "TEXT"
		}
		defs[i] = quoteIdent(col) + " " + typ
	}
	return "CREATE TABLE area_stats (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		marks[i] = "?"
	}
	return "INSERT INTO area_stats (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
