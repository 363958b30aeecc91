package sink

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/db"
)

type postgresWriter struct {
	dsn  string
	pool db.Pool
}

func newPostgresWriter(dsn string) (*postgresWriter, error) {
	if dsn == "" {
		return nil, eris.New("sink: postgres dsn required")
	}
	return &postgresWriter{dsn: dsn}, nil
}

// NewPostgres wraps an existing pool. Used by tests and by callers that
// manage their own connection lifecycle.
func NewPostgres(pool db.Pool) Writer {
	return &postgresWriter{pool: pool}
}

// Write recreates the area_stats table and bulk-loads the rows with
// COPY. The schema is regenerated each run because the census block can
// change with the source vintage.
func (w *postgresWriter) Write(ctx context.Context, t *Table) error {
	pool := w.pool
	if pool == nil {
		p, err := db.Connect(ctx, w.dsn)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
	}

	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS "area_stats"`); err != nil {
		return eris.Wrap(err, "sink: drop area_stats")
	}
	if _, err := pool.Exec(ctx, pgCreateTableSQL(t.Columns)); err != nil {
		return eris.Wrap(err, "sink: create area_stats")
	}

	n, err := db.CopyFrom(ctx, pool, "area_stats", t.Columns, t.Rows)
	if err != nil {
		return err
	}

	zap.L().Info("sink: wrote postgres", zap.Int64("rows", n))
	return nil
}

func pgCreateTableSQL(columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		typ := "double precision"
		if col == "CRA_NO" || col == "GEN_ALIAS" {
			typ = "text"
		}
		defs[i] = pgx.Identifier{col}.Sanitize() + " " + typ
	}
	return `CREATE TABLE "area_stats" (` + strings.Join(defs, ", ") + `)`
}
