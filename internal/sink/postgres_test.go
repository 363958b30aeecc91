package sink

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresWriter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tbl := BuildTable(sampleRows(), []string{"liquefaction", "slide"})

	mock.ExpectExec(`DROP TABLE IF EXISTS "area_stats"`).WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec(`CREATE TABLE "area_stats"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"area_stats"}, tbl.Columns).WillReturnResult(2)

	w := NewPostgres(mock)
	require.NoError(t, w.Write(context.Background(), tbl))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_CreateError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tbl := BuildTable(sampleRows(), []string{"liquefaction"})

	mock.ExpectExec(`DROP TABLE IF EXISTS "area_stats"`).WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec(`CREATE TABLE "area_stats"`).WillReturnError(fmt.Errorf("permission denied"))

	w := NewPostgres(mock)
	err = w.Write(context.Background(), tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create area_stats")
	assert.NoError(t, mock.ExpectationsWereMet())
}
