package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type csvWriter struct {
	path string
}

func newCSVWriter(path string) (*csvWriter, error) {
	if path == "" {
		return nil, eris.New("sink: csv output path required")
	}
	return &csvWriter{path: path}, nil
}

func (w *csvWriter) Write(ctx context.Context, t *Table) error {
	f, err := os.Create(w.path)
	if err != nil {
		return eris.Wrapf(err, "sink: create %s", w.path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "sink: write csv header")
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = cellString(cell)
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "sink: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "sink: flush csv")
	}

	zap.L().Info("sink: wrote csv", zap.String("path", w.path), zap.Int("rows", len(t.Rows)))
	return nil
}

// cellString renders a cell for csv output. Nulls become empty fields.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprint(c)
	}
}
