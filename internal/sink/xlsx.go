package sink

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

type xlsxWriter struct {
	path string
}

func newXLSXWriter(path string) (*xlsxWriter, error) {
	if path == "" {
		return nil, eris.New("sink: xlsx output path required")
	}
	return &xlsxWriter{path: path}, nil
}

func (w *xlsxWriter) Write(ctx context.Context, t *Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("area_stats")
	if err != nil {
		return eris.Wrap(err, "sink: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}

	for _, row := range t.Rows {
		xr := sheet.AddRow()
		for _, cell := range row {
			setCell(xr.AddCell(), cell)
		}
	}

	if err := f.Save(w.path); err != nil {
		return eris.Wrapf(err, "sink: save %s", w.path)
	}

	zap.L().Info("sink: wrote xlsx", zap.String("path", w.path), zap.Int("rows", len(t.Rows)))
	return nil
}

// setCell keeps numeric cells numeric; nulls become empty cells.
func setCell(c *xlsx.Cell, v any) {
	switch cv := v.(type) {
	case nil:
	case string:
		c.SetString(cv)
	case float64:
		c.SetFloat(cv)
	case int:
		c.SetInt(cv)
	default:
		c.SetString(fmt.Sprint(cv))
	}
}
