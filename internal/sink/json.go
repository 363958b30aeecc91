package sink

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type jsonWriter struct {
	path string
}

func newJSONWriter(path string) (*jsonWriter, error) {
	if path == "" {
		return nil, eris.New("sink: json output path required")
	}
	return &jsonWriter{path: path}, nil
}

// Write emits an array of objects keyed by column name. Null cells stay
// JSON null so consumers can tell undefined from zero.
func (w *jsonWriter) Write(ctx context.Context, t *Table) error {
	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return eris.Wrapf(err, "sink: create %s", w.path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "sink: encode json")
	}

	zap.L().Info("sink: wrote json", zap.String("path", w.path), zap.Int("rows", len(t.Rows)))
	return nil
}
