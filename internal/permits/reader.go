package permits

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/model"
)

// Format selects the permit file decoder.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a permit format literal. Anything but csv/json
// is a configuration error, reported before the file is touched.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", eris.Errorf(`permits: expected one of "csv" or "json" for format, got %q`, s)
	}
}

// Source column names in the fixed 21-column permit export.
var permitColumns = []string{
	"PermitNum",
	"PermitClass",
	"PermitClassMapped",
	"PermitTypeMapped",
	"PermitTypeDesc",
	"Description",
	"EstProjectCost",
	"AppliedDate",
	"ReadyToIssueDate",
	"IssuedDate",
	"ExpiresDate",
	"CompletedDate",
	"StatusCurrent",
	"OriginalAddress1",
	"OriginalCity",
	"OriginalState",
	"OriginalZip",
	"Latitude",
	"Longitude",
	"TotalDaysPlanReview",
	"NumberReviewCycles",
	"Zoning",
}

// Read loads and cleans a permit file. Rows missing the identifying or
// spatial fields (PermitNum, Latitude, Longitude) are dropped from this
// layer only; numeric coercion failures become nulls.
func Read(path string, format Format) ([]model.Permit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "permits: open %s", path)
	}
	defer func() { _ = f.Close() }()

	switch format {
	case FormatCSV:
		return ParseCSV(f)
	case FormatJSON:
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, eris.Wrap(err, "permits: read json")
		}
		return ParseJSON(data)
	default:
		return nil, eris.Errorf("permits: unsupported format %q", format)
	}
}

// ParseCSV decodes the permit CSV export.
func ParseCSV(r io.Reader) ([]model.Permit, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "permits: read CSV header")
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var out []model.Permit
	var dropped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "permits: read CSV record")
		}

		row := make(map[string]string, len(permitColumns))
		for _, col := range permitColumns {
			row[col] = field(record, col)
		}

		p, ok := buildPermit(row)
		if !ok {
			dropped++
			continue
		}
		out = append(out, p)
	}

	logDropped(dropped)
	return out, nil
}

// ParseJSON decodes the permit JSON export (an array of records keyed by
// the same column names as the CSV).
func ParseJSON(data []byte) ([]model.Permit, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "permits: decode JSON")
	}

	var out []model.Permit
	var dropped int
	for _, rec := range records {
		row := make(map[string]string, len(permitColumns))
		for _, col := range permitColumns {
			row[col] = anyToString(rec[col])
		}

		p, ok := buildPermit(row)
		if !ok {
			dropped++
			continue
		}
		out = append(out, p)
	}

	logDropped(dropped)
	return out, nil
}

func logDropped(dropped int) {
	if dropped > 0 {
		zap.L().Warn("permits: dropped rows missing identifier or coordinates",
			zap.Int("dropped", dropped),
		)
	}
}

// buildPermit assembles one cleaned permit. ok is false when the row
// lacks its identifier or coordinates and must be dropped.
func buildPermit(row map[string]string) (model.Permit, bool) {
	num := row["PermitNum"]
	lat, latOK := parseFloat(row["Latitude"])
	lon, lonOK := parseFloat(row["Longitude"])
	if num == "" || !latOK || !lonOK {
		return model.Permit{}, false
	}

	p := model.Permit{
		PermitNum:         num,
		PermitClass:       row["PermitClass"],
		PermitClassMapped: row["PermitClassMapped"],
		PermitTypeMapped:  row["PermitTypeMapped"],
		PermitTypeDesc:    row["PermitTypeDesc"],
		Description:       row["Description"],
		EstProjectCost:    parseCost(row["EstProjectCost"]),
		AppliedDate:       row["AppliedDate"],
		ReadyToIssueDate:  row["ReadyToIssueDate"],
		IssuedDate:        row["IssuedDate"],
		ExpiresDate:       row["ExpiresDate"],
		CompletedDate:     row["CompletedDate"],
		StatusCurrent:     row["StatusCurrent"],
		OriginalAddress1:  row["OriginalAddress1"],
		OriginalCity:      NormalizeCity(row["OriginalCity"]),
		OriginalState:     row["OriginalState"],
		OriginalZip:       row["OriginalZip"],
		Latitude:          lat,
		Longitude:         lon,
		TotalDaysReview:   parseFloatPtr(row["TotalDaysPlanReview"]),
		NumReviewCycles:   parseFloatPtr(row["NumberReviewCycles"]),
		Zoning:            row["Zoning"],
	}
	p.Topic = ClassifyTopic(p.Description)
	return p, true
}

// parseCost coerces a cost string, stripping thousands separators.
// Failures become null, never an error.
func parseCost(s string) *float64 {
	return parseFloatPtr(strings.ReplaceAll(s, ",", ""))
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloatPtr(s string) *float64 {
	v, ok := parseFloat(s)
	if !ok {
		return nil
	}
	return &v
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
