package permits

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/cascadia-civic/crarisk/internal/model"
)

// Derived columns appended to the source schema by the cleaner.
var derivedColumns = []string{
	"SeismicTopic",
	"LiquefactionProne",
	"SlideProne",
	"CRA_NO",
	"GEN_ALIAS",
}

// WriteCSV emits cleaned permits with the source columns followed by
// the derived ones. Null numerics are empty fields.
func WriteCSV(w io.Writer, ps []model.Permit) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, permitColumns...), derivedColumns...)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "permits: write csv header")
	}

	for _, p := range ps {
		if err := cw.Write(permitRecord(p)); err != nil {
			return eris.Wrap(err, "permits: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "permits: flush csv")
}

// WriteJSON emits cleaned permits as an array of objects keyed like the
// CSV columns, with JSON null for undefined numerics.
func WriteJSON(w io.Writer, ps []model.Permit) error {
	records := make([]map[string]any, 0, len(ps))
	for _, p := range ps {
		records = append(records, map[string]any{
			"PermitNum":           p.PermitNum,
			"PermitClass":         p.PermitClass,
			"PermitClassMapped":   p.PermitClassMapped,
			"PermitTypeMapped":    p.PermitTypeMapped,
			"PermitTypeDesc":      p.PermitTypeDesc,
			"Description":         p.Description,
			"EstProjectCost":      floatOrNil(p.EstProjectCost),
			"AppliedDate":         p.AppliedDate,
			"ReadyToIssueDate":    p.ReadyToIssueDate,
			"IssuedDate":          p.IssuedDate,
			"ExpiresDate":         p.ExpiresDate,
			"CompletedDate":       p.CompletedDate,
			"StatusCurrent":       p.StatusCurrent,
			"OriginalAddress1":    p.OriginalAddress1,
			"OriginalCity":        p.OriginalCity,
			"OriginalState":       p.OriginalState,
			"OriginalZip":         p.OriginalZip,
			"Latitude":            p.Latitude,
			"Longitude":           p.Longitude,
			"TotalDaysPlanReview": floatOrNil(p.TotalDaysReview),
			"NumberReviewCycles":  floatOrNil(p.NumReviewCycles),
			"Zoning":              p.Zoning,
			"SeismicTopic":        string(p.Topic),
			"LiquefactionProne":   p.LiquefactionProne,
			"SlideProne":          p.SlideProne,
			"CRA_NO":              p.AreaID,
			"GEN_ALIAS":           p.AreaName,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(records), "permits: encode json")
}

func permitRecord(p model.Permit) []string {
	return []string{
		p.PermitNum,
		p.PermitClass,
		p.PermitClassMapped,
		p.PermitTypeMapped,
		p.PermitTypeDesc,
		p.Description,
		formatFloatPtr(p.EstProjectCost),
		p.AppliedDate,
		p.ReadyToIssueDate,
		p.IssuedDate,
		p.ExpiresDate,
		p.CompletedDate,
		p.StatusCurrent,
		p.OriginalAddress1,
		p.OriginalCity,
		p.OriginalState,
		p.OriginalZip,
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64),
		formatFloatPtr(p.TotalDaysReview),
		formatFloatPtr(p.NumReviewCycles),
		p.Zoning,
		string(p.Topic),
		strconv.FormatBool(p.LiquefactionProne),
		strconv.FormatBool(p.SlideProne),
		p.AreaID,
		p.AreaName,
	}
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
