package layer

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/crs"
)

// ReadGeoJSON loads a GeoJSON FeatureCollection file. The legacy named
// CRS member is honored when present; otherwise the layer is untagged
// and the caller's Normalize step decides what it is.
func ReadGeoJSON(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read geojson %s", path)
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON decodes GeoJSON FeatureCollection bytes.
func ParseGeoJSON(data []byte) (*FeatureCollection, error) {
	var gfc geojson.FeatureCollection
	if err := json.Unmarshal(data, &gfc); err != nil {
		return nil, eris.Wrap(err, "layer: decode geojson")
	}

	fc := &FeatureCollection{CRS: parseCRSMember(data)}

	var skipped int
	for _, f := range gfc.Features {
		if f == nil || f.Geometry == nil {
			skipped++
			continue
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		fc.Features = append(fc.Features, Feature{Geom: f.Geometry, Props: props})
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped geojson features without geometry",
			zap.Int("skipped", skipped),
		)
	}

	return fc, nil
}

// parseCRSMember extracts the deprecated GeoJSON "crs" member, which the
// civic open-data portals still emit. Absent or unrecognized names leave
// the layer untagged.
func parseCRSMember(data []byte) crs.CRS {
	var aux struct {
		CRS *struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil || aux.CRS == nil {
		return crs.Unknown
	}

	name := strings.ToUpper(aux.CRS.Properties.Name)
	switch {
	case strings.Contains(name, "4326"), strings.Contains(name, "CRS84"):
		return crs.WGS84
	case strings.Contains(name, "26910"):
		return crs.EqualArea
	default:
		zap.L().Warn("layer: unrecognized geojson crs member", zap.String("name", name))
		return crs.Unknown
	}
}
