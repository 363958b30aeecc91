package layer

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/crs"
)

// ReadShapefile loads an ESRI shapefile layer. Attribute values are
// carried as trimmed strings; malformed or unsupported shapes are
// skipped and counted, not fatal. The sidecar .prj is consulted for the
// declared CRS when present.
func ReadShapefile(path string) (*FeatureCollection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	fc := &FeatureCollection{CRS: readPRJ(path)}

	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val != "" {
				props[name] = val
			}
		}

		fc.Features = append(fc.Features, Feature{Geom: g, Props: props})
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return fc, nil
}

// readPRJ inspects the sidecar projection file next to a .shp. Only the
// two supported systems are recognized; anything else leaves the layer
// untagged.
func readPRJ(shpPath string) crs.CRS {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return crs.Unknown
	}

	wkt := strings.ToUpper(string(data))
	switch {
	case strings.Contains(wkt, "GCS_WGS_1984"), strings.Contains(wkt, "WGS 84"), strings.Contains(wkt, "4326"):
		return crs.WGS84
	case strings.Contains(wkt, "UTM_ZONE_10N"), strings.Contains(wkt, "26910"):
		return crs.EqualArea
	default:
		return crs.Unknown
	}
}

// shapeToGeom converts a go-shp shape to a go-geom geometry. Returns nil
// for nil or unsupported shapes.
func shapeToGeom(s shp.Shape) geom.T {
	switch shape := s.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{shape.X, shape.Y})
	case *shp.Polygon:
		return polygonToMultiPolygon(shape)
	default:
		return nil
	}
}

// polygonToMultiPolygon converts a shapefile Polygon to a MultiPolygon,
// one polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("layer: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("layer: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
