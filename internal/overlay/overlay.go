// Package overlay measures polygon intersection between reporting areas
// and hazard-zone layers. All measurement happens in the equal-area
// system; measuring in a geographic CRS is a defect, so both inputs are
// projected before any geometry touches the clipper.
package overlay

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/crs"
	"github.com/cascadia-civic/crarisk/internal/model"
)

// Fixed unit conversions from square meters.
const (
	SqMetersPerAcre   = 4046.8564224
	SqMetersPerSqMile = 2589988.110336
)

// Columns returns the three output column names derived from a hazard
// kind: <KIND>_ACRES, <KIND>_SQ_MILES, <KIND>_RELATIVE.
func Columns(kind string) (acres, sqMiles, relative string) {
	upper := strings.ToUpper(kind)
	return upper + "_ACRES", upper + "_SQ_MILES", upper + "_RELATIVE"
}

// ValidateKind rejects hazard kinds that cannot name output columns.
// This is a configuration error, reported before any geometry work.
func ValidateKind(kind string) error {
	if kind == "" {
		return eris.New("overlay: hazard kind cannot be empty")
	}
	if strings.EqualFold(kind, "AREA") {
		return eris.New(`overlay: hazard kind cannot be "AREA", it collides with the reporting-area columns`)
	}
	return nil
}

// Calculate measures, per reporting area, the intersection with all
// zones of one hazard kind. Every input area appears in the result;
// areas touching no zone get a zero measure (left join, not omission).
// Input geometry is never mutated; areas stay in their original CRS.
func Calculate(areas []model.ReportingArea, areasCRS crs.CRS, zones []model.HazardZone, zonesCRS crs.CRS, kind string) (map[string]model.Overlap, error) {
	if err := ValidateKind(kind); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "overlay"), zap.String("kind", kind))

	type clipTarget struct {
		geom   clipGeom
		bounds *geom.Bounds
	}

	clipZones := make([]clipTarget, 0, len(zones))
	for i, z := range zones {
		projected, err := crs.Transform(z.Geom, zonesCRS, crs.EqualArea)
		if err != nil {
			return nil, eris.Wrapf(err, "overlay: project zone %d", i)
		}
		cg, err := newClipGeom(projected)
		if err != nil {
			log.Debug("overlay: skipping unclippable zone", zap.Int("zone", i), zap.Error(err))
			continue
		}
		clipZones = append(clipZones, clipTarget{geom: cg, bounds: projected.Bounds()})
	}

	result := make(map[string]model.Overlap, len(areas))

	for _, area := range areas {
		projected, err := crs.Transform(area.Geom, areasCRS, crs.EqualArea)
		if err != nil {
			return nil, eris.Wrapf(err, "overlay: project area %s", area.AreaID)
		}

		cg, err := newClipGeom(projected)
		if err != nil {
			return nil, eris.Wrapf(err, "overlay: area %s geometry", area.AreaID)
		}

		bounds := projected.Bounds()
		var sqMeters float64
		for _, z := range clipZones {
			// Bounding-box prefilter keeps the clipper off disjoint pairs.
			if !bounds.Overlaps(geom.XY, z.bounds) {
				continue
			}
			a, err := cg.intersectionArea(z.geom)
			if err != nil {
				return nil, eris.Wrapf(err, "overlay: intersect area %s", area.AreaID)
			}
			sqMeters += a
		}

		acres := sqMeters / SqMetersPerAcre
		var relative float64
		if area.LandAcres > 0 {
			relative = acres / area.LandAcres
		}

		result[area.AreaID] = model.Overlap{
			Acres:    acres,
			SqMiles:  sqMeters / SqMetersPerSqMile,
			Relative: relative,
		}
	}

	log.Debug("overlay: measured hazard coverage",
		zap.Int("areas", len(areas)),
		zap.Int("zones", len(clipZones)),
	)

	return result, nil
}
