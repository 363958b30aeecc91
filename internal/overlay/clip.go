package overlay

import (
	sfgeom "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// clipGeom wraps a simplefeatures geometry used for boolean overlay.
// go-geom carries the layers; simplefeatures does the clipping. The two
// are bridged over WKB, which both encode losslessly for XY data.
type clipGeom struct {
	g sfgeom.Geometry
}

// newClipGeom converts a go-geom geometry into a clippable geometry.
func newClipGeom(g geom.T) (clipGeom, error) {
	if g == nil {
		return clipGeom{}, eris.New("overlay: nil geometry")
	}
	buf, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return clipGeom{}, eris.Wrap(err, "overlay: encode WKB")
	}
	sg, err := sfgeom.UnmarshalWKB(buf)
	if err != nil {
		return clipGeom{}, eris.Wrap(err, "overlay: decode WKB")
	}
	return clipGeom{g: sg}, nil
}

// intersectionArea returns the area of the geometric intersection with
// other, in the square units of the input coordinates.
func (c clipGeom) intersectionArea(other clipGeom) (float64, error) {
	inter, err := sfgeom.Intersection(c.g, other.g)
	if err != nil {
		return 0, eris.Wrap(err, "overlay: intersection")
	}
	if inter.IsEmpty() {
		return 0, nil
	}
	return inter.Area(), nil
}

// AreaSqMeters measures a polygon's area. The geometry must already be
// in the equal-area system; callers own that invariant.
func AreaSqMeters(g geom.T) (float64, error) {
	cg, err := newClipGeom(g)
	if err != nil {
		return 0, err
	}
	return cg.g.Area(), nil
}
