package crs

import "math"

// Transverse Mercator for UTM zone 10N on the GRS80 ellipsoid
// (EPSG:26910). Standard Snyder series expansion; sub-millimeter
// agreement with PROJ across the zone, which is far inside the
// tolerance of acre-level overlap reporting.
const (
	grs80A = 6378137.0
	grs80F = 1.0 / 298.257222101

	utmK0           = 0.9996
	utm10CentralLon = -123.0
	utmFalseEasting = 500000.0

	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

var (
	e2  = grs80F * (2 - grs80F)
	e4  = e2 * e2
	e6  = e4 * e2
	ep2 = e2 / (1 - e2)
	e1  = (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
)

// meridianArc returns the ellipsoidal arc length from the equator to
// latitude phi (radians).
func meridianArc(phi float64) float64 {
	return grs80A * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// forwardUTM10 projects lon/lat degrees to zone 10N easting/northing
// meters.
func forwardUTM10(lon, lat float64) (float64, float64) {
	phi := lat * degToRad
	lam := (lon - utm10CentralLon) * degToRad

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	tanPhi := math.Tan(phi)

	n := grs80A / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ep2 * cosPhi * cosPhi
	a := lam * cosPhi

	m := meridianArc(phi)

	easting := utmFalseEasting + utmK0*n*(a+
		(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120)

	northing := utmK0 * (m + n*tanPhi*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))

	return easting, northing
}

// inverseUTM10 converts zone 10N easting/northing meters back to lon/lat
// degrees.
func inverseUTM10(easting, northing float64) (float64, float64) {
	m := northing / utmK0
	mu := m / (grs80A * (1 - e2/4 - 3*e4/64 - 5*e6/256))

	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := grs80A / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := grs80A * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - utmFalseEasting) / (n1 * utmK0)

	phi := phi1 - (n1 * tanPhi1 / r1) * (d*d/2 -
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24 +
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lam := (d -
		(1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cosPhi1

	return utm10CentralLon + lam*radToDeg, phi * radToDeg
}
