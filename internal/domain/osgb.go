package domain

import (
	"fmt"
	"math"
)

// National Grid projection constants (OSGB36 Transverse Mercator).
const (
	gridF0       = 0.9996012717
	gridLat0Deg  = 49.0
	gridLon0Deg  = -2.0
	gridEasting0 = 400000.0
	gridNorth0   = -100000.0

	gridMaxEasting  = 700000.0
	gridMaxNorthing = 1300000.0
)

type ellipsoid struct {
	a  float64
	b  float64
	e2 float64
}

func newEllipsoid(a, b float64) ellipsoid {
	return ellipsoid{a: a, b: b, e2: 1 - (b*b)/(a*a)}
}

var (
	ellipsoidAiry1830 = newEllipsoid(6377563.396, 6356256.909)
	ellipsoidWGS84    = newEllipsoid(6378137.0, 6356752.314245)
)

// PreciseConverter converts OSGB36 grid references to WGS-84 using the
// Ordnance Survey inverse projection and a Helmert datum shift.
type PreciseConverter struct{}

func (PreciseConverter) Name() string { return ConverterPrecise }

// Convert returns the WGS-84 position of a National Grid reference.
func (PreciseConverter) Convert(easting, northing float64) (LatLng, error) {
	if !inGrid(easting, northing) {
		return LatLng{}, fmt.Errorf("convert %v,%v: %w", easting, northing, ErrOutOfRange)
	}

	lat, lon := gridToOSGB36(easting, northing)

	x, y, z := geodeticToECEF(lat, lon, 0, ellipsoidAiry1830)
	x, y, z = helmertOSGB36toWGS84(x, y, z)
	lat, lon = ecefToGeodetic(x, y, z, ellipsoidWGS84)

	return LatLng{Lat: radToDeg(lat), Lng: radToDeg(lon)}, nil
}

func inGrid(easting, northing float64) bool {
	return !math.IsNaN(easting) && !math.IsNaN(northing) &&
		easting >= 0 && easting <= gridMaxEasting &&
		northing >= 0 && northing <= gridMaxNorthing
}

// gridToOSGB36 inverts the National Grid Transverse Mercator projection.
// Returns latitude and longitude on the Airy 1830 ellipsoid, in radians.
func gridToOSGB36(easting, northing float64) (lat, lon float64) {
	ell := ellipsoidAiry1830
	a, b := ell.a, ell.b
	lat0 := degToRad(gridLat0Deg)
	lon0 := degToRad(gridLon0Deg)
	n := (a - b) / (a + b)

	lat = lat0
	m := 0.0
	for i := 0; i < 100; i++ {
		lat += (northing - gridNorth0 - m) / (a * gridF0)
		m = meridionalArc(lat, lat0, n, b)
		if math.Abs(northing-gridNorth0-m) < 0.00001 {
			break
		}
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	nu := a * gridF0 / math.Sqrt(1-ell.e2*sinLat*sinLat)
	rho := a * gridF0 * (1 - ell.e2) / math.Pow(1-ell.e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	tanLat := math.Tan(lat)
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2
	secLat := 1 / cosLat
	nu3 := nu * nu * nu
	nu5 := nu3 * nu * nu
	nu7 := nu5 * nu * nu

	vii := tanLat / (2 * rho * nu)
	viii := tanLat / (24 * rho * nu3) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tanLat / (720 * rho * nu5) * (61 + 90*tan2 + 45*tan4)
	x := secLat / nu
	xi := secLat / (6 * nu3) * (nu/rho + 2*tan2)
	xii := secLat / (120 * nu5) * (5 + 28*tan2 + 24*tan4)
	xiia := secLat / (5040 * nu7) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	de := easting - gridEasting0
	de2 := de * de
	de3 := de2 * de
	de4 := de2 * de2
	de5 := de4 * de
	de6 := de3 * de3
	de7 := de6 * de

	lat = lat - vii*de2 + viii*de4 - ix*de6
	lon = lon0 + x*de - xi*de3 + xii*de5 - xiia*de7
	return lat, lon
}

func meridionalArc(lat, lat0, n, b float64) float64 {
	n2 := n * n
	n3 := n2 * n
	dLat := lat - lat0
	sLat := lat + lat0

	ma := (1 + n + (5.0/4.0)*n2 + (5.0/4.0)*n3) * dLat
	mb := (3*n + 3*n2 + (21.0/8.0)*n3) * math.Sin(dLat) * math.Cos(sLat)
	mc := ((15.0/8.0)*n2 + (15.0/8.0)*n3) * math.Sin(2*dLat) * math.Cos(2*sLat)
	md := (35.0 / 24.0) * n3 * math.Sin(3*dLat) * math.Cos(3*sLat)
	return b * gridF0 * (ma - mb + mc - md)
}

// helmertOSGB36toWGS84 applies the OSGB36 -> WGS84 7-parameter transform
// (position-vector convention).
func helmertOSGB36toWGS84(x, y, z float64) (float64, float64, float64) {
	const (
		tx = 446.448
		ty = -125.157
		tz = 542.060
		rx = 0.1502 // arc-seconds
		ry = 0.2470 // arc-seconds
		rz = 0.8421 // arc-seconds
		s  = -20.4894
	)
	secToRad := math.Pi / (180.0 * 3600.0)
	rxr := rx * secToRad
	ryr := ry * secToRad
	rzr := rz * secToRad
	m := 1 + s*1e-6

	x2 := tx + m*x - rzr*y + ryr*z
	y2 := ty + rzr*x + m*y - rxr*z
	z2 := tz - ryr*x + rxr*y + m*z
	return x2, y2, z2
}

func geodeticToECEF(lat, lon, h float64, ell ellipsoid) (x, y, z float64) {
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	nu := ell.a / math.Sqrt(1-ell.e2*sinLat*sinLat)
	x = (nu + h) * cosLat * math.Cos(lon)
	y = (nu + h) * cosLat * math.Sin(lon)
	z = (nu*(1-ell.e2) + h) * sinLat
	return x, y, z
}

func ecefToGeodetic(x, y, z float64, ell ellipsoid) (lat, lon float64) {
	p := math.Hypot(x, y)
	lon = math.Atan2(y, x)
	lat = math.Atan2(z, p*(1-ell.e2))
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		nu := ell.a / math.Sqrt(1-ell.e2*sinLat*sinLat)
		next := math.Atan2(z+ell.e2*nu*sinLat, p)
		if math.Abs(next-lat) < 1e-12 {
			return next, lon
		}
		lat = next
	}
	return lat, lon
}
