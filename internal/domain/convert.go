package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Converter strategy names. ConverterProj is only available in binaries
// built with the proj tag.
const (
	ConverterPrecise     = "precise"
	ConverterApproximate = "approximate"
	ConverterProj        = "proj"
)

// ErrOutOfRange is returned for grid references outside the National Grid.
var ErrOutOfRange = errors.New("grid reference out of range")

// LatLng is a WGS-84 latitude/longitude pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and non-zero. A zero
// component is treated as missing.
func (ll LatLng) Valid() bool {
	return isUsable(ll.Lat) && isUsable(ll.Lng)
}

// Converter maps a British National Grid easting/northing to latitude/longitude.
type Converter interface {
	Convert(easting, northing float64) (LatLng, error)
	Name() string
}

var converters = map[string]func() (Converter, error){
	ConverterPrecise:     func() (Converter, error) { return PreciseConverter{}, nil },
	ConverterApproximate: func() (Converter, error) { return ApproximateConverter{}, nil },
}

// NewConverter returns the converter registered under name.
func NewConverter(name string) (Converter, error) {
	build, ok := converters[name]
	if !ok {
		return nil, fmt.Errorf("unknown converter %q (available: %v)", name, ConverterNames())
	}
	return build()
}

// ConverterNames lists the converters compiled into this binary.
func ConverterNames() []string {
	names := make([]string, 0, len(converters))
	for name := range converters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasConverter reports whether name is compiled into this binary.
func HasConverter(name string) bool {
	_, ok := converters[name]
	return ok
}

// SafeConvert runs c and reports false on any error, panic or non-finite
// result instead of propagating it.
func SafeConvert(c Converter, easting, northing float64) (ll LatLng, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ll, ok = LatLng{}, false
		}
	}()

	ll, err := c.Convert(easting, northing)
	if err != nil {
		return LatLng{}, false
	}
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return LatLng{}, false
	}
	return ll, true
}

// Reference point of the approximate converter.
const (
	approxOriginLat      = 53.8
	approxOriginLng      = -1.55
	approxOriginEasting  = 430000
	approxOriginNorthing = 433000
	metresPerDegree      = 111000
)

// ApproximateConverter is a local linear placeholder around Leeds.
// It is not geodetically sound away from its reference point.
type ApproximateConverter struct{}

func (ApproximateConverter) Name() string { return ConverterApproximate }

// Convert applies the linear offset from the reference origin.
func (ApproximateConverter) Convert(easting, northing float64) (LatLng, error) {
	if math.IsNaN(easting) || math.IsNaN(northing) {
		return LatLng{}, fmt.Errorf("convert %v,%v: %w", easting, northing, ErrOutOfRange)
	}
	lat := approxOriginLat + (northing-approxOriginNorthing)/metresPerDegree
	lng := approxOriginLng + (easting-approxOriginEasting)/(metresPerDegree*math.Cos(degToRad(approxOriginLat)))
	return LatLng{Lat: lat, Lng: lng}, nil
}

func degToRad(v float64) float64 { return v * math.Pi / 180.0 }
func radToDeg(v float64) float64 { return v * 180.0 / math.Pi }
