//go:build proj

package domain

import (
	"fmt"
	"math"
	"sync"

	"github.com/pebbe/proj/v5"
)

// osgbPipeline takes National Grid metres through inverse Transverse Mercator
// on Airy 1830 and the OSGB36 to WGS84 Helmert shift. Output is lng, lat in degrees.
const osgbPipeline = `
+proj=pipeline
+step +inv +proj=tmerc +lat_0=49 +lon_0=-2 +k=0.9996012717 +x_0=400000 +y_0=-100000 +ellps=airy
+step +proj=cart +ellps=airy
+step +proj=helmert +x=446.448 +y=-125.157 +z=542.060 +rx=0.1502 +ry=0.2470 +rz=0.8421 +s=-20.4894 +convention=position_vector
+step +inv +proj=cart +ellps=WGS84
+step +proj=unitconvert +xy_in=rad +xy_out=deg
`

func init() {
	converters[ConverterProj] = func() (Converter, error) { return NewProjConverter() }
}

// ProjConverter converts grid references with the PROJ library. A PROJ
// context is not safe for concurrent use, so calls are serialized.
type ProjConverter struct {
	mu  sync.Mutex
	ctx *proj.Context
	pj  *proj.PJ
}

// NewProjConverter creates the PROJ transformation.
func NewProjConverter() (*ProjConverter, error) {
	ctx := proj.NewContext()
	pj, err := ctx.Create(osgbPipeline)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("create proj pipeline: %w", err)
	}
	return &ProjConverter{ctx: ctx, pj: pj}, nil
}

func (*ProjConverter) Name() string { return ConverterProj }

// Convert applies the PROJ pipeline. The grid range check matches PreciseConverter.
func (c *ProjConverter) Convert(easting, northing float64) (LatLng, error) {
	if !inGrid(easting, northing) {
		return LatLng{}, fmt.Errorf("convert %v,%v: %w", easting, northing, ErrOutOfRange)
	}

	c.mu.Lock()
	lng, lat, _, _, err := c.pj.Trans(proj.Fwd, easting, northing, 0, 0)
	c.mu.Unlock()
	if err != nil {
		return LatLng{}, fmt.Errorf("convert %v,%v: %w", easting, northing, err)
	}
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return LatLng{}, fmt.Errorf("convert %v,%v: %w", easting, northing, ErrOutOfRange)
	}
	return LatLng{Lat: lat, Lng: lng}, nil
}

// Close releases the PROJ context.
func (c *ProjConverter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.Close()
}
