package proj4_coordinate_converter

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/glog"
	proj "github.com/xeonx/proj4"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
)

type proj4CoordinateConverter struct {
	projections map[int]*proj.Proj
	sync.Mutex
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		projections: make(map[int]*proj.Proj),
	}
}

// Converts the given coordinate from the source to the target EPSG system.
// Geographic coordinates are read and returned in degrees.
func (cc *proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord r3.Vec) (r3.Vec, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	cc.Lock()
	defer cc.Unlock()

	src, err := cc.getProjection(sourceSrid)
	if err != nil {
		return r3.Vec{}, err
	}
	dst, err := cc.getProjection(targetSrid)
	if err != nil {
		return r3.Vec{}, err
	}

	x, y, z := []float64{coord.X}, []float64{coord.Y}, []float64{coord.Z}
	if src.IsLatLong() {
		x[0], y[0] = toRadians(x[0]), toRadians(y[0])
	}

	if err := proj.TransformRaw(src, dst, x, y, z); err != nil {
		return r3.Vec{}, fmt.Errorf("cannot convert %v from EPSG:%d to EPSG:%d: %w", coord, sourceSrid, targetSrid, err)
	}

	if dst.IsLatLong() {
		x[0], y[0] = toDegrees(x[0]), toDegrees(y[0])
	}

	return r3.Vec{X: x[0], Y: y[0], Z: z[0]}, nil
}

func (cc *proj4CoordinateConverter) ConvertToWGS84LonLat(coord r3.Vec, sourceSrid int) (r3.Vec, error) {
	return cc.ConvertCoordinateSrid(sourceSrid, converters.WGS84Srid, coord)
}

// Releases all the projections initialized so far
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()

	for srid, p := range cc.projections {
		p.Close()
		delete(cc.projections, srid)
	}
}

func (cc *proj4CoordinateConverter) getProjection(srid int) (*proj.Proj, error) {
	if p, ok := cc.projections[srid]; ok {
		return p, nil
	}

	p, err := proj.InitPlus(projectionDefinition(srid))
	if err != nil {
		return nil, fmt.Errorf("cannot initialize projection EPSG:%d: %w", srid, err)
	}
	glog.V(2).Infof("initialized projection EPSG:%d", srid)
	cc.projections[srid] = p

	return p, nil
}

// Returns the proj definition of the given EPSG code. The common codes are
// spelled out so that no proj data files are needed for them.
func projectionDefinition(srid int) string {
	switch {
	case srid == converters.WGS84Srid:
		return "+proj=longlat +datum=WGS84 +no_defs"
	case srid == converters.SphericalMercatorSrid:
		return "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs"
	case srid == 4978:
		return "+proj=geocent +datum=WGS84 +units=m +no_defs"
	case srid > 32600 && srid <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", srid-32600)
	case srid > 32700 && srid <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", srid-32700)
	}
	return fmt.Sprintf("+init=epsg:%d", srid)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
