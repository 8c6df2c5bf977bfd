package converters

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	WGS84Srid             = 4326
	SphericalMercatorSrid = 3857
)

// CoordinateConverter converts positions between EPSG reference systems.
// Geographic coordinates are expressed in degrees.
type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord r3.Vec) (r3.Vec, error)
	ConvertToWGS84LonLat(coord r3.Vec, sourceSrid int) (r3.Vec, error)
	Cleanup()
}

type ElevationCorrector interface {
	CorrectElevation(x, y, z float64) float64
}

// WorldTransform maps dataset coordinates (z up) into viewer space (y up)
type WorldTransform interface {
	ToWorld(v r3.Vec) r3.Vec
	ToWorldBox(b r3.Box) r3.Box
	ToWorldLength(l float64) float64
}
