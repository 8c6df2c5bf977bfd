package floating_origin

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
)

// Transform rebases dataset coordinates on a horizontal origin close to the
// data. The subtraction is done in decimal so that the result keeps the
// digits of the input as written in the descriptors.
type Transform struct {
	originX   decimal.Decimal
	originY   decimal.Decimal
	corrector converters.ElevationCorrector
	scale     float64
}

// Instantiates a transform centred on origin. Heights are passed through the
// corrector and every length is multiplied by unitScale.
func NewTransform(origin r3.Vec, corrector converters.ElevationCorrector, unitScale float64) converters.WorldTransform {
	if unitScale <= 0 {
		unitScale = 1
	}
	return &Transform{
		originX:   decimal.NewFromFloat(origin.X),
		originY:   decimal.NewFromFloat(origin.Y),
		corrector: corrector,
		scale:     unitScale,
	}
}

// Converts a dataset position to viewer space, swapping the Y and Z axes
func (t *Transform) ToWorld(v r3.Vec) r3.Vec {
	x := decimal.NewFromFloat(v.X).Sub(t.originX).InexactFloat64()
	y := decimal.NewFromFloat(v.Y).Sub(t.originY).InexactFloat64()
	z := v.Z
	if t.corrector != nil {
		z = t.corrector.CorrectElevation(v.X, v.Y, v.Z)
	}
	return r3.Vec{X: x * t.scale, Y: z * t.scale, Z: y * t.scale}
}

func (t *Transform) ToWorldBox(b r3.Box) r3.Box {
	return r3.Box{Min: t.ToWorld(b.Min), Max: t.ToWorld(b.Max)}.Canon()
}

func (t *Transform) ToWorldLength(l float64) float64 {
	return l * t.scale
}

// Returns the origin in dataset coordinates
func (t *Transform) Origin() r3.Vec {
	return r3.Vec{X: t.originX.InexactFloat64(), Y: t.originY.InexactFloat64()}
}
