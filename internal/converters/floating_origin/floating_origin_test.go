package floating_origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters/elevation/offset_elevation_corrector"
)

func TestToWorldRebasesAndSwapsAxes(t *testing.T) {
	origin := r3.Vec{X: 283645.12, Y: 5021340.57}
	tr := NewTransform(origin, offset_elevation_corrector.NewOffsetElevationCorrector(2), 1)

	w := tr.ToWorld(r3.Vec{X: 283645.13, Y: 5021350.58, Z: 40})
	assert.InDelta(t, 0.01, w.X, 1e-9)
	assert.InDelta(t, 42, w.Y, 1e-9)
	assert.InDelta(t, 10.01, w.Z, 1e-9)
}

func TestToWorldBox(t *testing.T) {
	tr := NewTransform(r3.Vec{X: 100, Y: 200}, nil, 2)

	b := tr.ToWorldBox(r3.Box{
		Min: r3.Vec{X: 100, Y: 200, Z: 0},
		Max: r3.Vec{X: 110, Y: 205, Z: 3},
	})
	assert.Equal(t, r3.Vec{X: 0, Y: 0, Z: 0}, b.Min)
	assert.Equal(t, r3.Vec{X: 20, Y: 6, Z: 10}, b.Max)
	assert.Equal(t, 5.0, tr.ToWorldLength(2.5))
}

func TestOrigin(t *testing.T) {
	tr := NewTransform(r3.Vec{X: 12.5, Y: -3}, nil, 0).(*Transform)
	assert.Equal(t, r3.Vec{X: 12.5, Y: -3}, tr.Origin())
	assert.Equal(t, 1.0, tr.ToWorldLength(1))
}
