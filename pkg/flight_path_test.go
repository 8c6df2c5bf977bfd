package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLinearFlightPath(t *testing.T) {
	path := NewLinearFlightPath(r3.Vec{X: 0, Y: 100}, r3.Vec{X: 40, Y: 20}, 5, 1000)

	expected := []r3.Vec{
		{X: 0, Y: 100},
		{X: 10, Y: 80},
		{X: 20, Y: 60},
		{X: 30, Y: 40},
		{X: 40, Y: 20},
		{X: 40, Y: 20},
	}
	for i, want := range expected {
		vp := path.Viewpoint()
		assert.InDelta(t, want.X, vp.Position.X, 1e-9, "tick %d", i)
		assert.InDelta(t, want.Y, vp.Position.Y, 1e-9, "tick %d", i)
		assert.Equal(t, 1000.0, vp.FarPlane)
	}
}

func TestLinearFlightPathSingleTick(t *testing.T) {
	path := NewLinearFlightPath(r3.Vec{Y: 10}, r3.Vec{Y: 0}, 1, 1)
	assert.Equal(t, r3.Vec{Y: 10}, path.Viewpoint().Position)
	assert.Equal(t, r3.Vec{Y: 0}, path.Viewpoint().Position)
}

func TestFlightPathDirection(t *testing.T) {
	assert.Equal(t, r3.Vec{X: 1}, NewLinearFlightPath(r3.Vec{}, r3.Vec{X: 3}, 2, 1).Direction())
	assert.Equal(t, r3.Vec{Y: -1}, NewLinearFlightPath(r3.Vec{X: 3}, r3.Vec{X: 3}, 2, 1).Direction())
}

func TestDefaultFlightPath(t *testing.T) {
	bounds := r3.Box{Min: r3.Vec{X: 0, Y: 0, Z: 0}, Max: r3.Vec{X: 30, Y: 40, Z: 0}}
	from, to := DefaultFlightPath(bounds)

	assert.Equal(t, r3.Vec{X: 15, Y: 90, Z: 0}, from)
	assert.Equal(t, r3.Vec{X: 15, Y: 40, Z: 0}, to)
}
