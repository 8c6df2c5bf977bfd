package pkg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/octree"
)

// LinearFlightPath moves the viewpoint along a segment, one step per call
type LinearFlightPath struct {
	from     r3.Vec
	to       r3.Vec
	ticks    int
	farPlane float64
	tick     int
}

func NewLinearFlightPath(from, to r3.Vec, ticks int, farPlane float64) *LinearFlightPath {
	return &LinearFlightPath{
		from:     from,
		to:       to,
		ticks:    ticks,
		farPlane: farPlane,
	}
}

// Returns the viewpoint of the current tick and advances to the next one.
// The first call returns from, the last of ticks calls returns to, later
// calls stay at to.
func (p *LinearFlightPath) Viewpoint() octree.Viewpoint {
	t := 0.0
	if p.ticks > 1 {
		t = math.Min(1, float64(p.tick)/float64(p.ticks-1))
	} else if p.tick > 0 {
		t = 1
	}
	if p.tick < p.ticks {
		p.tick++
	}

	return octree.Viewpoint{
		Position: r3.Add(p.from, r3.Scale(t, r3.Sub(p.to, p.from))),
		FarPlane: p.farPlane,
	}
}

// Unit direction of travel, straight down when both ends coincide
func (p *LinearFlightPath) Direction() r3.Vec {
	d := r3.Sub(p.to, p.from)
	if r3.Norm(d) == 0 {
		return r3.Vec{Y: -1}
	}
	return r3.Unit(d)
}

// Default flight over a model: a descent from one diagonal above the centre
// of the bounds down to their top face
func DefaultFlightPath(bounds r3.Box) (from, to r3.Vec) {
	diagonal := r3.Norm(bounds.Size())
	centreX := (bounds.Min.X + bounds.Max.X) / 2
	centreZ := (bounds.Min.Z + bounds.Max.Z) / 2

	from = r3.Vec{X: centreX, Y: bounds.Max.Y + diagonal, Z: centreZ}
	to = r3.Vec{X: centreX, Y: bounds.Max.Y, Z: centreZ}
	return from, to
}
