package pkg

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/octree/lod_tree"
)

// PinholeCamera projects viewer space positions on a width x height screen,
// y pointing down
type PinholeCamera struct {
	position r3.Vec
	forward  r3.Vec
	right    r3.Vec
	up       r3.Vec
	focal    float64
	width    float64
	height   float64
}

// Instantiates a camera at position looking along forward, with a vertical
// field of view in degrees. The camera is kept level unless it looks
// straight up or down.
func NewPinholeCamera(position, forward r3.Vec, width, height, fovYDegrees float64) *PinholeCamera {
	if r3.Norm(forward) == 0 {
		forward = r3.Vec{Y: -1}
	}
	f := r3.Unit(forward)

	worldUp := r3.Vec{Y: 1}
	if r3.Norm(r3.Cross(f, worldUp)) < 1e-9 {
		worldUp = r3.Vec{Z: -1}
	}
	right := r3.Unit(r3.Cross(f, worldUp))
	up := r3.Cross(right, f)

	return &PinholeCamera{
		position: position,
		forward:  f,
		right:    right,
		up:       up,
		focal:    (height / 2) / math.Tan(fovYDegrees*math.Pi/360),
		width:    width,
		height:   height,
	}
}

// Screen position and depth along the view direction. Points behind the
// camera are projected to infinity.
func (c *PinholeCamera) WorldToScreen(p r3.Vec) ([2]float64, float64) {
	d := r3.Sub(p, c.position)
	depth := r3.Dot(d, c.forward)
	if depth <= 0 {
		return [2]float64{math.Inf(1), math.Inf(1)}, depth
	}
	return [2]float64{
		c.width/2 + r3.Dot(d, c.right)/depth*c.focal,
		c.height/2 - r3.Dot(d, c.up)/depth*c.focal,
	}, depth
}

// Ray leaving the camera through the given screen position
func (c *PinholeCamera) ScreenPointToRay(screen [2]float64) lod_tree.Ray {
	dir := r3.Add(c.forward, r3.Add(
		r3.Scale((screen[0]-c.width/2)/c.focal, c.right),
		r3.Scale((c.height/2-screen[1])/c.focal, c.up),
	))
	return lod_tree.Ray{Origin: c.position, Direction: r3.Unit(dir)}
}

func (c *PinholeCamera) Center() [2]float64 {
	return [2]float64{c.width / 2, c.height / 2}
}
