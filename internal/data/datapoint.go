package data

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// Position of a decoded point in viewer space (Y up)
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

// Converts the position to a float64 vector
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Contains data of a single decoded point, namely its viewer space position,
// its display color and the classification code it was colored from
type Point struct {
	Position       Vec3
	Color          color.RGBA
	Classification int
}

// Builds a new Point from the given coordinates, color and classification
func NewPoint(X, Y, Z float32, c color.RGBA, classification int) *Point {
	return &Point{
		Position:       Vec3{X: X, Y: Y, Z: Z},
		Color:          c,
		Classification: classification,
	}
}
