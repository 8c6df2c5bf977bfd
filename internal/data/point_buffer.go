package data

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// PointBuffer holds the decoded geometry of one node. Positions and Colors
// always have Count elements.
type PointBuffer struct {
	Positions []Vec3
	Colors    []color.RGBA
	Count     int
}

// Instantiates an empty buffer with room for capacityHint points
func NewPointBuffer(capacityHint int) *PointBuffer {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &PointBuffer{
		Positions: make([]Vec3, 0, capacityHint),
		Colors:    make([]color.RGBA, 0, capacityHint),
	}
}

// Replaces the content of the buffer with a copy of the given arrays, reusing
// the backing storage when it is large enough
func (b *PointBuffer) CopyFrom(positions []Vec3, colors []color.RGBA) {
	n := len(positions)
	if len(colors) < n {
		n = len(colors)
	}
	b.Positions = append(b.Positions[:0], positions[:n]...)
	b.Colors = append(b.Colors[:0], colors[:n]...)
	b.Count = n
}

// Empties the buffer keeping its backing storage
func (b *PointBuffer) Reset() {
	b.Positions = b.Positions[:0]
	b.Colors = b.Colors[:0]
	b.Count = 0
}

// Returns the i-th point, recovering its class through the given lookup when not nil
func (b *PointBuffer) At(i int, lookup ClassColorLookup) Point {
	p := Point{Position: b.Positions[i], Color: b.Colors[i], Classification: -1}
	if lookup != nil {
		if class, ok := lookup.ClassForColor(p.Color); ok {
			p.Classification = class
		}
	}
	return p
}

// Computes the axis aligned bounds of the buffered positions. The second
// return value is false when the buffer is empty.
func (b *PointBuffer) Bounds() (r3.Box, bool) {
	if b.Count == 0 {
		return r3.Box{}, false
	}
	min := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range b.Positions[:b.Count] {
		v := p.R3()
		min.X, max.X = math.Min(min.X, v.X), math.Max(max.X, v.X)
		min.Y, max.Y = math.Min(min.Y, v.Y), math.Max(max.Y, v.Y)
		min.Z, max.Z = math.Min(min.Z, v.Z), math.Max(max.Z, v.Z)
	}
	return r3.Box{Min: min, Max: max}, true
}
