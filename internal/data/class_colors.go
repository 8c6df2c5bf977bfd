package data

import (
	"image/color"
	"sort"
)

// Fallback color for classification codes without an entry
var DefaultClassColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ClassColorLookup maps classification codes to display colors and back
type ClassColorLookup interface {
	ColorForClass(class int) color.RGBA
	HasClass(class int) bool
	ClassForColor(c color.RGBA) (int, bool)
}

// Table backed ClassColorLookup, white for unknown classes
type ClassColorTable struct {
	colors  map[int]color.RGBA
	classes map[color.RGBA]int
}

func NewClassColorTable() *ClassColorTable {
	return &ClassColorTable{
		colors:  make(map[int]color.RGBA),
		classes: make(map[color.RGBA]int),
	}
}

// Registers the color of a class, replacing any previous entry
func (t *ClassColorTable) Set(class int, c color.RGBA) {
	if old, ok := t.colors[class]; ok && t.classes[old] == class {
		delete(t.classes, old)
	}
	t.colors[class] = c
	if _, taken := t.classes[c]; !taken {
		t.classes[c] = class
	}
}

// Registers the color of a class from unit range components
func (t *ClassColorTable) SetUnit(class int, r, g, b float64) {
	t.Set(class, color.RGBA{R: unitToByte(r), G: unitToByte(g), B: unitToByte(b), A: 255})
}

func (t *ClassColorTable) ColorForClass(class int) color.RGBA {
	if c, ok := t.colors[class]; ok {
		return c
	}
	return DefaultClassColor
}

func (t *ClassColorTable) HasClass(class int) bool {
	_, ok := t.colors[class]
	return ok
}

// Reverse lookup used by point picking. When two classes share a color the
// first registered wins.
func (t *ClassColorTable) ClassForColor(c color.RGBA) (int, bool) {
	class, ok := t.classes[c]
	return class, ok
}

// Returns the registered classes in ascending order
func (t *ClassColorTable) Classes() []int {
	classes := make([]int, 0, len(t.colors))
	for class := range t.colors {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}

func (t *ClassColorTable) Len() int {
	return len(t.colors)
}

func unitToByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
