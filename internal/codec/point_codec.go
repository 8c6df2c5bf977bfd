package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/ecopia-map/pcstream/internal/data"
)

const (
	floatSize   = 4
	headerSize  = 2
	minColCount = 4
)

var ErrMalformed = errors.New("malformed point buffer")

// DecodeError describes why a point buffer could not be decoded
type DecodeError struct {
	Reason string
	Size   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s (%d bytes)", ErrMalformed.Error(), e.Reason, e.Size)
}

func (e *DecodeError) Unwrap() error {
	return ErrMalformed
}

// Header of a point buffer: the matrix dimensions stored in its first two floats
type Header struct {
	Rows int
	Cols int
}

// Reads and validates the matrix header of a point buffer
func ReadHeader(b []byte) (Header, error) {
	if len(b)%floatSize != 0 {
		return Header{}, &DecodeError{Reason: "length is not a multiple of 4", Size: len(b)}
	}
	floats := len(b) / floatSize
	if floats < headerSize {
		return Header{}, &DecodeError{Reason: "missing matrix header", Size: len(b)}
	}

	rows, cols := readFloat(b, 0), readFloat(b, 1)
	if !isCount(rows) || !isCount(cols) {
		return Header{}, &DecodeError{Reason: fmt.Sprintf("invalid matrix dimensions %vx%v", rows, cols), Size: len(b)}
	}

	h := Header{Rows: int(rows), Cols: int(cols)}
	if h.Rows > 0 && h.Cols < minColCount {
		return Header{}, &DecodeError{Reason: fmt.Sprintf("rows have %d columns, need at least %d", h.Cols, minColCount), Size: len(b)}
	}
	if uint64(h.Rows)*uint64(h.Cols) > uint64(floats-headerSize) {
		return Header{}, &DecodeError{Reason: fmt.Sprintf("header declares %dx%d floats, %d available", h.Rows, h.Cols, floats-headerSize), Size: len(b)}
	}
	return h, nil
}

// Decodes a point buffer. Rows are read as [x, y, z, class, ...] in dataset
// axes; positions are returned as (x, z, y) and colors are looked up from the
// class code. On error every output is empty.
func Decode(b []byte, lookup data.ClassColorLookup) ([]data.Vec3, []color.RGBA, int, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return nil, nil, 0, err
	}

	positions := make([]data.Vec3, h.Rows)
	colors := make([]color.RGBA, h.Rows)
	for i := 0; i < h.Rows; i++ {
		base := headerSize + i*h.Cols
		x, y, z := readFloat(b, base), readFloat(b, base+1), readFloat(b, base+2)
		positions[i] = data.Vec3{X: x, Y: z, Z: y}
		if lookup != nil {
			colors[i] = lookup.ColorForClass(int(readFloat(b, base+3)))
		} else {
			colors[i] = data.DefaultClassColor
		}
	}

	return positions, colors, h.Rows, nil
}

// Returns the raw class code of every row
func ReadClasses(b []byte) ([]int, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}

	classes := make([]int, h.Rows)
	for i := range classes {
		classes[i] = int(readFloat(b, headerSize+i*h.Cols+3))
	}
	return classes, nil
}

// Decodes a point buffer directly into dst, reusing its storage
func DecodeInto(dst *data.PointBuffer, b []byte, lookup data.ClassColorLookup) error {
	positions, colors, _, err := Decode(b, lookup)
	if err != nil {
		dst.Reset()
		return err
	}
	dst.CopyFrom(positions, colors)
	return nil
}

// Encodes rows of [x, y, z, class, ...] in dataset axes into the point buffer
// layout. All rows must have the same length.
func Encode(rows [][]float32) ([]byte, error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), cols)
		}
	}
	if len(rows) > 0 && cols < minColCount {
		return nil, fmt.Errorf("rows have %d columns, need at least %d", cols, minColCount)
	}

	b := make([]byte, (headerSize+len(rows)*cols)*floatSize)
	writeFloat(b, 0, float32(len(rows)))
	writeFloat(b, 1, float32(cols))
	for i, row := range rows {
		for j, v := range row {
			writeFloat(b, headerSize+i*cols+j, v)
		}
	}
	return b, nil
}

func readFloat(b []byte, index int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[index*floatSize:]))
}

func writeFloat(b []byte, index int, v float32) {
	binary.LittleEndian.PutUint32(b[index*floatSize:], math.Float32bits(v))
}

func isCount(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0 && f <= math.MaxInt32
}
