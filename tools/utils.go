package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
	"gonum.org/v1/gonum/spatial/r3"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

func FmtJSONIndent(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

const (
	FloatMin = 0.000001
)

func IsFloatEqual(f1, f2 float64) bool {
	return math.Abs(f1-f2) < FloatMin
}

// Parses a "x,y,z" triple
func ParseVec3(value string) (r3.Vec, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("expected three comma separated values, got %q", value)
	}
	var coords [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid coordinate %q: %w", p, err)
		}
		coords[i] = v
	}
	return r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func FmtVec3(v r3.Vec) string {
	return strconv.FormatFloat(v.X, 'f', -1, 64) + "," +
		strconv.FormatFloat(v.Y, 'f', -1, 64) + "," +
		strconv.FormatFloat(v.Z, 'f', -1, 64)
}
