package pkg

import (
	"strconv"

	"github.com/ecopia-map/pcstream/internal/codec"
	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/io"
)

type DecodeReport struct {
	File         string         `json:"file"`
	Bytes        int            `json:"bytes"`
	Rows         int            `json:"rows"`
	Cols         int            `json:"cols"`
	Min          [3]float64     `json:"min"`
	Max          [3]float64     `json:"max"`
	Classes      map[string]int `json:"classes,omitempty"`
	Unclassified int            `json:"unclassified"`
}

// Decodes a point file and summarizes its content. Bounds are reported in
// dataset axes. The class histogram counts the codes stored in the file;
// points whose class has no color in lookup are also counted as unclassified.
func DecodePointFile(source io.PointFileSource, path string, lookup data.ClassColorLookup) (*DecodeReport, error) {
	b, err := source.ReadPointFile(path)
	if err != nil {
		return nil, err
	}

	header, err := codec.ReadHeader(b)
	if err != nil {
		return nil, err
	}

	buf := data.NewPointBuffer(header.Rows)
	if err := codec.DecodeInto(buf, b, lookup); err != nil {
		return nil, err
	}

	report := &DecodeReport{
		File:  path,
		Bytes: len(b),
		Rows:  header.Rows,
		Cols:  header.Cols,
	}

	if bounds, ok := buf.Bounds(); ok {
		report.Min = [3]float64{bounds.Min.X, bounds.Min.Z, bounds.Min.Y}
		report.Max = [3]float64{bounds.Max.X, bounds.Max.Z, bounds.Max.Y}
	}

	classes, err := codec.ReadClasses(b)
	if err != nil {
		return nil, err
	}
	for _, class := range classes {
		if report.Classes == nil {
			report.Classes = make(map[string]int)
		}
		report.Classes[classHistogramKey(class)]++
		if lookup == nil || !lookup.HasClass(class) {
			report.Unclassified++
		}
	}

	return report, nil
}

// Formats a class the way cell descriptors key their class histograms
func classHistogramKey(class int) string {
	return strconv.Itoa(class)
}
