package viewer

import (
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

type BasemapProvider string

const (
	BasemapOSM    BasemapProvider = "OSM"
	BasemapArcGIS BasemapProvider = "ARCGIS"
	BasemapNone   BasemapProvider = "NONE"
)

func (b BasemapProvider) String() string {
	return string(b)
}

func ParseBasemapProvider(value string) BasemapProvider {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	switch normalizedValue {
	case "OSM":
		return BasemapOSM
	case "ARCGIS":
		return BasemapArcGIS
	case "NONE", "":
		return BasemapNone
	}
	return ""
}

// Contains the options needed to stream a point cloud model
type ViewerOptions struct {
	Input             string          // Model folder or pc_model.json file
	Srid              int             // EPSG code of the dataset coordinates, 0 to use the model descriptor
	ZOffset           float64         // Vertical offset to apply to heights, in dataset units
	UnitScale         float64         // Multiplier converting dataset units to viewer units
	Meshes            int             // Number of pooled point buffers
	Jobs              int             // Number of pooled decode jobs
	LodFactor         float64         // Multiplier of node spacing in the detail test
	DistanceThreshold float64         // Distance separating near from far rendering, in viewer units
	FarPlane          float64         // Far clipping distance used to derive load priorities
	Basemap           BasemapProvider // Tile provider listed for each cell

	Command              string
	ViewerStreamOptions  *ViewerStreamOptions
	ViewerInspectOptions *ViewerInspectOptions
	ViewerDecodeOptions  *ViewerDecodeOptions
}

type ViewerStreamOptions struct {
	Ticks        int           // Number of ticks to run
	TickDuration time.Duration // Minimum duration of a tick
	From         r3.Vec        // Viewpoint at the first tick, in viewer space
	To           r3.Vec        // Viewpoint at the last tick, in viewer space
	StatsEvery   int           // Ticks between two stats log lines
	MetricsAddr  string        // Address of the metrics endpoint, empty to disable
	Pick         bool          // Pick the point at the centre of the view after the last tick
}

type ViewerInspectOptions struct {
	ListNodes bool // Lists every node of every cell
	Verify    bool // Checks that every referenced point file exists
}

type ViewerDecodeOptions struct {
	File string // Point file to decode
}

func (opt *ViewerOptions) Copy() *ViewerOptions {
	newOpt := &ViewerOptions{
		Input:             opt.Input,
		Srid:              opt.Srid,
		ZOffset:           opt.ZOffset,
		UnitScale:         opt.UnitScale,
		Meshes:            opt.Meshes,
		Jobs:              opt.Jobs,
		LodFactor:         opt.LodFactor,
		DistanceThreshold: opt.DistanceThreshold,
		FarPlane:          opt.FarPlane,
		Basemap:           opt.Basemap,
		Command:           opt.Command,
	}

	if opt.ViewerStreamOptions != nil {
		streamOpt := *opt.ViewerStreamOptions
		newOpt.ViewerStreamOptions = &streamOpt
	}

	if opt.ViewerInspectOptions != nil {
		inspectOpt := *opt.ViewerInspectOptions
		newOpt.ViewerInspectOptions = &inspectOpt
	}

	if opt.ViewerDecodeOptions != nil {
		decodeOpt := *opt.ViewerDecodeOptions
		newOpt.ViewerDecodeOptions = &decodeOpt
	}

	return newOpt
}
