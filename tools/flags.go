package tools

import (
	"flag"
	"fmt"
)

const (
	CommandStream  = "stream"
	CommandInspect = "inspect"
	CommandDecode  = "decode"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// Flags shared by every command that opens a model
type ViewerFlags struct {
	Input             *string  `json:"input"`
	Srid              *int     `json:"srid"`
	ZOffset           *float64 `json:"zoffset"`
	UnitScale         *float64 `json:"unit_scale"`
	Meshes            *int     `json:"meshes"`
	Jobs              *int     `json:"jobs"`
	LodFactor         *float64 `json:"lod_factor"`
	DistanceThreshold *float64 `json:"distance_threshold"`
	FarPlane          *float64 `json:"far_plane"`
	Basemap           *string  `json:"basemap"`
	Config            *string  `json:"config"`
}

type FlagsForCommandStream struct {
	ViewerFlags
	Ticks        *int    `json:"ticks"`
	TickMillis   *int    `json:"tick_ms"`
	From         *string `json:"from"`
	To           *string `json:"to"`
	StatsEvery   *int    `json:"stats_every"`
	MetricsAddr  *string `json:"metrics_addr"`
	Pick         *bool   `json:"pick"`
	Silent       *bool   `json:"silent"`
	LogTimestamp *bool   `json:"timestamp"`
	Help         *bool   `json:"help"`
}

type FlagsForCommandInspect struct {
	ViewerFlags
	ListNodes *bool `json:"list_nodes"`
	Verify    *bool `json:"verify"`
}

type FlagsForCommandDecode struct {
	ViewerFlags
	File *string `json:"file"`
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of pcstream.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineViewerFlags(flagCommand *flag.FlagSet) ViewerFlags {
	return ViewerFlags{
		Input:             defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the model folder or its pc_model.json file."),
		Srid:              defineIntFlagCommand(flagCommand, "srid", "e", 0, "EPSG srid code of the model coordinates. 0 uses the epsg of the model descriptor, or 3857 when missing."),
		ZOffset:           defineFloat64FlagCommand(flagCommand, "zoffset", "z", 0, "Vertical offset to apply to points, in model units."),
		UnitScale:         defineFloat64FlagCommand(flagCommand, "unit-scale", "", 1, "Multiplier converting model units to viewer units."),
		Meshes:            defineIntFlagCommand(flagCommand, "meshes", "m", 400, "Number of pooled point buffers."),
		Jobs:              defineIntFlagCommand(flagCommand, "jobs", "j", 20, "Number of pooled decode jobs."),
		LodFactor:         defineFloat64FlagCommand(flagCommand, "lod-factor", "l", 1, "Multiplier of the node spacing when testing whether a node needs more detail."),
		DistanceThreshold: defineFloat64FlagCommand(flagCommand, "distance-threshold", "d", 500, "Distance separating near from far rendering, in viewer units."),
		FarPlane:          defineFloat64FlagCommand(flagCommand, "far-plane", "", 10000, "Far clipping distance used to compute load priorities, in viewer units."),
		Basemap:           defineStringFlagCommand(flagCommand, "basemap", "", "OSM", "Basemap tile provider listed for each cell, can be 'OSM', 'ARCGIS' or 'NONE'."),
		Config:            defineStringFlagCommand(flagCommand, "config", "c", "", "YAML file providing default values for any flag of the command."),
	}
}

func ParseFlagsForCommandStream(args []string) (FlagsForCommandStream, error) {
	flagCommand := flag.NewFlagSet("command-stream", flag.ExitOnError)

	viewerFlags := defineViewerFlags(flagCommand)
	ticks := defineIntFlagCommand(flagCommand, "ticks", "n", 100, "Number of ticks to run.")
	tickMillis := defineIntFlagCommand(flagCommand, "tick-ms", "", 16, "Minimum duration of a tick, in milliseconds.")
	from := defineStringFlagCommand(flagCommand, "from", "", "", "Viewpoint at the first tick as 'x,y,z' in viewer space. Defaults to a point above the model.")
	to := defineStringFlagCommand(flagCommand, "to", "", "", "Viewpoint at the last tick as 'x,y,z' in viewer space. Defaults to the model centre.")
	statsEvery := defineIntFlagCommand(flagCommand, "stats-every", "", 10, "Number of ticks between two stats messages.")
	metricsAddr := defineStringFlagCommand(flagCommand, "metrics-addr", "", "", "Address serving the prometheus metrics, e.g. ':9090'. Disabled when empty.")
	pick := defineBoolFlagCommand(flagCommand, "pick", "p", false, "Picks the point at the centre of the view after the last tick.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)

	if err := applyConfigFlag(flagCommand, *viewerFlags.Config); err != nil {
		return FlagsForCommandStream{}, err
	}

	return FlagsForCommandStream{
		ViewerFlags:  viewerFlags,
		Ticks:        ticks,
		TickMillis:   tickMillis,
		From:         from,
		To:           to,
		StatsEvery:   statsEvery,
		MetricsAddr:  metricsAddr,
		Pick:         pick,
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Help:         help,
	}, nil
}

func ParseFlagsForCommandInspect(args []string) (FlagsForCommandInspect, error) {
	flagCommand := flag.NewFlagSet("command-inspect", flag.ExitOnError)

	viewerFlags := defineViewerFlags(flagCommand)
	listNodes := defineBoolFlagCommand(flagCommand, "list-nodes", "", false, "Lists every node of every cell.")
	verify := defineBoolFlagCommand(flagCommand, "verify", "", false, "Checks that every point file referenced by the model exists.")

	flagCommand.Parse(args)

	if err := applyConfigFlag(flagCommand, *viewerFlags.Config); err != nil {
		return FlagsForCommandInspect{}, err
	}

	return FlagsForCommandInspect{
		ViewerFlags: viewerFlags,
		ListNodes:   listNodes,
		Verify:      verify,
	}, nil
}

func ParseFlagsForCommandDecode(args []string) (FlagsForCommandDecode, error) {
	flagCommand := flag.NewFlagSet("command-decode", flag.ExitOnError)

	viewerFlags := defineViewerFlags(flagCommand)
	file := defineStringFlagCommand(flagCommand, "file", "f", "", "Point file to decode. Classes are resolved from the model given with -input, if any.")

	flagCommand.Parse(args)

	if err := applyConfigFlag(flagCommand, *viewerFlags.Config); err != nil {
		return FlagsForCommandDecode{}, err
	}

	return FlagsForCommandDecode{
		ViewerFlags: viewerFlags,
		File:        file,
	}, nil
}

func applyConfigFlag(flagCommand *flag.FlagSet, path string) error {
	if path == "" {
		return nil
	}
	values, err := LoadConfigFile(path)
	if err != nil {
		return err
	}
	if err := ApplyConfig(flagCommand, values); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
