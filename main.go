/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/io"
	"github.com/ecopia-map/pcstream/internal/model"
	"github.com/ecopia-map/pcstream/internal/viewer"
	"github.com/ecopia-map/pcstream/pkg"
	"github.com/ecopia-map/pcstream/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/pcstream/tools"
)

const VERSION = "0.4.0"

const logo = `
  _ __   ___ ___ | |_ _ __ ___  __ _ _ __ ___
 | '_ \ / __/ __|| __| '__/ _ \/ _' | '_ ' _ \
 | |_) | (__\__ \| |_| | |  __/ (_| | | | | | |
 | .__/ \___|___/ \__|_|  \___|\__,_|_| |_| |_|
 |_|  A point cloud level of detail streamer written in golang
      Copyright YYYY
`

func main() {
	log.SetPrefix("[pcstream] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds)
	defer glog.Flush()

	flagsGlobal := tools.ParseFlagsGlobal()
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 || *flagsGlobal.Help {
		showHelp()
		if len(args) == 0 && !*flagsGlobal.Help {
			os.Exit(2)
		}
		return
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandStream:
		mainCommandStream(args)
	case tools.CommandInspect:
		mainCommandInspect(args)
	case tools.CommandDecode:
		mainCommandDecode(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [stream|inspect|decode]", cmd)
	}
}

func mainCommandStream(args []string) {
	flags, err := tools.ParseFlagsForCommandStream(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}

	if *flags.Help {
		showHelp()
		return
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}
	glog.V(1).Infof("flags %s", tools.FmtJSONString(flags))

	opts := viewerOptions(flags.ViewerFlags, tools.CommandStream)
	opts.ViewerStreamOptions = &viewer.ViewerStreamOptions{
		Ticks:        *flags.Ticks,
		TickDuration: time.Duration(*flags.TickMillis) * time.Millisecond,
		StatsEvery:   *flags.StatsEvery,
		MetricsAddr:  *flags.MetricsAddr,
		Pick:         *flags.Pick,
	}

	if msg, res := validateOptionsForCommandStream(opts, &flags); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	if opts.ViewerStreamOptions.MetricsAddr != "" {
		serveMetrics(opts.ViewerStreamOptions.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer timeTrack(time.Now(), "stream")
	err = pkg.NewViewer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts)).RunViewer(ctx, opts)
	if errors.Is(err, context.Canceled) {
		tools.LogOutput("Streaming interrupted")
		return
	}
	if err != nil {
		log.Fatal("Error while streaming: ", err)
	}
	tools.LogOutput("Streaming completed")
}

// Validates the options of the stream command, parsing the flight path
// end points in the process
func validateOptionsForCommandStream(opts *viewer.ViewerOptions, flags *tools.FlagsForCommandStream) (string, bool) {
	if msg, res := validateViewerOptions(opts); !res {
		return msg, false
	}

	streamOpts := opts.ViewerStreamOptions
	if streamOpts.Ticks <= 0 {
		return "ticks must be positive", false
	}
	if streamOpts.TickDuration < 0 {
		return "tick-ms cannot be negative", false
	}

	if (*flags.From == "") != (*flags.To == "") {
		return "from and to must be given together", false
	}
	if *flags.From != "" {
		var err error
		if streamOpts.From, err = tools.ParseVec3(*flags.From); err != nil {
			return "from: " + err.Error(), false
		}
		if streamOpts.To, err = tools.ParseVec3(*flags.To); err != nil {
			return "to: " + err.Error(), false
		}
		if streamOpts.From == (r3.Vec{}) && streamOpts.To == (r3.Vec{}) {
			return "from and to cannot both be the origin", false
		}
	}

	return "", true
}

func mainCommandInspect(args []string) {
	flags, err := tools.ParseFlagsForCommandInspect(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	tools.DisableLoggerTimestamp()

	opts := viewerOptions(flags.ViewerFlags, tools.CommandInspect)
	opts.ViewerInspectOptions = &viewer.ViewerInspectOptions{
		ListNodes: *flags.ListNodes,
		Verify:    *flags.Verify,
	}

	if msg, res := validateViewerOptions(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	report, err := pkg.InspectModel(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts), opts)
	if err != nil {
		log.Fatal("Error while inspecting: ", err)
	}
	fmt.Println(tools.FmtJSONIndent(report))

	if len(report.MissingFiles) > 0 || len(report.InvalidFiles) > 0 {
		log.Fatalf("%d point files are missing and %d are invalid", len(report.MissingFiles), len(report.InvalidFiles))
	}
}

func mainCommandDecode(args []string) {
	flags, err := tools.ParseFlagsForCommandDecode(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	tools.DisableLoggerTimestamp()

	opts := viewerOptions(flags.ViewerFlags, tools.CommandDecode)
	opts.ViewerDecodeOptions = &viewer.ViewerDecodeOptions{
		File: *flags.File,
	}
	if opts.ViewerDecodeOptions.File == "" {
		log.Fatal("Error parsing input parameters: file is required")
	}

	var lookup data.ClassColorLookup
	source := io.NewStandardPointFileSource("")
	if opts.Input != "" {
		fileFinder := tools.NewStandardFileFinder()
		dir, err := fileFinder.FindModelDirectory(opts.Input)
		if err != nil {
			log.Fatal("Error locating the model: ", err)
		}
		m, err := model.LoadModel(dir)
		if err != nil {
			log.Fatal("Error reading the model: ", err)
		}
		lookup = std_algorithm_manager.NewAlgorithmManager(opts).GetClassColorLookup(m)
		if !tools.PathExists(opts.ViewerDecodeOptions.File) {
			source = io.NewStandardPointFileSource(dir)
		}
	}

	report, err := pkg.DecodePointFile(source, opts.ViewerDecodeOptions.File, lookup)
	if err != nil {
		log.Fatal("Error while decoding: ", err)
	}
	fmt.Println(tools.FmtJSONIndent(report))
}

func viewerOptions(flags tools.ViewerFlags, command string) *viewer.ViewerOptions {
	return &viewer.ViewerOptions{
		Input:             *flags.Input,
		Srid:              *flags.Srid,
		ZOffset:           *flags.ZOffset,
		UnitScale:         *flags.UnitScale,
		Meshes:            *flags.Meshes,
		Jobs:              *flags.Jobs,
		LodFactor:         *flags.LodFactor,
		DistanceThreshold: *flags.DistanceThreshold,
		FarPlane:          *flags.FarPlane,
		Basemap:           viewer.ParseBasemapProvider(*flags.Basemap),
		Command:           command,
	}
}

// Validates the options shared by every command opening a model
func validateViewerOptions(opts *viewer.ViewerOptions) (string, bool) {
	if opts.Input == "" {
		return "input is required", false
	}
	if !tools.PathExists(opts.Input) {
		return "Input file/folder not found", false
	}
	if opts.Meshes <= 0 || opts.Jobs <= 0 {
		return "meshes and jobs must be positive", false
	}
	if opts.UnitScale <= 0 {
		return "unit-scale must be positive", false
	}
	if opts.LodFactor <= 0 {
		return "lod-factor must be positive", false
	}
	if opts.DistanceThreshold <= 0 || opts.FarPlane <= 0 {
		return "distance-threshold and far-plane must be positive", false
	}
	if opts.Basemap == "" {
		return "basemap should be either OSM, ARCGIS or NONE", false
	}
	return "", true
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		glog.Infof("serving metrics on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("metrics server stopped: %v", err)
		}
	}()
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("pcstream loads a tiled point cloud model and streams its nodes around a moving viewpoint")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: pcstream [global flags] stream|inspect|decode [command flags]")
	fmt.Println("Run a command with -h to list its flags.")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
