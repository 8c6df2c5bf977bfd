package pkg

import (
	"errors"
	"io/fs"
	"runtime"
	"sort"
	"sync"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/io"
	"github.com/ecopia-map/pcstream/internal/model"
	"github.com/ecopia-map/pcstream/internal/viewer"
	"github.com/ecopia-map/pcstream/pkg/algorithm_manager"
	"github.com/ecopia-map/pcstream/tools"
)

const (
	TileIndexFromDescriptor = "cell_index"
	TileIndexFromMercator   = "mercator"
	TileIndexFromLonLat     = "lonlat"
)

type ModelReport struct {
	Directory         string       `json:"directory"`
	Name              string       `json:"name"`
	Version           string       `json:"version"`
	Srid              int          `json:"srid"`
	GridLevel         int          `json:"grid_level"`
	Classes           []int        `json:"classes"`
	Nodes             int          `json:"nodes"`
	Files             int          `json:"files"`
	Points            int          `json:"points"`
	Cells             []CellReport `json:"cells"`
	MissingFiles      []string     `json:"missing_files,omitempty"`
	UnreferencedFiles []string     `json:"unreferenced_files,omitempty"`
	InvalidFiles      []FileIssue  `json:"invalid_files,omitempty"`
}

type FileIssue struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type CellReport struct {
	Directory       string       `json:"directory"`
	TileIndex       *[2]int      `json:"tile_index,omitempty"`
	TileIndexSource string       `json:"tile_index_source,omitempty"`
	BasemapURL      string       `json:"basemap_url,omitempty"`
	Nodes           int          `json:"nodes"`
	Files           int          `json:"files"`
	Points          int          `json:"points"`
	MaxLevel        int          `json:"max_level"`
	NodeList        []NodeReport `json:"node_list,omitempty"`
}

type NodeReport struct {
	Name    string  `json:"name"`
	File    string  `json:"file,omitempty"`
	Level   int     `json:"level"`
	Points  int     `json:"points"`
	Spacing float64 `json:"spacing"`
}

// Describes a model without streaming it: node and point counts per cell,
// the basemap tile under each cell and, when verifying, the point files
// missing from or unknown to the descriptors
func InspectModel(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager, opts *viewer.ViewerOptions) (*ModelReport, error) {
	dir, err := fileFinder.FindModelDirectory(opts.Input)
	if err != nil {
		return nil, err
	}
	m, err := model.LoadModel(dir)
	if err != nil {
		return nil, err
	}

	inspectOpts := opts.ViewerInspectOptions
	if inspectOpts == nil {
		inspectOpts = &viewer.ViewerInspectOptions{}
	}

	srid := opts.Srid
	if srid == 0 {
		srid = m.Epsg
	}
	if srid == 0 {
		srid = converters.SphericalMercatorSrid
	}

	report := &ModelReport{
		Directory: dir,
		Name:      m.Name,
		Version:   m.Version,
		Srid:      srid,
		GridLevel: m.GlobalGrid.Level,
		Classes:   m.ClassColors().Classes(),
	}
	report.Nodes, report.Files, report.Points = m.CountNodes()

	converter := algorithmManager.GetCoordinateConverterAlgorithm()
	defer converter.Cleanup()

	grid, hasGrid := m.Grid()
	referenced := make(map[string]bool)
	for _, cell := range m.Cells {
		cellReport := CellReport{Directory: cell.Directory}

		if hasGrid {
			if index, source, ok := cellTileIndex(cell, grid, srid, converter); ok {
				cellReport.TileIndex = &index
				cellReport.TileIndexSource = source
				cellReport.BasemapURL = basemapURL(grid, index, opts.Basemap)
			}
		}

		if cell.Root != nil {
			cell.Root.Walk(func(n *model.NodeData) bool {
				cellReport.Nodes++
				if n.Level() > cellReport.MaxLevel {
					cellReport.MaxLevel = n.Level()
				}
				if n.HasFile() {
					cellReport.Files++
					cellReport.Points += n.NPoints
					referenced[cell.NodeFilePath(n)] = true
				}
				if inspectOpts.ListNodes {
					cellReport.NodeList = append(cellReport.NodeList, NodeReport{
						Name:    n.Name(),
						File:    n.Filename,
						Level:   n.Level(),
						Points:  n.NPoints,
						Spacing: cell.NodeSpacing(n),
					})
				}
				return true
			})
		}
		report.Cells = append(report.Cells, cellReport)
	}

	if inspectOpts.Verify {
		onDisk, err := fileFinder.FindPointFiles(dir)
		if err != nil {
			return nil, err
		}
		present := make(map[string]bool, len(onDisk))
		for _, file := range onDisk {
			present[file] = true
			if !referenced[file] {
				report.UnreferencedFiles = append(report.UnreferencedFiles, file)
			}
		}
		for file := range referenced {
			if !present[file] {
				report.MissingFiles = append(report.MissingFiles, file)
			}
		}
		sort.Strings(report.MissingFiles)

		report.InvalidFiles = verifyPointFiles(dir, m, algorithmManager.GetClassColorLookup(m))
	}

	return report, nil
}

// Decodes every point file of the model with a consumer per CPU and returns
// the files that are unreadable, malformed or whose point count differs from
// their descriptor. Missing files are left to the file listing.
func verifyPointFiles(dir string, m *model.ModelData, lookup data.ClassColorLookup) []FileIssue {
	numConsumers := runtime.NumCPU()
	workChannel := make(chan *io.WorkUnit, numConsumers*5)
	errorChannel := make(chan error, numConsumers)

	var waitGroup sync.WaitGroup
	waitGroup.Add(1)
	go io.NewStandardProducer().Produce(workChannel, &waitGroup, m)

	source := io.NewStandardPointFileSource(dir)
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		go io.NewStandardConsumer(source, lookup).Consume(workChannel, errorChannel, &waitGroup)
	}

	go func() {
		waitGroup.Wait()
		close(errorChannel)
	}()

	var issues []FileIssue
	for err := range errorChannel {
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		var fileErr *io.PointFileError
		if errors.As(err, &fileErr) {
			issues = append(issues, FileIssue{File: fileErr.Path, Error: fileErr.Err.Error()})
			continue
		}
		issues = append(issues, FileIssue{Error: err.Error()})
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].File < issues[j].File
	})
	return issues
}

// Returns the TMS index of the tile under a cell. The descriptor index wins,
// otherwise the centre of the cell extent is projected on the grid.
func cellTileIndex(cell *model.CellData, grid model.TileMapServiceGrid, srid int, converter converters.CoordinateConverter) ([2]int, string, bool) {
	if cell.Index != nil {
		return *cell.Index, TileIndexFromDescriptor, true
	}

	extent := cell.Extent()
	centre := r3.Scale(0.5, r3.Add(extent.Min, extent.Max))
	if srid == converters.SphericalMercatorSrid {
		return grid.TileIndexForMercator(centre.X, centre.Y), TileIndexFromMercator, true
	}

	lonLat, err := converter.ConvertToWGS84LonLat(centre, srid)
	if err != nil {
		glog.Warningf("cannot locate cell %s on the tile grid: %v", cell.Directory, err)
		return [2]int{}, "", false
	}
	return grid.TileIndexForLonLat(lonLat.X, lonLat.Y), TileIndexFromLonLat, true
}

func basemapURL(grid model.TileMapServiceGrid, index [2]int, provider viewer.BasemapProvider) string {
	switch provider {
	case viewer.BasemapOSM:
		return grid.OSMTileURL(index)
	case viewer.BasemapArcGIS:
		return grid.ArcGISWorldImageryTileURL(index)
	}
	return ""
}
