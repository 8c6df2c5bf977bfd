package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/io"
	"github.com/ecopia-map/pcstream/internal/mesh_manager"
	"github.com/ecopia-map/pcstream/internal/model"
	"github.com/ecopia-map/pcstream/internal/octree"
	"github.com/ecopia-map/pcstream/internal/octree/lod_tree"
	"github.com/ecopia-map/pcstream/internal/viewer"
	"github.com/ecopia-map/pcstream/pkg/algorithm_manager"
	"github.com/ecopia-map/pcstream/tools"
)

const (
	pickScreenWidth   = 1280
	pickScreenHeight  = 720
	pickFieldOfView   = 60
	pickScreenRadius  = 8
	defaultTickCount  = 100
	defaultStatsEvery = 10
)

type IViewer interface {
	RunViewer(ctx context.Context, opts *viewer.ViewerOptions) error
}

// Viewer streams a point cloud model: it owns the level of detail tree of
// every cell and the mesh manager feeding it. Ticks must be driven from a
// single goroutine.
type Viewer struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager

	model       *model.ModelData
	transform   converters.WorldTransform
	colors      data.ClassColorLookup
	meshManager *mesh_manager.MeshManager
	tree        *lod_tree.LodTree
	last        octree.Viewpoint
}

func NewViewer(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) *Viewer {
	return &Viewer{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Streams the model along a flight path for the configured number of ticks
func (v *Viewer) RunViewer(ctx context.Context, opts *viewer.ViewerOptions) error {
	if err := v.Load(opts); err != nil {
		return err
	}
	defer v.Close()

	streamOpts := opts.ViewerStreamOptions
	if streamOpts == nil {
		streamOpts = &viewer.ViewerStreamOptions{Ticks: defaultTickCount, StatsEvery: defaultStatsEvery}
	}

	from, to := streamOpts.From, streamOpts.To
	if from == (r3.Vec{}) && to == (r3.Vec{}) {
		from, to = DefaultFlightPath(v.WorldBounds())
	}
	tools.LogOutput(fmt.Sprintf("> flying from %s to %s in %d ticks", tools.FmtVec3(from), tools.FmtVec3(to), streamOpts.Ticks))

	path := NewLinearFlightPath(from, to, streamOpts.Ticks, opts.FarPlane)
	stats, err := v.Run(ctx, path, streamOpts.Ticks, streamOpts.TickDuration, streamOpts.StatsEvery)
	if err != nil {
		return err
	}
	tools.LogOutput("> final state:", fmtStats(v.tree.Ticks(), stats))

	if streamOpts.Pick {
		camera := NewPinholeCamera(v.last.Position, path.Direction(), pickScreenWidth, pickScreenHeight, pickFieldOfView)
		if res, ok := v.Pick(camera, camera.Center(), pickScreenRadius); ok {
			tools.LogOutput(fmt.Sprintf("> picked point %d of %s at %s, class %d, depth %.3f",
				res.Index, v.tree.Node(res.Node).Name(), tools.FmtVec3(res.Position), res.Point.Classification, res.Depth))
		} else {
			tools.LogOutput("> no point under the centre of the view")
		}
	}

	return nil
}

// Loads the model found from opts.Input and materializes the root node of
// every cell
func (v *Viewer) Load(opts *viewer.ViewerOptions) error {
	if v.tree != nil {
		return errors.New("viewer already loaded")
	}

	tools.LogOutput("> locating model...")
	dir, err := v.fileFinder.FindModelDirectory(opts.Input)
	if err != nil {
		return err
	}

	tools.LogOutput("> reading model descriptors from", dir)
	m, err := model.LoadModel(dir)
	if err != nil {
		return err
	}

	v.model = m
	v.transform = v.algorithmManager.GetWorldTransform(m.Cells[0].ExtentMin.Vec())
	v.colors = v.algorithmManager.GetClassColorLookup(m)
	v.meshManager = mesh_manager.New(mesh_manager.Options{
		Name:   "viewer",
		Meshes: opts.Meshes,
		Jobs:   opts.Jobs,
		Source: io.NewStandardPointFileSource(dir),
		Colors: v.colors,
	})
	v.tree = lod_tree.New(v.meshManager, v.algorithmManager.GetLodOptions())

	for _, cell := range m.Cells {
		desc := BuildCellDescriptor(cell, v.transform)
		if desc == nil {
			glog.Warningf("cell %s has no node hierarchy, skipping", cell.Directory)
			continue
		}
		v.tree.AddRoot(desc)
	}
	tools.LogOutput(fmt.Sprintf("> model %q ready, %d cells", m.Name, len(v.tree.Roots())))

	return nil
}

// Runs ticks tree evaluations with viewpoints taken from provider, at most
// one per tickDuration. Returns the stats of the last tick.
func (v *Viewer) Run(ctx context.Context, provider octree.ViewpointProvider, ticks int, tickDuration time.Duration, statsEvery int) (octree.TreeStats, error) {
	var stats octree.TreeStats
	if v.tree == nil {
		return stats, errors.New("viewer not loaded")
	}

	var ticker *time.Ticker
	if tickDuration > 0 {
		ticker = time.NewTicker(tickDuration)
		defer ticker.Stop()
	}

	for i := 0; i < ticks; i++ {
		if ticker != nil && i > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats = v.Tick(provider.Viewpoint())
		if statsEvery > 0 && (i+1)%statsEvery == 0 {
			tools.LogOutput(fmtStats(v.tree.Ticks(), stats))
		}
	}
	return stats, nil
}

// Evaluates the tree once from vp
func (v *Viewer) Tick(vp octree.Viewpoint) octree.TreeStats {
	start := time.Now()
	v.tree.Evaluate(vp)
	v.last = vp

	stats := v.tree.Stats()
	instrumentStats(stats)
	instrumentTick(time.Since(start))
	return stats
}

// Picks the resolved point closest to the camera within maxScreenDistance
// pixels of screen
func (v *Viewer) Pick(camera *PinholeCamera, screen [2]float64, maxScreenDistance float64) (lod_tree.PickResult, bool) {
	return v.tree.PickClosestPoint(camera.ScreenPointToRay(screen), screen, maxScreenDistance, camera, v.colors)
}

// Viewer space bounds of the points of the model
func (v *Viewer) WorldBounds() r3.Box {
	return v.transform.ToWorldBox(v.model.Bounds())
}

func (v *Viewer) Model() *model.ModelData {
	return v.model
}

func (v *Viewer) Tree() *lod_tree.LodTree {
	return v.tree
}

func (v *Viewer) MeshManager() *mesh_manager.MeshManager {
	return v.meshManager
}

// Releases every buffer and stops the decoding worker
func (v *Viewer) Close() {
	if v.tree != nil {
		v.tree.Close()
	}
	if v.meshManager != nil {
		v.meshManager.Shutdown()
	}
	v.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()
}

func fmtStats(tick uint64, s octree.TreeStats) string {
	return fmt.Sprintf("tick %d: %d live nodes, %d resolved, %d fetching, %d expanded, near/far/mixed %d/%d/%d, %d points",
		tick, s.LiveNodes, s.Resolved, s.Fetching, s.Expanded, s.Near, s.Far, s.Mixed, s.ResidentPoints)
}
