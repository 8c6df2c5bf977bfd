package pkg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/octree"
	"github.com/ecopia-map/pcstream/internal/viewer"
	"github.com/ecopia-map/pcstream/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/pcstream/tools"
)

func testOptions(input string) *viewer.ViewerOptions {
	return &viewer.ViewerOptions{
		Input:             input,
		UnitScale:         1,
		Meshes:            8,
		Jobs:              4,
		LodFactor:         1,
		DistanceThreshold: 500,
		FarPlane:          10000,
		Basemap:           viewer.BasemapOSM,
	}
}

func newTestViewer(t *testing.T, opts *viewer.ViewerOptions) *Viewer {
	t.Helper()
	tools.DisableLogger()
	t.Cleanup(tools.EnableLogger)
	return NewViewer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts))
}

func TestViewerResolvesNodesAroundViewpoint(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := testOptions(writeFixtureModel(t))
	v := newTestViewer(t, opts)
	require.NoError(t, v.Load(opts))
	defer v.Close()

	vp := octree.Viewpoint{Position: r3.Vec{X: 50, Y: 50, Z: 50}, FarPlane: opts.FarPlane}
	require.Eventually(t, func() bool {
		return v.Tick(vp).Resolved == 2
	}, 5*time.Second, 5*time.Millisecond)

	stats := v.Tree().Stats()
	assert.Equal(t, 2, stats.LiveNodes)
	assert.Equal(t, 1, stats.Expanded)
	assert.Equal(t, 7, stats.ResidentPoints)
	assert.Equal(t, 0, v.MeshManager().InFlight())

	bounds := v.WorldBounds()
	assert.InDelta(t, 0, bounds.Min.X, 1e-9)
	assert.InDelta(t, 100, bounds.Max.Y, 1e-9)
	assert.InDelta(t, 100, bounds.Max.Z, 1e-9)
}

func TestViewerPicksClosestPoint(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := testOptions(writeFixtureModel(t))
	v := newTestViewer(t, opts)
	require.NoError(t, v.Load(opts))
	defer v.Close()

	vp := octree.Viewpoint{Position: r3.Vec{X: 50, Y: 50, Z: 50}, FarPlane: opts.FarPlane}
	require.Eventually(t, func() bool {
		return v.Tick(vp).Resolved == 2
	}, 5*time.Second, 5*time.Millisecond)

	camera := NewPinholeCamera(r3.Vec{X: 50, Y: 300, Z: 50}, r3.Vec{Y: -1}, 1280, 720, 60)
	res, ok := v.Pick(camera, camera.Center(), 8)
	require.True(t, ok)

	assert.InDelta(t, 50, res.Position.X, 1e-3)
	assert.InDelta(t, 50, res.Position.Y, 1e-3)
	assert.InDelta(t, 50, res.Position.Z, 1e-3)
	assert.InDelta(t, 250, res.Depth, 1e-3)
	assert.Equal(t, 2, res.Point.Classification)
	assert.Equal(t, "Cell_0_0/Node_0", v.Tree().Node(res.Node).Name())

	_, ok = v.Pick(camera, [2]float64{0, 0}, 8)
	assert.False(t, ok)
}

func TestViewerReleasesEverythingOnClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := testOptions(writeFixtureModel(t))
	v := newTestViewer(t, opts)
	require.NoError(t, v.Load(opts))

	vp := octree.Viewpoint{Position: r3.Vec{X: 50, Y: 50, Z: 50}, FarPlane: opts.FarPlane}
	require.Eventually(t, func() bool {
		return v.Tick(vp).Resolved == 2
	}, 5*time.Second, 5*time.Millisecond)

	v.Close()
	assert.Equal(t, opts.Meshes, v.MeshManager().AvailableMeshes())
	assert.Equal(t, opts.Jobs, v.MeshManager().AvailableJobs())
}

func TestRunViewer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := testOptions(writeFixtureModel(t))
	opts.ViewerStreamOptions = &viewer.ViewerStreamOptions{
		Ticks:        20,
		TickDuration: time.Millisecond,
		StatsEvery:   5,
		Pick:         true,
	}

	v := newTestViewer(t, opts)
	require.NoError(t, v.RunViewer(context.Background(), opts))
	assert.Equal(t, uint64(20), v.Tree().Ticks())
}

func TestRunStopsWhenCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	opts := testOptions(writeFixtureModel(t))
	v := newTestViewer(t, opts)
	require.NoError(t, v.Load(opts))
	defer v.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := NewLinearFlightPath(r3.Vec{Y: 500}, r3.Vec{Y: 100}, 10, opts.FarPlane)
	_, err := v.Run(ctx, path, 10, time.Millisecond, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), v.Tree().Ticks())
}

func TestLoadErrors(t *testing.T) {
	opts := testOptions(t.TempDir())
	v := newTestViewer(t, opts)
	assert.Error(t, v.Load(opts))

	_, err := v.Run(context.Background(), NewLinearFlightPath(r3.Vec{}, r3.Vec{}, 1, 1), 1, 0, 0)
	assert.Error(t, err)
}
