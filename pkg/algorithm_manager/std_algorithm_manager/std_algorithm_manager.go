package std_algorithm_manager

import (
	"github.com/golang/glog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
	"github.com/ecopia-map/pcstream/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/pcstream/internal/converters/floating_origin"
	"github.com/ecopia-map/pcstream/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/model"
	"github.com/ecopia-map/pcstream/internal/octree/lod_tree"
	"github.com/ecopia-map/pcstream/internal/viewer"
	"github.com/ecopia-map/pcstream/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *viewer.ViewerOptions
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewAlgorithmManager(opts *viewer.ViewerOptions) algorithm_manager.AlgorithmManager {
	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: proj4_coordinate_converter.NewProj4CoordinateConverter(),
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
	}
}

func (am *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return am.elevationCorrector
}

func (am *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return am.coordinateConverter
}

// Rebases the dataset on origin, applying the elevation offset and unit scale
func (am *StandardAlgorithmManager) GetWorldTransform(origin r3.Vec) converters.WorldTransform {
	return floating_origin.NewTransform(origin, am.elevationCorrector, am.options.UnitScale)
}

// Colors of the model classes. Models without classes decode every point as
// an unknown class.
func (am *StandardAlgorithmManager) GetClassColorLookup(m *model.ModelData) data.ClassColorLookup {
	table := m.ClassColors()
	if table.Len() == 0 {
		glog.Warningf("model %q defines no classes, points will not be classified", m.Name)
	}
	return table
}

func (am *StandardAlgorithmManager) GetLodOptions() lod_tree.Options {
	return lod_tree.Options{
		LodFactor:         am.options.LodFactor,
		DistanceThreshold: am.options.DistanceThreshold,
	}
}
