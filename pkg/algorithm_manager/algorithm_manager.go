package algorithm_manager

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ecopia-map/pcstream/internal/converters"
	"github.com/ecopia-map/pcstream/internal/data"
	"github.com/ecopia-map/pcstream/internal/model"
	"github.com/ecopia-map/pcstream/internal/octree/lod_tree"
)

// AlgorithmManager selects the algorithms used to stream a model
type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	GetWorldTransform(origin r3.Vec) converters.WorldTransform
	GetClassColorLookup(m *model.ModelData) data.ClassColorLookup
	GetLodOptions() lod_tree.Options
}
