package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseBasemapProvider(t *testing.T) {
	assert.Equal(t, BasemapOSM, ParseBasemapProvider(" osm "))
	assert.Equal(t, BasemapArcGIS, ParseBasemapProvider("ArcGIS"))
	assert.Equal(t, BasemapNone, ParseBasemapProvider(""))
	assert.Equal(t, BasemapProvider(""), ParseBasemapProvider("bing"))
}

func TestCopyIsDeep(t *testing.T) {
	opts := &ViewerOptions{
		Input:  "model",
		Meshes: 10,
		ViewerStreamOptions: &ViewerStreamOptions{
			Ticks: 5,
			From:  r3.Vec{X: 1},
		},
		ViewerDecodeOptions: &ViewerDecodeOptions{File: "a.bin"},
	}

	cp := opts.Copy()
	cp.ViewerStreamOptions.Ticks = 9
	cp.ViewerDecodeOptions.File = "b.bin"
	cp.Meshes = 1

	assert.Equal(t, 5, opts.ViewerStreamOptions.Ticks)
	assert.Equal(t, "a.bin", opts.ViewerDecodeOptions.File)
	assert.Equal(t, 10, opts.Meshes)
	assert.Nil(t, cp.ViewerInspectOptions)
	assert.Equal(t, r3.Vec{X: 1}, cp.ViewerStreamOptions.From)
}
