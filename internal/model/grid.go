package model

import (
	"fmt"
	"math"
)

const (
	// Side of the spherical mercator square, in meters
	MapSideLengthMeters = 40075016.6784

	earthRadiusMeters = 6378137.0
	maxMercatorLat    = 85.05112878
)

// TMS global grid: the spherical mercator square split in 2^level tiles per
// side, indices counted from the south west corner
type TileMapServiceGrid struct {
	Level int
}

func (g TileMapServiceGrid) SideTiles() int {
	return 1 << uint(g.Level)
}

func (g TileMapServiceGrid) TileSizeMeters() float64 {
	return MapSideLengthMeters / float64(g.SideTiles())
}

// Converts a TMS index to the XYZ index used by web map tile servers
func (g TileMapServiceGrid) GoogleMapsIndex(tms [2]int) [2]int {
	return [2]int{tms[0], g.SideTiles() - 1 - tms[1]}
}

func (g TileMapServiceGrid) OSMTileURL(tms [2]int) string {
	i := g.GoogleMapsIndex(tms)
	return fmt.Sprintf("https://b.tile.openstreetmap.org/%d/%d/%d.png", g.Level, i[0], i[1])
}

func (g TileMapServiceGrid) ArcGISWorldImageryTileURL(tms [2]int) string {
	i := g.GoogleMapsIndex(tms)
	return fmt.Sprintf("https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/%d/%d/%d.png", g.Level, i[1], i[0])
}

// TMS index of the tile containing the given spherical mercator position
func (g TileMapServiceGrid) TileIndexForMercator(x, y float64) [2]int {
	size := g.TileSizeMeters()
	return [2]int{
		g.clamp(int(math.Floor((x + MapSideLengthMeters/2) / size))),
		g.clamp(int(math.Floor((y + MapSideLengthMeters/2) / size))),
	}
}

// TMS index of the tile containing the given WGS84 position, in degrees
func (g TileMapServiceGrid) TileIndexForLonLat(lon, lat float64) [2]int {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	x := earthRadiusMeters * lon * math.Pi / 180
	y := earthRadiusMeters * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return g.TileIndexForMercator(x, y)
}

func (g TileMapServiceGrid) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if n := g.SideTiles(); i >= n {
		return n - 1
	}
	return i
}
