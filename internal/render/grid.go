package render

import (
	"math/rand"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/weather"
)

// GridSize is the fixed dimension of every procedural grid.
const GridSize = 30

// Grid is a square matrix of scalar intensities (°C or coverage %).
type Grid [][]float64

// Size returns the grid dimension, 0 for an empty grid.
func (g Grid) Size() int { return len(g) }

// daytime reports whether hour falls in the daytime window [6, 18).
func daytime(hour int) bool { return hour >= 6 && hour < 18 }

// TemperatureGrid spreads a point temperature sample over a GridSize
// square: per-cell random variation (larger by day than by night) plus a
// linear falloff toward the edges. Values stay unclamped. A nil sample
// yields a nil grid and the caller skips the render cycle.
func TemperatureGrid(sample *weather.Sample, hour int, rng *rand.Rand) Grid {
	if sample == nil {
		return nil
	}
	amplitude := 1.5
	if daytime(hour) {
		amplitude = 3
	}
	return buildGrid(func(i, j int) float64 {
		variation := (rng.Float64() - 0.5) * amplitude
		dist := geo.CenterDistance(i, j, GridSize)
		return sample.TemperatureC + variation - 2*dist
	})
}

// CoverageGrid spreads a cloud coverage percentage over a GridSize
// square. Overcast conditions halve the random amplitude and steepen the
// edge falloff so the cover reads as a uniform deck. Cells are clamped
// to [0, 100].
func CoverageGrid(sample *weather.Sample, hour int, rng *rand.Rand) Grid {
	if sample == nil {
		return nil
	}
	amplitude := 15.0
	if daytime(hour) {
		amplitude = 30
	}
	falloff := 15.0
	if sample.IsOvercast() {
		amplitude /= 2
		falloff = 25
	}
	coverage := sample.CloudCoverage()
	return buildGrid(func(i, j int) float64 {
		variation := (rng.Float64() - 0.5) * amplitude
		dist := geo.CenterDistance(i, j, GridSize)
		return geo.Clamp(coverage+variation-falloff*dist, 0, 100)
	})
}

func buildGrid(cell func(i, j int) float64) Grid {
	g := make(Grid, GridSize)
	for i := range g {
		row := make([]float64, GridSize)
		for j := range row {
			row[j] = cell(i, j)
		}
		g[i] = row
	}
	return g
}
