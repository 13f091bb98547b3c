package geo

import (
	"fmt"
	"math"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// RoundCoord rounds a coordinate to two decimal places (~1.1 km at the
// equator). Elevation cache keys are computed on rounded coordinates so
// nearby lookups share an entry.
func RoundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// CacheKey returns the canonical cache key for a coordinate pair,
// rounded to two decimals.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", RoundCoord(lat), RoundCoord(lon))
}

// CirclePoints samples n points evenly around a circle of the given
// radius (in degrees) centered on (lat, lon). Point i sits at angle
// i/n * 2π, latitude offset by sin, longitude by cos.
func CirclePoints(lat, lon, radius float64, n int) []Point {
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		angle := (float64(i) / float64(n)) * 2 * math.Pi
		points = append(points, Point{
			Lat: lat + math.Sin(angle)*radius,
			Lon: lon + math.Cos(angle)*radius,
		})
	}
	return points
}

// CenterDistance returns the normalized Euclidean distance of grid cell
// (i, j) from the center of an n×n grid. The center cell is 0; corners
// approach sqrt(2).
func CenterDistance(i, j, n int) float64 {
	half := float64(n) / 2
	di := (float64(i) - half) / half
	dj := (float64(j) - half) / half
	return math.Sqrt(di*di + dj*dj)
}

// Bearing returns the initial great-circle bearing in degrees [0, 360)
// from one point to another.
func Bearing(from, to Point) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLon := (to.Lon - from.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9/5 + 32
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
