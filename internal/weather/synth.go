package weather

import (
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/atmoview/atmoview/internal/geo"
)

// Synthetic data keeps the visualization populated when no provider is
// configured or a provider call fails. All generators here are
// deterministic for a given input so fallback behavior is reproducible
// in tests.

func seededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// SyntheticSample fabricates a plausible current-weather sample for a
// coordinate. The condition follows temperature bands: below 20°C the
// sample reports light rain, otherwise a clear sky.
func SyntheticSample(lat, lon float64, now time.Time) *Sample {
	rng := seededRand(geo.CacheKey(lat, lon))

	temp := float64(10 + rng.Intn(30)) // 10-40°C
	feels := temp + float64(rng.Intn(5)-2)

	condCode, condMain, condDesc := 800, ConditionClear, "clear sky"
	if temp < 20 {
		condCode, condMain, condDesc = 500, ConditionRain, "light rain"
	}

	coverage := float64(rng.Intn(101))
	sunrise := now.Add(-6 * time.Hour).Unix()
	sunset := now.Add(6 * time.Hour).Unix()

	return &Sample{
		Coord:            geo.Point{Lat: lat, Lon: lon},
		ConditionCode:    condCode,
		ConditionMain:    condMain,
		ConditionDesc:    condDesc,
		TemperatureC:     temp,
		FeelsLikeC:       feels,
		TempMinC:         temp - float64(rng.Intn(3)),
		TempMaxC:         temp + float64(rng.Intn(3)),
		HumidityPct:      20 + rng.Intn(61), // 20-80%
		PressureHPa:      1013,
		WindSpeedMS:      float64(5 + rng.Intn(31)),
		WindDirectionDeg: float64(rng.Intn(360)),
		CloudCoveragePct: &coverage,
		SunriseEpoch:     &sunrise,
		SunsetEpoch:      &sunset,
		LocationName:     "Current Location",
	}
}

type syntheticRegion struct {
	baseLat float64
	baseLon float64
	country string
}

var syntheticRegions = []syntheticRegion{
	{40, -100, "US"},
	{50, 10, "DE"},
	{35, 105, "CN"},
	{-15, -60, "BR"},
	{0, 20, "KE"},
	{-25, 140, "AU"},
}

var cityVariations = []string{
	"", " City", " Town", " Village", " Heights",
	" Park", " Hills", " Beach", " Springs", " Valley",
}

var cityPrefixes = []string{
	"", "New ", "Old ", "East ", "West ",
	"North ", "South ", "Upper ", "Lower ", "Greater ",
}

var stateSuffixes = []string{
	"Province", "State", "Region", "County", "District",
	"Territory", "Canton", "Oblast", "Prefecture", "Governorate",
}

// SyntheticLocations fabricates 3-5 search candidates for a query. The
// first result always echoes the query itself; the rest are prefixed and
// suffixed variations spread across world regions.
func SyntheticLocations(query string) []LocationSuggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	rng := seededRand("locations", strings.ToLower(query))
	capitalized := strings.ToUpper(query[:1]) + query[1:]

	n := 3 + rng.Intn(3)
	suggestions := make([]LocationSuggestion, 0, n)
	for i := 0; i < n; i++ {
		region := syntheticRegions[rng.Intn(len(syntheticRegions))]
		variation := cityVariations[rng.Intn(len(cityVariations))]
		prefix := ""
		if i > 0 {
			prefix = cityPrefixes[rng.Intn(len(cityPrefixes))]
		}

		lat := region.baseLat + rng.Float64()*20 - 10
		lon := region.baseLon + rng.Float64()*20 - 10

		name := capitalized
		if i > 0 {
			name = prefix + capitalized + variation
		}

		suggestions = append(suggestions, LocationSuggestion{
			Name:    strings.TrimSpace(name),
			Lat:     float64(int(lat*10000)) / 10000,
			Lon:     float64(int(lon*10000)) / 10000,
			Country: region.country,
			State:   capitalized + " " + stateSuffixes[rng.Intn(len(stateSuffixes))],
		})
	}
	return suggestions
}
