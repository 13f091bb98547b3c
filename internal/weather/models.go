package weather

import (
	"fmt"

	"github.com/atmoview/atmoview/internal/common"
	"github.com/atmoview/atmoview/internal/geo"
)

// Condition main groups as reported by the weather provider.
const (
	ConditionClear        = "Clear"
	ConditionClouds       = "Clouds"
	ConditionRain         = "Rain"
	ConditionDrizzle      = "Drizzle"
	ConditionSnow         = "Snow"
	ConditionThunderstorm = "Thunderstorm"
	ConditionMist         = "Mist"
)

// Sample is the normalized current-weather view for one coordinate.
// It is immutable once fetched and superseded wholesale on the next fetch.
type Sample struct {
	Coord geo.Point `json:"coord"`

	ConditionCode int    `json:"conditionCode"`
	ConditionMain string `json:"conditionMain"`
	ConditionDesc string `json:"conditionDescription"`

	TemperatureC float64 `json:"temperatureC"`
	FeelsLikeC   float64 `json:"feelsLikeC"`
	TempMinC     float64 `json:"tempMinC"`
	TempMaxC     float64 `json:"tempMaxC"`
	HumidityPct  int     `json:"humidityPct"`
	PressureHPa  int     `json:"pressureHPa"`

	WindSpeedMS      float64 `json:"windSpeedMS"`
	WindDirectionDeg float64 `json:"windDirectionDeg"`

	CloudCoveragePct  *float64 `json:"cloudCoveragePct,omitempty"`
	Precipitation1hMM *float64 `json:"precipitation1hMM,omitempty"`
	VisibilityM       *int     `json:"visibilityM,omitempty"`
	SunriseEpoch      *int64   `json:"sunriseEpoch,omitempty"`
	SunsetEpoch       *int64   `json:"sunsetEpoch,omitempty"`

	LocationName string `json:"locationName"`
}

// IsOvercast reports whether the sample describes heavy, uniform cloud
// cover. Overcast grids get reduced random variation and a steeper edge
// falloff, and the renderer slows blob animation for them.
func (s *Sample) IsOvercast() bool {
	if s == nil || s.ConditionMain != ConditionClouds {
		return false
	}
	return common.HasAny(s.ConditionDesc, "overcast", "broken")
}

// CloudCoverage returns the cloud coverage percentage, defaulting to 0
// when the provider omitted it.
func (s *Sample) CloudCoverage() float64 {
	if s == nil || s.CloudCoveragePct == nil {
		return 0
	}
	return *s.CloudCoveragePct
}

// Summary renders the one-line description embedded in chat context:
// condition, Fahrenheit temperature, humidity and wind speed.
func (s *Sample) Summary() string {
	return fmt.Sprintf("%s, %.0f°F, %d%% humidity, wind %.1f m/s",
		s.ConditionDesc, geo.CToF(s.TemperatureC), s.HumidityPct, s.WindSpeedMS)
}

// LocationSuggestion is one geocoding search candidate. Ephemeral; used
// only to populate a selection list.
type LocationSuggestion struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// FeaturedLocation is a curated place used for cache warmup and the
// random fly-to shortcut.
type FeaturedLocation struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// FeaturedLocations lists interesting places around the world.
var FeaturedLocations = []FeaturedLocation{
	{Name: "Mount Fuji", Lat: 35.3606, Lon: 138.7274},
	{Name: "Machu Picchu", Lat: -13.1631, Lon: -72.5450},
	{Name: "Great Barrier Reef", Lat: -18.2871, Lon: 147.6992},
	{Name: "Santorini", Lat: 36.3932, Lon: 25.4615},
	{Name: "Victoria Falls", Lat: -17.9243, Lon: 25.8572},
	{Name: "Northern Lights (Iceland)", Lat: 64.9631, Lon: -19.0208},
	{Name: "Grand Canyon", Lat: 36.0544, Lon: -112.1401},
	{Name: "Great Wall of China", Lat: 40.4319, Lon: 116.5704},
	{Name: "Petra", Lat: 30.3285, Lon: 35.4444},
	{Name: "Taj Mahal", Lat: 27.1751, Lon: 78.0421},
}
