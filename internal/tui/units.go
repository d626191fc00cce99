package tui

import (
	"fmt"
	"math"

	"apexrun/internal/analysis"
	"apexrun/internal/config"
)

const metersPerMile = 1609.34

// Units provides unit conversion and formatting based on user preferences.
// Every value coming from the engine is metric: meters and seconds per km.
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

func (u Units) paceInMiles() bool {
	return u.cfg.PaceUnit == "min/mi"
}

// Distance converts meters to the preferred unit
func (u Units) Distance(meters float64) float64 {
	if u.IsMiles() {
		return meters / metersPerMile
	}
	return meters / analysis.MetersPerKm
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	return fmt.Sprintf("%.1f %s", u.Distance(meters), u.DistanceLabel())
}

// FormatDistanceValue returns just the numeric distance value (no unit label)
func (u Units) FormatDistanceValue(meters float64) string {
	if meters <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", u.Distance(meters))
}

// Pace converts seconds per km to seconds per preferred pace unit
func (u Units) Pace(secPerKm float64) float64 {
	if u.paceInMiles() {
		return secPerKm * metersPerMile / analysis.MetersPerKm
	}
	return secPerKm
}

// FormatPace formats a pace given in seconds per km as M:SS in the preferred unit
func (u Units) FormatPace(secPerKm float64) string {
	if secPerKm <= 0 || math.IsInf(secPerKm, 0) || math.IsNaN(secPerKm) {
		return "-"
	}
	return analysis.FormatDuration(u.Pace(secPerKm))
}

// FormatPacePtr formats an optional pace
func (u Units) FormatPacePtr(secPerKm *float64) string {
	if secPerKm == nil {
		return "-"
	}
	return u.FormatPace(*secPerKm)
}

// FormatPaceWithUnit formats pace with the unit label
func (u Units) FormatPaceWithUnit(secPerKm float64) string {
	pace := u.FormatPace(secPerKm)
	if pace == "-" {
		return pace
	}
	if u.paceInMiles() {
		return pace + "/mi"
	}
	return pace + "/km"
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

// DistanceLabelLong returns the long unit label ("miles" or "km")
func (u Units) DistanceLabelLong() string {
	if u.IsMiles() {
		return "miles"
	}
	return "km"
}

// PaceLabel returns the pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	if u.paceInMiles() {
		return "min/mi"
	}
	return "min/km"
}

// ConvertPaceSeries converts a series in seconds per km to minutes per
// preferred unit for charts. Zero entries stay zero.
func (u Units) ConvertPaceSeries(secPerKm []float64) []float64 {
	out := make([]float64, len(secPerKm))
	for i, p := range secPerKm {
		if p > 0 {
			out[i] = u.Pace(p) / 60
		}
	}
	return out
}

// ConvertDistanceSeries converts a series in km to the preferred unit
func (u Units) ConvertDistanceSeries(km []float64) []float64 {
	if !u.IsMiles() {
		return km
	}
	out := make([]float64, len(km))
	for i, v := range km {
		out[i] = v * analysis.MetersPerKm / metersPerMile
	}
	return out
}
