package analysis

import (
	"fmt"

	"apexrun/internal/session"
)

// Zone identifies a heart rate zone, Z1 through Z5. The zero value means no zone.
type Zone int

const (
	NoZone Zone = iota
	Z1
	Z2
	Z3
	Z4
	Z5
)

// NumZones is the number of heart rate zones
const NumZones = 5

var zoneNames = map[Zone]string{
	Z1: "Recovery",
	Z2: "Aerobic Base",
	Z3: "Tempo",
	Z4: "Threshold",
	Z5: "VO2max",
}

func (z Zone) String() string {
	if z < Z1 || z > Z5 {
		return "none"
	}
	return fmt.Sprintf("Z%d", int(z))
}

// Name returns the zone's descriptive name
func (z Zone) Name() string {
	return zoneNames[z]
}

// MarshalText encodes the zone as "Z1".."Z5"
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// ZoneFor buckets a heart rate by fractional heart-rate reserve
func (z HRZones) ZoneFor(hr float64) Zone {
	ratio, ok := z.ReserveRatio(hr)
	if !ok {
		return NoZone
	}
	for i, upper := range HRZoneThresholds {
		if ratio < upper {
			return Zone(i + 1)
		}
	}
	return Z5
}

// ZoneTime is the time spent in one zone
type ZoneTime struct {
	Zone    Zone    `json:"zone"`
	Seconds float64 `json:"seconds"`
	Percent float64 `json:"percent"`
}

// ZoneDistribution is time-in-zone over one or more sessions
type ZoneDistribution struct {
	Zones        [NumZones]ZoneTime `json:"zones"`
	TotalSeconds float64            `json:"total_seconds"`
}

func newZoneDistribution() ZoneDistribution {
	var d ZoneDistribution
	for i := range d.Zones {
		d.Zones[i].Zone = Zone(i + 1)
	}
	return d
}

// Seconds returns the time spent in zone z
func (d ZoneDistribution) Seconds(z Zone) float64 {
	if z < Z1 || z > Z5 {
		return 0
	}
	return d.Zones[z-1].Seconds
}

// HasData reports whether any time was attributed to a zone
func (d ZoneDistribution) HasData() bool {
	return d.TotalSeconds > 0
}

// Dominant returns the zone with the most time. Ties go to the lower zone.
func (d ZoneDistribution) Dominant() Zone {
	if !d.HasData() {
		return NoZone
	}
	best := Z1
	for _, zt := range d.Zones {
		if zt.Seconds > d.Seconds(best) {
			best = zt.Zone
		}
	}
	return best
}

// Add merges another distribution into d
func (d *ZoneDistribution) Add(other ZoneDistribution) {
	for i := range d.Zones {
		d.Zones[i].Seconds += other.Zones[i].Seconds
	}
	d.TotalSeconds += other.TotalSeconds
	d.computePercents()
}

func (d *ZoneDistribution) computePercents() {
	for i := range d.Zones {
		if d.TotalSeconds > 0 {
			d.Zones[i].Percent = d.Zones[i].Seconds / d.TotalSeconds * 100
		} else {
			d.Zones[i].Percent = 0
		}
	}
}

// SessionZoneDistribution attributes session time to zones. Each heart rate
// sample is credited with the gap to the next sample; the last sample gets any
// duration beyond the sampled span. When the sampled span exceeds the session
// duration (paused time), credits are scaled down so that a fully covered
// session sums to its duration.
func SessionZoneDistribution(rec session.Record, zones HRZones) ZoneDistribution {
	d := newZoneDistribution()
	samples := rec.Samples
	if len(samples) == 0 {
		return d
	}

	span := samples[len(samples)-1].Time.Sub(samples[0].Time).Seconds()
	scale := 1.0
	remainder := 0.0
	if span > rec.Duration && span > 0 {
		scale = rec.Duration / span
	} else {
		remainder = rec.Duration - span
	}

	for i, s := range samples {
		if !isValidHeartrate(s.HeartRate) {
			continue
		}
		zone := zones.ZoneFor(float64(*s.HeartRate))
		if zone == NoZone {
			continue
		}

		var credit float64
		if i+1 < len(samples) {
			credit = samples[i+1].Time.Sub(s.Time).Seconds() * scale
		} else {
			credit = remainder
		}
		d.Zones[zone-1].Seconds += credit
		d.TotalSeconds += credit
	}

	d.computePercents()
	return d
}

// ZoneSummary is the zone analyzer's result across a set of sessions
type ZoneSummary struct {
	HasData      bool             `json:"has_data"`
	MaxHR        float64          `json:"max_hr"`
	RestingHR    float64          `json:"resting_hr"`
	Distribution ZoneDistribution `json:"distribution"`
	Dominant     Zone             `json:"dominant"`
	Sessions     int              `json:"sessions"` // sessions that contributed HR time
}

// AnalyzeZones totals time in zone across sessions
func AnalyzeZones(records []session.Record, zones HRZones) ZoneSummary {
	summary := ZoneSummary{
		MaxHR:        zones.MaxHR,
		RestingHR:    zones.RestingHR,
		Distribution: newZoneDistribution(),
	}
	for _, rec := range records {
		d := SessionZoneDistribution(rec, zones)
		if !d.HasData() {
			continue
		}
		summary.Distribution.Add(d)
		summary.Sessions++
	}
	summary.HasData = summary.Distribution.HasData()
	summary.Dominant = summary.Distribution.Dominant()
	return summary
}
