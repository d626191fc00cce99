package session

// Gender selects the TRIMP weighting coefficient and the standards table.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Defaults applied when the athlete leaves a parameter unset.
const (
	DefaultRestingHR = 50
	DefaultMaxHR     = 185
)

// Athlete holds the per-athlete parameters every primitive receives explicitly.
// Zero values mean "unknown".
type Athlete struct {
	MaxHR     float64 `json:"max_hr,omitempty"`
	RestingHR float64 `json:"resting_hr,omitempty"`
	Age       int     `json:"age,omitempty"`
	Gender    Gender  `json:"gender,omitempty"`
}

// Resting returns the resting heart rate, or the default when unset.
func (a Athlete) Resting() float64 {
	if a.RestingHR > 0 {
		return a.RestingHR
	}
	return DefaultRestingHR
}

// EstimateMaxHR resolves the maximum heart rate: configured value, then the
// observed maximum plus a 5 bpm buffer when plausible (> 150), then 220 - age,
// then the default.
func (a Athlete) EstimateMaxHR(observedMax float64) float64 {
	switch {
	case a.MaxHR > 0:
		return a.MaxHR
	case observedMax > 150:
		return observedMax + 5
	case a.Age > 0:
		return float64(220 - a.Age)
	default:
		return DefaultMaxHR
	}
}

// IsFemale reports whether female coefficients apply.
func (a Athlete) IsFemale() bool {
	return a.Gender == Female
}
