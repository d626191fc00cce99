package analysis

// SessionType is the training intent assigned to a session
type SessionType string

const (
	Recovery  SessionType = "recovery"
	Easy      SessionType = "easy"
	Tempo     SessionType = "tempo"
	Threshold SessionType = "threshold"
	Intervals SessionType = "intervals"
	LongRun   SessionType = "long_run"
	Fartlek   SessionType = "fartlek"
	Race      SessionType = "race"
)

// SessionTypes lists every label in display order
var SessionTypes = []SessionType{Recovery, Easy, Tempo, Threshold, Intervals, LongRun, Fartlek, Race}

var sessionTypeLabels = map[SessionType]string{
	Recovery:  "Recovery",
	Easy:      "Easy",
	Tempo:     "Tempo",
	Threshold: "Threshold",
	Intervals: "Intervals",
	LongRun:   "Long Run",
	Fartlek:   "Fartlek",
	Race:      "Race",
}

// Label returns a human-readable label
func (t SessionType) Label() string {
	if label, ok := sessionTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ClassificationFeatures are the inputs the classifier reads
type ClassificationFeatures struct {
	DurationSeconds float64
	DistanceMeters  float64
	PaceCV          float64 // coefficient of variation of instantaneous pace
	DominantZone    Zone    // NoZone when the session has no heart rate
}

// Features extracts classifier inputs from computed metrics
func (m Metrics) Features() ClassificationFeatures {
	return ClassificationFeatures{
		DurationSeconds: m.DurationSeconds,
		DistanceMeters:  m.DistanceMeters,
		PaceCV:          m.PaceVariability,
		DominantZone:    m.Zones.Dominant(),
	}
}

type classificationRule struct {
	label SessionType
	match func(f ClassificationFeatures) bool
}

// classificationRules are evaluated in order; the first match wins
var classificationRules = []classificationRule{
	{LongRun, func(f ClassificationFeatures) bool {
		return f.DurationSeconds >= LongRunMinSeconds || f.DistanceMeters >= LongRunMinMeters
	}},
	{Race, func(f ClassificationFeatures) bool {
		return f.PaceCV > RaceMinPaceCV && (f.DominantZone == Z4 || f.DominantZone == Z5)
	}},
	{Intervals, func(f ClassificationFeatures) bool { return f.PaceCV > IntervalsMinPaceCV }},
	{Fartlek, func(f ClassificationFeatures) bool { return f.PaceCV > FartlekMinPaceCV }},
	{Recovery, func(f ClassificationFeatures) bool { return f.DominantZone == Z1 }},
	{Easy, func(f ClassificationFeatures) bool { return f.DominantZone == Z2 }},
	{Tempo, func(f ClassificationFeatures) bool { return f.DominantZone == Z3 }},
	{Threshold, func(f ClassificationFeatures) bool {
		return f.DominantZone == Z4 || f.DominantZone == Z5
	}},
	// Without heart rate only duration is left to go on
	{Recovery, func(f ClassificationFeatures) bool {
		return f.DominantZone == NoZone && f.DurationSeconds < NoHRRecoveryMaxSecs
	}},
}

// Classify assigns exactly one label. Sessions matching no rule are Easy.
func Classify(f ClassificationFeatures) SessionType {
	for _, rule := range classificationRules {
		if rule.match(f) {
			return rule.label
		}
	}
	return Easy
}
