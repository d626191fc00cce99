package analysis

import (
	"math"
	"time"

	"apexrun/internal/session"
)

// PredictionTarget represents a target distance for predictions
type PredictionTarget struct {
	Name           string  // "5K", "10K", "21K", "42K"
	DistanceMeters float64
}

// PredictionTargets defines the standard prediction distances
var PredictionTargets = []PredictionTarget{
	{"5K", Distance5K},
	{"10K", Distance10K},
	{"21K", DistanceHalfMara},
	{"42K", DistanceMarathon},
}

// Goal is a suggested target time at an improvement over the prediction
type Goal struct {
	ImprovementPct  float64 `json:"improvement_pct"`
	DurationSeconds float64 `json:"duration_seconds"`
	PaceSecPerKm    float64 `json:"pace_sec_per_km"`
}

// StandardLevel rates a predicted time against age/gender reference times
type StandardLevel string

const (
	LevelExcellent    StandardLevel = "excellent"
	LevelGood         StandardLevel = "good"
	LevelAverage      StandardLevel = "average"
	LevelBelowAverage StandardLevel = "below_average"
)

// StandardComparison compares a prediction with the reference time for the
// athlete's age group and gender
type StandardComparison struct {
	AgeGroup         string        `json:"age_group"`
	ReferenceSeconds float64       `json:"reference_seconds"`
	DiffPct          float64       `json:"diff_pct"` // negative means faster than reference
	Level            StandardLevel `json:"level"`
}

// RacePrediction represents a predicted race time
type RacePrediction struct {
	Target           string              `json:"target"`
	TargetMeters     float64             `json:"target_meters"`
	PredictedSeconds float64             `json:"predicted_seconds"`
	PaceSecPerKm     float64             `json:"pace_sec_per_km"`
	BaseBucket       string              `json:"base_bucket"`
	BaseMeters       float64             `json:"base_meters"`
	BaseSeconds      float64             `json:"base_seconds"`
	Confidence       string              `json:"confidence"`       // "high", "medium", "low"
	ConfidenceScore  float64             `json:"confidence_score"` // 0.0 to 1.0
	Standard         *StandardComparison `json:"standard,omitempty"`
	Goals            []Goal              `json:"goals"`
}

// Predictions is the predictor's result. InsufficientData is set when there are
// no personal records to extrapolate from.
type Predictions struct {
	InsufficientData bool             `json:"insufficient_data"`
	Races            []RacePrediction `json:"races"`
}

// RiegelTime extrapolates a known performance to another distance:
// T2 = T1 * (D2 / D1)^1.06
func RiegelTime(knownSeconds, knownMeters, targetMeters float64) float64 {
	if knownSeconds <= 0 || knownMeters <= 0 || targetMeters <= 0 {
		return 0
	}
	if knownMeters == targetMeters {
		return knownSeconds
	}
	return knownSeconds * math.Pow(targetMeters/knownMeters, RiegelExponent)
}

// SelectBase chooses the record closest in distance to the target. Equal
// distances go to the longer record.
func SelectBase(prs []PersonalRecord, targetMeters float64) *PersonalRecord {
	var best *PersonalRecord
	bestGap := math.Inf(1)
	for i := range prs {
		pr := &prs[i]
		if pr.DistanceMeters <= 0 || pr.DurationSeconds <= 0 {
			continue
		}
		gap := math.Abs(pr.DistanceMeters - targetMeters)
		if gap < bestGap || (gap == bestGap && best != nil && pr.DistanceMeters > best.DistanceMeters) {
			best = pr
			bestGap = gap
		}
	}
	return best
}

// CalculateConfidence scores a prediction from how far it extrapolates and
// how old the base record is, returning a score from 0.0 to 1.0 and a label
func CalculateConfidence(base PersonalRecord, targetDistance float64, now time.Time) (float64, string) {
	score := 1.0

	// Predictions are less reliable when extrapolating to much longer distances
	ratio := targetDistance / base.DistanceMeters
	if ratio < 1 {
		ratio = 1 / ratio
	}
	switch {
	case ratio > 4:
		score *= 0.7
	case ratio > 2:
		score *= 0.85
	case ratio > 1.5:
		score *= 0.95
	}

	daysSince := now.Sub(base.AchievedAt).Hours() / 24
	switch {
	case daysSince > 180:
		score *= 0.75
	case daysSince > 90:
		score *= 0.9
	case daysSince > 30:
		score *= 0.95
	}

	var label string
	switch {
	case score >= 0.85:
		label = "high"
	case score >= 0.65:
		label = "medium"
	default:
		label = "low"
	}

	return score, label
}

// ageGroupStandards holds reference finish times in minutes for
// 5K, 10K, 21K and 42K, per age group lower bound
type ageGroupStandards struct {
	minAge  int
	label   string
	minutes [4]float64
}

var maleStandards = []ageGroupStandards{
	{60, "60+", [4]float64{33, 69, 152, 320}},
	{50, "50-59", [4]float64{30, 63, 138, 290}},
	{40, "40-49", [4]float64{28, 58, 128, 270}},
	{30, "30-39", [4]float64{26, 54, 120, 255}},
	{0, "20-29", [4]float64{25, 52, 115, 245}},
}

var femaleStandards = []ageGroupStandards{
	{60, "60+", [4]float64{38, 80, 175, 370}},
	{50, "50-59", [4]float64{35, 73, 160, 340}},
	{40, "40-49", [4]float64{32, 67, 147, 310}},
	{30, "30-39", [4]float64{30, 62, 137, 290}},
	{0, "20-29", [4]float64{29, 60, 132, 280}},
}

// CompareToStandard rates predictedSeconds for the target at index
// targetIdx of PredictionTargets. Returns nil when the age is unknown.
func CompareToStandard(athlete session.Athlete, targetIdx int, predictedSeconds float64) *StandardComparison {
	if athlete.Age <= 0 || targetIdx < 0 || targetIdx >= len(PredictionTargets) {
		return nil
	}
	table := maleStandards
	if athlete.IsFemale() {
		table = femaleStandards
	}
	var group ageGroupStandards
	for _, g := range table {
		if athlete.Age >= g.minAge {
			group = g
			break
		}
	}

	ref := group.minutes[targetIdx] * SecondsPerMinute
	diff := (predictedSeconds - ref) / ref * 100

	var level StandardLevel
	switch {
	case diff < -10:
		level = LevelExcellent
	case diff < 0:
		level = LevelGood
	case diff < 10:
		level = LevelAverage
	default:
		level = LevelBelowAverage
	}

	return &StandardComparison{
		AgeGroup:         group.label,
		ReferenceSeconds: ref,
		DiffPct:          diff,
		Level:            level,
	}
}

// GoalsFor returns goal times at each of GoalImprovements below the prediction
func GoalsFor(predictedSeconds, targetMeters float64) []Goal {
	goals := make([]Goal, 0, len(GoalImprovements))
	for _, imp := range GoalImprovements {
		secs := predictedSeconds * (1 - imp)
		goals = append(goals, Goal{
			ImprovementPct:  imp * 100,
			DurationSeconds: secs,
			PaceSecPerKm:    secs / (targetMeters / MetersPerKm),
		})
	}
	return goals
}

// PredictRaces produces a prediction for every target distance from the
// closest personal record. now is used to age the base record.
func PredictRaces(prs []PersonalRecord, athlete session.Athlete, now time.Time) Predictions {
	var out Predictions
	for i, target := range PredictionTargets {
		base := SelectBase(prs, target.DistanceMeters)
		if base == nil {
			continue
		}

		predicted := RiegelTime(base.DurationSeconds, base.DistanceMeters, target.DistanceMeters)
		score, label := CalculateConfidence(*base, target.DistanceMeters, now)

		out.Races = append(out.Races, RacePrediction{
			Target:           target.Name,
			TargetMeters:     target.DistanceMeters,
			PredictedSeconds: predicted,
			PaceSecPerKm:     predicted / (target.DistanceMeters / MetersPerKm),
			BaseBucket:       base.Bucket,
			BaseMeters:       base.DistanceMeters,
			BaseSeconds:      base.DurationSeconds,
			Confidence:       label,
			ConfidenceScore:  math.Round(score*100) / 100,
			Standard:         CompareToStandard(athlete, i, predicted),
			Goals:            GoalsFor(predicted, target.DistanceMeters),
		})
	}
	out.InsufficientData = len(out.Races) == 0
	return out
}

// Race returns the prediction for a target name such as "10K"
func (p Predictions) Race(target string) (RacePrediction, bool) {
	for _, r := range p.Races {
		if r.Target == target {
			return r, true
		}
	}
	return RacePrediction{}, false
}

// GetTargetLabel returns a human-readable label for a target distance
func GetTargetLabel(targetName string) string {
	labels := map[string]string{
		"5K":  "5K",
		"10K": "10K",
		"21K": "Half Marathon",
		"42K": "Marathon",
	}
	if label, ok := labels[targetName]; ok {
		return label
	}
	return targetName
}
