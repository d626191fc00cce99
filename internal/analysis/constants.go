package analysis

import "math"

const (
	// HR validation thresholds
	MinValidHeartrate = 30
	MaxValidHeartrate = 240

	// Minimum speed for pace calculation (m/s) - filters out stopped time
	MinSpeedForPace = 0.5

	SecondsPerMinute = 60
	MetersPerKm      = 1000.0

	// Grade-adjusted distance: every meter climbed counts as 10 meters flat
	GAPElevationFactor = 10.0

	// Banister TRIMP weighting
	TRIMPCoefficientMale   = 1.92
	TRIMPCoefficientFemale = 1.67

	// IF used for TSS when no heart rate is recorded
	DefaultIntensityFactor = 0.7

	// Drift, coupling and decoupling need this many paired points
	MinCardioSamples = 20
)

// HRZoneThresholds defines the upper bound fraction of heart-rate reserve for
// each zone. Z5 is open ended.
var HRZoneThresholds = []float64{0.6, 0.7, 0.8, 0.9, math.Inf(1)}

// Classification thresholds
const (
	LongRunMinSeconds   = 90 * 60
	LongRunMinMeters    = 15000
	RaceMinPaceCV       = 0.15
	IntervalsMinPaceCV  = 0.20
	FartlekMinPaceCV    = 0.12
	NoHRRecoveryMaxSecs = 30 * 60
)

// Cardiac drift severity tiers, in percent
const (
	DriftExcellentPct = 3.0
	DriftOptimalPct   = 5.0
	DriftModeratePct  = 8.0
)

// HR-pace coupling ratio tiers
const (
	CouplingExcellent = 0.5
	CouplingGood      = 1.0
	CouplingModerate  = 1.5
)

// Aerobic decoupling tiers, absolute percent
const (
	DecouplingExcellentPct = 5.0
	DecouplingGoodPct      = 10.0
)

// Biomechanics thresholds
const (
	OptimalCadenceMin    = 170
	OptimalCadenceMax    = 190
	OptimalCadenceTarget = 180
	LowZoneCadence       = 165
	OverstrideMeters     = 1.4
	ShortStrideMeters    = 0.85
	EconomyExcellent     = 85
	EconomyNeedsWork     = 70

	// Running economy weights, summing to 1
	EconomyWeightCadenceEfficiency  = 0.4
	EconomyWeightCadenceConsistency = 0.3
	EconomyWeightStrideEfficiency   = 0.3

	// Stride efficiency loses this many points per meter outside the band
	StrideEfficiencyPenaltyPerMeter = 200.0
)

// Terrain recommendation thresholds, percent of sessions
const (
	TerrainFlatHeavyPct      = 80.0
	TerrainHillHeavyPct      = 60.0
	TerrainBalancedLowPct    = 20.0
	TerrainBalancedHighPct   = 40.0
	TerrainHillPaceImpactPct = 15.0
)

// Windowed aggregation
const (
	ShortWindowDays   = 7
	MediumWindowDays  = 30
	LongWindowDays    = 365 // minimum span; the long window reaches back to the first session
	MinWindowSessions = 3
)

// Riegel extrapolation
const (
	RiegelExponent = 1.06
	// A whole session counts toward a bucket when within 2% of its distance
	RecordDistanceTolerance = 0.02
)

// GoalImprovements are the suggested improvement fractions over a prediction.
var GoalImprovements = []float64{0.05, 0.10}
