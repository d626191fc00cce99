package analysis

import "time"

// WindowKind names an aggregation horizon
type WindowKind string

const (
	ShortTerm  WindowKind = "short"  // 7 days
	MediumTerm WindowKind = "medium" // 30 days
	LongTerm   WindowKind = "long"   // full history, at least a year
)

// Days returns the window length. The long window reaches back further when
// the history is older; Days is then the length of its trend period.
func (k WindowKind) Days() int {
	switch k {
	case ShortTerm:
		return ShortWindowDays
	case MediumTerm:
		return MediumWindowDays
	default:
		return LongWindowDays
	}
}

// WindowKinds lists horizons from shortest to longest
var WindowKinds = []WindowKind{ShortTerm, MediumTerm, LongTerm}

// Trend is the percent change of a window against the preceding window of
// equal length. A nil field means the metric was not available in one of the
// two periods.
type Trend struct {
	PriorSessions  int      `json:"prior_sessions"`
	EIChangePct    *float64 `json:"ei_change_pct,omitempty"`   // positive is better
	PaceChangePct  *float64 `json:"pace_change_pct,omitempty"` // negative is faster
	DistanceChange float64  `json:"distance_change_pct"`
}

// WindowAggregate is the totals for one horizon ending at "now"
type WindowAggregate struct {
	Kind             WindowKind          `json:"kind"`
	Start            time.Time           `json:"start"`
	End              time.Time           `json:"end"`
	Sessions         int                 `json:"sessions"`
	DistanceMeters   float64             `json:"distance_meters"`
	DurationSeconds  float64             `json:"duration_seconds"`
	Load             float64             `json:"load"`                      // summed TRIMP
	AvgEI            *float64            `json:"avg_ei,omitempty"`
	PaceSecPerKm     *float64            `json:"pace_sec_per_km,omitempty"`
	Types            map[SessionType]int `json:"types,omitempty"`
	InsufficientData bool                `json:"insufficient_data"`
	Trend            *Trend              `json:"trend,omitempty"`
}

// DistanceKm returns the window distance in kilometers
func (w WindowAggregate) DistanceKm() float64 {
	return w.DistanceMeters / MetersPerKm
}

// Windows holds all three horizons
type Windows struct {
	Now    time.Time       `json:"now"`
	Short  WindowAggregate `json:"short"`
	Medium WindowAggregate `json:"medium"`
	Long   WindowAggregate `json:"long"`
}

// Get returns the aggregate for a kind
func (w Windows) Get(kind WindowKind) WindowAggregate {
	switch kind {
	case ShortTerm:
		return w.Short
	case MediumTerm:
		return w.Medium
	default:
		return w.Long
	}
}

// ResolveNow returns now, or the latest session start when now is zero
func ResolveNow(metrics []Metrics, now time.Time) time.Time {
	if !now.IsZero() {
		return now
	}
	for _, m := range metrics {
		if m.StartTime.After(now) {
			now = m.StartTime
		}
	}
	return now
}

type windowTotals struct {
	sessions int
	distance float64
	duration float64
	load     float64
	eis      []float64
	types    map[SessionType]int
}

func (t *windowTotals) add(m Metrics, label SessionType) {
	t.sessions++
	t.distance += m.DistanceMeters
	t.duration += m.DurationSeconds
	t.load += m.TRIMP
	if m.EfficiencyIndex != nil {
		t.eis = append(t.eis, *m.EfficiencyIndex)
	}
	if label != "" {
		if t.types == nil {
			t.types = make(map[SessionType]int)
		}
		t.types[label]++
	}
}

func (t windowTotals) avgEI() *float64 {
	if len(t.eis) == 0 {
		return nil
	}
	return ptr(mean(t.eis))
}

func (t windowTotals) pace() *float64 {
	return PaceSecondsPerKm(t.distance, t.duration)
}

func totalsBetween(metrics []Metrics, labels []SessionType, from, to time.Time, inclusiveEnd bool) windowTotals {
	var t windowTotals
	for i, m := range metrics {
		if m.StartTime.Before(from) {
			continue
		}
		if m.StartTime.After(to) || (!inclusiveEnd && m.StartTime.Equal(to)) {
			continue
		}
		var label SessionType
		if i < len(labels) {
			label = labels[i]
		}
		t.add(m, label)
	}
	return t
}

func percentChange(current, prior *float64) *float64 {
	if current == nil || prior == nil || *prior == 0 {
		return nil
	}
	return ptr((*current - *prior) / *prior * 100)
}

// earliestStart returns the first session start, or the zero time
func earliestStart(metrics []Metrics) time.Time {
	var first time.Time
	for _, m := range metrics {
		if first.IsZero() || m.StartTime.Before(first) {
			first = m.StartTime
		}
	}
	return first
}

// AggregateWindow totals sessions with start time in [now - days, now] and,
// when both this window and the one before it hold at least MinWindowSessions
// sessions, computes the trend against [now - 2*days, now - days).
// The long window starts at the earliest session when that is older than
// now - days; its trend still compares the trailing days against the period
// before. labels, when given, is parallel to metrics.
func AggregateWindow(metrics []Metrics, labels []SessionType, kind WindowKind, now time.Time) WindowAggregate {
	days := kind.Days()
	periodStart := now.AddDate(0, 0, -days)
	priorStart := now.AddDate(0, 0, -2*days)

	start := periodStart
	if kind == LongTerm {
		if first := earliestStart(metrics); !first.IsZero() && first.Before(start) {
			start = first
		}
	}

	cur := totalsBetween(metrics, labels, start, now, true)
	agg := WindowAggregate{
		Kind:             kind,
		Start:            start,
		End:              now,
		Sessions:         cur.sessions,
		DistanceMeters:   cur.distance,
		DurationSeconds:  cur.duration,
		Load:             cur.load,
		AvgEI:            cur.avgEI(),
		PaceSecPerKm:     cur.pace(),
		Types:            cur.types,
		InsufficientData: cur.sessions < MinWindowSessions,
	}
	if agg.InsufficientData {
		return agg
	}

	recent := cur
	if start.Before(periodStart) {
		recent = totalsBetween(metrics, nil, periodStart, now, true)
		if recent.sessions < MinWindowSessions {
			return agg
		}
	}

	prior := totalsBetween(metrics, nil, priorStart, periodStart, false)
	if prior.sessions < MinWindowSessions {
		return agg
	}

	trend := &Trend{
		PriorSessions: prior.sessions,
		EIChangePct:   percentChange(recent.avgEI(), prior.avgEI()),
		PaceChangePct: percentChange(recent.pace(), prior.pace()),
	}
	if prior.distance > 0 {
		trend.DistanceChange = (recent.distance - prior.distance) / prior.distance * 100
	}
	agg.Trend = trend
	return agg
}

// AggregateWindows computes the short, medium and long horizons. A zero now
// means the latest session start.
func AggregateWindows(metrics []Metrics, labels []SessionType, now time.Time) Windows {
	now = ResolveNow(metrics, now)
	return Windows{
		Now:    now,
		Short:  AggregateWindow(metrics, labels, ShortTerm, now),
		Medium: AggregateWindow(metrics, labels, MediumTerm, now),
		Long:   AggregateWindow(metrics, labels, LongTerm, now),
	}
}
