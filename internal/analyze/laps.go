// Package analyze computes lap-time statistics over search results. All
// functions are pure; no I/O.
package analyze

import (
	"math"
	"slices"

	"github.com/derickschaefer/pitwall/internal/model"
)

// ─── Summary ──────────────────────────────────────────────────────────────────

// LapSummary holds descriptive statistics for the lap times of a result
// set. Times are in milliseconds; setups without a lap time are counted
// in Untimed and excluded from every numeric field.
type LapSummary struct {
	Count   int     `json:"count"`
	Timed   int     `json:"timed"`
	Untimed int     `json:"untimed"`
	Fastest float64 `json:"fastest_ms"`
	Slowest float64 `json:"slowest_ms"`
	Mean    float64 `json:"mean_ms"`
	Std     float64 `json:"std_ms"`
	P25     float64 `json:"p25_ms"`
	Median  float64 `json:"median_ms"`
	P75     float64 `json:"p75_ms"`
	Spread  float64 `json:"spread_ms"` // Slowest - Fastest
}

// Summarize computes lap-time statistics over setups. With no timed
// setups every numeric field is NaN.
func Summarize(setups []model.Setup) LapSummary {
	s := LapSummary{Count: len(setups)}
	times := lapTimes(setups)
	s.Timed = len(times)
	s.Untimed = s.Count - s.Timed
	if len(times) == 0 {
		nan := math.NaN()
		s.Fastest, s.Slowest, s.Mean, s.Std = nan, nan, nan, nan
		s.P25, s.Median, s.P75, s.Spread = nan, nan, nan, nan
		return s
	}

	slices.Sort(times)
	s.Fastest = times[0]
	s.Slowest = times[len(times)-1]
	s.Mean = sumF(times) / float64(len(times))
	s.Std = stddevF(times, s.Mean)
	s.P25 = percentile(times, 25)
	s.Median = percentile(times, 50)
	s.P75 = percentile(times, 75)
	s.Spread = s.Slowest - s.Fastest
	return s
}

// ─── Gaps ─────────────────────────────────────────────────────────────────────

// Gap is one setup's distance to the fastest lap in its result set.
type Gap struct {
	ID    int64   `json:"id"`
	Label string  `json:"label"`
	LapMS float64 `json:"lap_ms"`
	GapMS float64 `json:"gap_ms"`
}

// Gaps returns the gap to the fastest lap for every timed setup, in input
// order. Untimed setups are skipped.
func Gaps(setups []model.Setup) []Gap {
	times := lapTimes(setups)
	if len(times) == 0 {
		return nil
	}
	fastest := slices.Min(times)
	out := make([]Gap, 0, len(times))
	for _, st := range setups {
		if !st.HasLapTime() {
			continue
		}
		out = append(out, Gap{
			ID:    st.ID,
			Label: st.Field("title", "name"),
			LapMS: st.LapTimeMS,
			GapMS: st.LapTimeMS - fastest,
		})
	}
	return out
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func lapTimes(setups []model.Setup) []float64 {
	var out []float64
	for _, st := range setups {
		if st.HasLapTime() {
			out = append(out, st.LapTimeMS)
		}
	}
	return out
}

func sumF(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func stddevF(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vals)-1))
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	idx := p / 100 * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
