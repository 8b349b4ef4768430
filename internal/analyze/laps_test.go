package analyze

import (
	"math"
	"testing"

	"github.com/derickschaefer/pitwall/internal/model"
)

func setup(id int64, ms float64) model.Setup {
	return model.Setup{ID: id, LapTimeMS: ms, Raw: map[string]any{"title": "s"}}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSummarizeBasic(t *testing.T) {
	s := Summarize([]model.Setup{
		setup(1, 92000),
		setup(2, 90000),
		setup(3, math.Inf(1)),
		setup(4, 94000),
	})
	if s.Count != 4 || s.Timed != 3 || s.Untimed != 1 {
		t.Fatalf("counts: got %+v", s)
	}
	if !approx(s.Fastest, 90000) || !approx(s.Slowest, 94000) {
		t.Fatalf("fastest/slowest: got %v/%v", s.Fastest, s.Slowest)
	}
	if !approx(s.Mean, 92000) || !approx(s.Median, 92000) {
		t.Fatalf("mean/median: got %v/%v", s.Mean, s.Median)
	}
	if !approx(s.Spread, 4000) {
		t.Fatalf("spread: got %v", s.Spread)
	}
	if !approx(s.Std, 2000) {
		t.Fatalf("std: got %v", s.Std)
	}
	if !approx(s.P25, 91000) || !approx(s.P75, 93000) {
		t.Fatalf("quartiles: got %v/%v", s.P25, s.P75)
	}
}

func TestSummarizeNoLapTimes(t *testing.T) {
	s := Summarize([]model.Setup{setup(1, math.Inf(1))})
	if s.Timed != 0 || s.Untimed != 1 {
		t.Fatalf("counts: got %+v", s)
	}
	if !math.IsNaN(s.Fastest) || !math.IsNaN(s.Mean) {
		t.Fatalf("expected NaN stats, got %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || !math.IsNaN(s.Median) {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize([]model.Setup{setup(1, 81234)})
	if s.Std != 0 || !approx(s.Median, 81234) || s.Spread != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestGaps(t *testing.T) {
	gaps := Gaps([]model.Setup{
		setup(1, 91500),
		setup(2, math.Inf(1)),
		setup(3, 90000),
	})
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %d", len(gaps))
	}
	if gaps[0].ID != 1 || !approx(gaps[0].GapMS, 1500) {
		t.Fatalf("first gap: %+v", gaps[0])
	}
	if gaps[1].ID != 3 || gaps[1].GapMS != 0 {
		t.Fatalf("second gap: %+v", gaps[1])
	}
	if Gaps([]model.Setup{setup(1, math.Inf(1))}) != nil {
		t.Fatal("expected nil gaps without lap times")
	}
}
