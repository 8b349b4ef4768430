package util_test

import (
	"errors"
	"math"
	"testing"

	"github.com/derickschaefer/pitwall/internal/util"
)

func TestParseLapTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1:02.500", 62500},
		{"1:01.000", 61000},
		{"1:01", 61000},
		{"0:59.9", 59900},
		{"2:00.05", 120050},
		{" 1:30.123 ", 90123},
		{"59.999", math.Inf(1)},
		{"1:60.000", math.Inf(1)},
		{"1:02.5000", math.Inf(1)},
		{"", math.Inf(1)},
		{"fast", math.Inf(1)},
		{"99999999999999999999:00.000", math.Inf(1)},
		{"999999999999999:00", math.Inf(1)},
		{"153722867280912:00", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := util.ParseLapTime(tt.in); got != tt.want {
				t.Errorf("ParseLapTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLapTimeValue(t *testing.T) {
	if got := util.LapTimeValue(float64(61234)); got != 61234 {
		t.Errorf("float: got %v", got)
	}
	if got := util.LapTimeValue(int64(500)); got != 500 {
		t.Errorf("int64: got %v", got)
	}
	if got := util.LapTimeValue("1:00.000"); got != 60000 {
		t.Errorf("string: got %v", got)
	}
	if got := util.LapTimeValue(nil); !math.IsInf(got, 1) {
		t.Errorf("nil: expected +Inf, got %v", got)
	}
	if got := util.LapTimeValue(float64(-1)); !math.IsInf(got, 1) {
		t.Errorf("negative: expected +Inf, got %v", got)
	}
}

func TestFormatLapTime(t *testing.T) {
	if got := util.FormatLapTime(62500); got != "1:02.500" {
		t.Errorf("got %q", got)
	}
	if got := util.FormatLapTime(math.Inf(1)); got != "—" {
		t.Errorf("got %q", got)
	}
}

func TestMultiError(t *testing.T) {
	var m util.MultiError
	if m.Err() != nil {
		t.Fatal("empty MultiError should be nil")
	}
	m.Add(nil)
	m.Add(errors.New("a"))
	m.Add(errors.New("b"))
	if m.Err() == nil || m.Error() != "a; b" {
		t.Errorf("got %v", m.Err())
	}
}
