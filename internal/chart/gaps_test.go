package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/derickschaefer/pitwall/internal/analyze"
)

func TestBarScalesToSlowest(t *testing.T) {
	gaps := []analyze.Gap{
		{ID: 812, Label: "Quali", LapMS: 90000, GapMS: 0},
		{ID: 907, Label: "Race", LapMS: 91250, GapMS: 1250},
	}
	var buf bytes.Buffer
	if err := Bar(&buf, gaps, BarOptions{Width: 60}); err != nil {
		t.Fatalf("Bar: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 bars, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Gap to fastest") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "+0.000") || !strings.HasSuffix(lines[1], "▏") {
		t.Fatalf("fastest bar should be a marker: %q", lines[1])
	}
	if !strings.Contains(lines[2], "+1.250") || !strings.Contains(lines[2], "█") {
		t.Fatalf("slowest bar should be filled: %q", lines[2])
	}
	if len([]rune(lines[2])) > 60 {
		t.Fatalf("line exceeds width: %d runes", len([]rune(lines[2])))
	}
}

func TestBarMaxBars(t *testing.T) {
	gaps := []analyze.Gap{
		{ID: 1, LapMS: 1000},
		{ID: 2, LapMS: 2000, GapMS: 1000},
		{ID: 3, LapMS: 3000, GapMS: 2000},
	}
	var buf bytes.Buffer
	if err := Bar(&buf, gaps, BarOptions{Width: 50, MaxBars: 2}); err != nil {
		t.Fatalf("Bar: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("expected 3 lines, got %d", n)
	}
}

func TestBarEmpty(t *testing.T) {
	if err := Bar(&bytes.Buffer{}, nil, BarOptions{}); err == nil {
		t.Fatal("expected error for no gaps")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Ferrari 296 GT3", 8); got != "Ferrari…" {
		t.Fatalf("truncate: got %q", got)
	}
	if got := truncate("BMW", 8); got != "BMW" {
		t.Fatalf("truncate short: got %q", got)
	}
}
