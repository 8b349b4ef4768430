package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/derickschaefer/pitwall/internal/model"
)

func TestOutputWriterDefault(t *testing.T) {
	globalFlags.Out = ""
	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter default: %v", err)
	}
	if w != os.Stdout {
		t.Fatalf("expected stdout writer passthrough")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("default closer should be nil error, got: %v", err)
	}
}

func TestOutputWriterFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	globalFlags.Out = p
	t.Cleanup(func() { globalFlags.Out = "" })

	w, closeFn, err := outputWriter(os.Stdout)
	if err != nil {
		t.Fatalf("outputWriter file: %v", err)
	}
	if w == os.Stdout {
		t.Fatalf("expected file writer, got stdout")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("closing output writer: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}

func TestParseIntIDAllowsZero(t *testing.T) {
	got, err := parseIntID("0", "setup ID")
	if err != nil {
		t.Fatalf("expected zero to be valid, got error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected parsed zero, got %d", got)
	}
}

func TestParseIntIDRejectsNegative(t *testing.T) {
	if _, err := parseIntID("-3", "setup ID"); err == nil {
		t.Fatal("expected error for negative id")
	}
}

func TestParseChangesKeepsOrder(t *testing.T) {
	got, err := parseChanges([]string{"class=GT3", "Car = Ferrari 296 GT3", "track="})
	if err != nil {
		t.Fatalf("parseChanges: %v", err)
	}
	want := []change{
		{Dim: model.DimClass, Value: "GT3"},
		{Dim: model.DimCar, Value: "Ferrari 296 GT3"},
		{Dim: model.DimTrack, Value: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("change %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestParseChangesErrors(t *testing.T) {
	for _, in := range []string{"class", "colour=red"} {
		if _, err := parseChanges([]string{in}); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseTarget(t *testing.T) {
	loc, err := parseTarget("iracing")
	if err != nil {
		t.Fatalf("bare category: %v", err)
	}
	if loc.Category != "iracing" || len(loc.Desired) != 0 {
		t.Fatalf("unexpected location for bare category: %+v", loc)
	}

	loc, err = parseTarget("https://shop.example.com/setups/iracing/ferrari-296/monza?class=GT3")
	if err != nil {
		t.Fatalf("absolute URL: %v", err)
	}
	if loc.Desired[model.DimCar] != "ferrari-296" || loc.Desired[model.DimTrack] != "monza" || loc.Desired[model.DimClass] != "GT3" {
		t.Fatalf("unexpected desired values: %+v", loc.Desired)
	}

	if _, err := parseTarget("  "); err == nil {
		t.Fatal("expected error for empty target")
	}
}
