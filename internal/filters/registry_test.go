package filters_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/derickschaefer/pitwall/internal/filters"
	"github.com/derickschaefer/pitwall/internal/model"
)

func TestForCategory(t *testing.T) {
	tests := []struct {
		slug string
		rich bool
		size int
	}{
		{"iracing", true, 8},
		{"iRacing", true, 8},
		{" iracing ", true, 8},
		{"acc", false, 4},
		{"", false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := filters.IsRich(tt.slug); got != tt.rich {
				t.Errorf("IsRich(%q) = %v, want %v", tt.slug, got, tt.rich)
			}
			o := filters.ForCategory(tt.slug)
			if len(o) != tt.size {
				t.Errorf("len = %d, want %d", len(o), tt.size)
			}
			if o.Top() != model.DimClass {
				t.Errorf("Top = %q, want class", o.Top())
			}
		})
	}
}

func TestForCategoryReturnsCopy(t *testing.T) {
	o := filters.ForCategory("acc")
	o[0] = model.DimYear
	if filters.ForCategory("acc")[0] != model.DimClass {
		t.Fatal("mutating a returned ordering leaked into the registry")
	}
}

func TestSimpleOrderingHasVersionNotSeason(t *testing.T) {
	o := filters.ForCategory("acc")
	if !o.Contains(model.DimVersion) {
		t.Error("simple ordering should contain version")
	}
	if o.Contains(model.DimSeason) {
		t.Error("simple ordering should not contain season")
	}
}

func TestRank(t *testing.T) {
	o := filters.ForCategory("iracing")
	got := o.Rank([]model.Dimension{model.DimTrack, model.DimVersion, model.DimClass, model.DimWeek})
	want := []model.Dimension{model.DimClass, model.DimTrack, model.DimWeek, model.DimVersion}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex(t *testing.T) {
	o := filters.ForCategory("iracing")
	if o.Index(model.DimCar) != 1 {
		t.Errorf("Index(car) = %d, want 1", o.Index(model.DimCar))
	}
	if o.Index(model.DimVersion) != -1 {
		t.Errorf("Index(version) = %d, want -1", o.Index(model.DimVersion))
	}
}
