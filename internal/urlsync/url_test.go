package urlsync_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/urlsync"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ferrari 296", "ferrari-296"},
		{"  Monza  ", "monza"},
		{"Spa-Francorchamps -- GP", "spa-francorchamps-gp"},
		{"BMW M4 GT3 (2022)", "bmw-m4-gt3-2022"},
		{"--Already-slug--", "already-slug"},
		{"Nürburgring", "n-rburgring"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := urlsync.Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, urlsync.Slugify(got), "slugify must be idempotent")
		})
	}
}

func TestNameKeys(t *testing.T) {
	got := urlsync.NameKeys("Ferrari%20296")
	want := []string{"ferrari%20296", "ferrari 296", "ferrari-296"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NameKeys mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"gt3"}, urlsync.NameKeys("GT3"))
	assert.Equal(t, []string{"gt3+", "gt3"}, urlsync.NameKeys("GT3+"))
	assert.Empty(t, urlsync.NameKeys("  "))
}

func TestParse(t *testing.T) {
	loc, err := urlsync.Parse("/setups/acc/bmw-m4-gt3/spa?version=1.9")
	require.NoError(t, err)
	assert.Equal(t, "setups", loc.Base)
	assert.Equal(t, "acc", loc.Category)
	assert.Equal(t, "/setups/acc/bmw-m4-gt3/spa?version=1.9", loc.URI)
	want := map[model.Dimension]string{
		model.DimCar:     "bmw-m4-gt3",
		model.DimTrack:   "spa",
		model.DimVersion: "1.9",
	}
	if diff := cmp.Diff(want, loc.Desired); diff != "" {
		t.Errorf("Desired mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCaseInsensitiveQuery(t *testing.T) {
	loc, err := urlsync.Parse("https://example.com/setups/iRacing?CLASS=GT3&Season=2024+S1&unknown=x")
	require.NoError(t, err)
	assert.Equal(t, "iracing", loc.Category)
	assert.Equal(t, "GT3", loc.Desired[model.DimClass])
	assert.Equal(t, "2024 S1", loc.Desired[model.DimSeason])
	assert.Len(t, loc.Desired, 2)
}

func TestParsePathWinsOverQuery(t *testing.T) {
	loc, err := urlsync.Parse("/setups/acc/porsche-911?car=Ferrari&track=Monza")
	require.NoError(t, err)
	assert.Equal(t, "porsche-911", loc.Desired[model.DimCar])
	assert.Equal(t, "Monza", loc.Desired[model.DimTrack])
}

func TestParseRejectsShortPaths(t *testing.T) {
	_, err := urlsync.Parse("/setups")
	assert.True(t, errors.Is(err, urlsync.ErrNotSetupsURL))
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		names map[model.Dimension]string
		want  string
	}{
		{
			name: "car track and class",
			names: map[model.Dimension]string{
				model.DimClass: "GT3",
				model.DimCar:   "Ferrari 296",
				model.DimTrack: "Monza",
			},
			want: "/setups/iracing/ferrari-296/monza?class=GT3",
		},
		{
			name:  "track without car stays in the query",
			names: map[model.Dimension]string{model.DimTrack: "Monza"},
			want:  "/setups/iracing?track=Monza",
		},
		{
			name:  "nothing selected",
			names: map[model.Dimension]string{},
			want:  "/setups/iracing",
		},
		{
			name: "query keys sorted",
			names: map[model.Dimension]string{
				model.DimYear:   "2024",
				model.DimSeason: "Season 2",
				model.DimCar:    "Mazda MX-5",
			},
			want: "/setups/iracing/mazda-mx-5?season=Season+2&year=2024",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := urlsync.Build("", "iracing", tt.names)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	names := map[model.Dimension]string{
		model.DimClass:   "GT3",
		model.DimCar:     "BMW M4 GT3",
		model.DimTrack:   "Spa-Francorchamps",
		model.DimVersion: "1.9",
	}
	u, err := urlsync.Build("setups", "acc", names)
	require.NoError(t, err)
	loc, err := urlsync.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "bmw-m4-gt3", loc.Desired[model.DimCar])
	assert.Equal(t, "spa-francorchamps", loc.Desired[model.DimTrack])
	assert.Equal(t, "GT3", loc.Desired[model.DimClass])
	assert.Equal(t, "1.9", loc.Desired[model.DimVersion])
}

func TestBuildKeepsUnsluggableNamesInQuery(t *testing.T) {
	tests := []struct {
		name      string
		names     map[model.Dimension]string
		wantCar   string
		wantTrack string
	}{
		{
			name:      "car without slug",
			names:     map[model.Dimension]string{model.DimCar: "日本", model.DimTrack: "Monza"},
			wantCar:   "日本",
			wantTrack: "Monza",
		},
		{
			name:      "track without slug",
			names:     map[model.Dimension]string{model.DimCar: "Ferrari 296", model.DimTrack: "鈴鹿"},
			wantCar:   "ferrari-296",
			wantTrack: "鈴鹿",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := urlsync.Build("setups", "acc", tt.names)
			require.NoError(t, err)
			assert.NotContains(t, u, "//")
			loc, err := urlsync.Parse(u)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCar, loc.Desired[model.DimCar])
			assert.Equal(t, tt.wantTrack, loc.Desired[model.DimTrack])
		})
	}
}
