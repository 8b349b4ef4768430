package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/derickschaefer/pitwall/internal/analyze"
	"github.com/derickschaefer/pitwall/internal/model"
)

const lapsInput = `{"id": 1, "lap_time": "1:32.000", "title": "Slow"}
{"id": 2, "lap_time_ms": 90000, "title": "Fast"}
{"id": 3, "title": "Untimed"}
`

func TestLapsSortOrdersFastestFirst(t *testing.T) {
	var out bytes.Buffer
	lapsSortCmd.SetIn(strings.NewReader(lapsInput))
	lapsSortCmd.SetOut(&out)
	t.Cleanup(func() { lapsSortCmd.SetIn(nil); lapsSortCmd.SetOut(nil) })

	if err := lapsSortCmd.RunE(lapsSortCmd, nil); err != nil {
		t.Fatalf("laps sort: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out.String())
	}
	for i, want := range []string{"Fast", "Slow", "Untimed"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d: expected %q, got %s", i, want, lines[i])
		}
	}
}

func TestLapsSummaryTable(t *testing.T) {
	var out bytes.Buffer
	lapsSummaryCmd.SetIn(strings.NewReader(lapsInput))
	lapsSummaryCmd.SetOut(&out)
	t.Cleanup(func() { lapsSummaryCmd.SetIn(nil); lapsSummaryCmd.SetOut(nil) })

	if err := lapsSummaryCmd.RunE(lapsSummaryCmd, nil); err != nil {
		t.Fatalf("laps summary: %v", err)
	}
	for _, want := range []string{"1:30.000", "1:32.000", "2.000s"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestLapSummaryTable(t *testing.T) {
	tbl := lapSummaryTable(analyze.Summarize([]model.Setup{
		{ID: 1, LapTimeMS: 90000},
		{ID: 2, LapTimeMS: 92000},
	}))
	got := map[string]string{}
	for _, r := range tbl.Rows {
		got[r[0]] = r[1]
	}
	if got["fastest"] != "1:30.000" || got["spread"] != "2.000s" || got["setups"] != "2" {
		t.Fatalf("unexpected summary rows: %v", got)
	}
}
