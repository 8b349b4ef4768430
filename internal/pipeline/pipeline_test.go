package pipeline

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/derickschaefer/pitwall/internal/model"
)

func TestReadSetups(t *testing.T) {
	in := strings.NewReader(`{"id": 3, "lap_time": "1:31.250", "title": "Race"}
// comment

{"id": 4, "lap_time_ms": 90500}
{"id": 5}
`)
	got, err := ReadSetups(in)
	if err != nil {
		t.Fatalf("ReadSetups: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 setups, got %d", len(got))
	}
	if got[0].ID != 3 || got[0].LapTimeMS != 91250 || got[0].Field("title") != "Race" {
		t.Fatalf("first setup: %+v", got[0])
	}
	if got[1].LapTimeMS != 90500 {
		t.Fatalf("lap_time_ms not used: %v", got[1].LapTimeMS)
	}
	if !math.IsInf(got[2].LapTimeMS, 1) {
		t.Fatalf("missing lap time should be +Inf, got %v", got[2].LapTimeMS)
	}
}

func TestReadSetupsErrors(t *testing.T) {
	cases := map[string]string{
		"invalid JSON": "{nope}\n",
		"no id":        `{"lap_time": "1:30.000"}` + "\n",
		"empty":        "\n\n",
	}
	for name, in := range cases {
		if _, err := ReadSetups(strings.NewReader(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWriteJSONLRoundTrip(t *testing.T) {
	src := []model.Setup{
		{ID: 1, Raw: map[string]any{"id": 1, "lap_time_ms": 95000}},
		{ID: 2},
	}
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, src); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
	back, err := ReadSetups(&buf)
	if err != nil {
		t.Fatalf("ReadSetups: %v", err)
	}
	if back[0].ID != 1 || back[0].LapTimeMS != 95000 || back[1].ID != 2 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
