// Package chart renders ASCII terminal charts of lap-time gaps.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/derickschaefer/pitwall/internal/analyze"
	"github.com/derickschaefer/pitwall/internal/util"
)

// BarOptions controls gap chart rendering.
type BarOptions struct {
	// Width is the total character width available for the chart.
	// If 0, auto-detects from $COLUMNS, falls back to 80.
	Width int
	// MaxBars caps the number of bars; the slowest are dropped. 0 means
	// no limit.
	MaxBars int
}

// Bar renders one horizontal bar per setup, proportional to its gap to
// the fastest lap. The fastest setup gets a single marker block.
//
// Output example:
//
//	Gap to fastest  1:30.000
//	  812  Quali       1:30.000  +0.000  ▏
//	  907  Race        1:31.250  +1.250  ████████████
func Bar(w io.Writer, gaps []analyze.Gap, opts BarOptions) error {
	if len(gaps) == 0 {
		return fmt.Errorf("chart: no setups with a lap time to render")
	}
	totalWidth := opts.Width
	if totalWidth <= 0 {
		totalWidth = termWidth()
	}
	if opts.MaxBars > 0 && len(gaps) > opts.MaxBars {
		gaps = gaps[:opts.MaxBars]
	}

	fastest, maxGap := gaps[0].LapMS, 0.0
	idWidth, labelWidth := 0, 0
	for _, g := range gaps {
		fastest = math.Min(fastest, g.LapMS)
		maxGap = math.Max(maxGap, g.GapMS)
		idWidth = max(idWidth, len(strconv.FormatInt(g.ID, 10)))
		labelWidth = max(labelWidth, len([]rune(g.Label)))
	}
	labelWidth = min(labelWidth, 24)

	lapWidth := len(util.FormatLapTime(fastest + maxGap))
	gapWidth := len(formatGap(maxGap))

	// id, label, lap, gap and four two-space separators
	barAreaWidth := totalWidth - idWidth - labelWidth - lapWidth - gapWidth - 10
	if barAreaWidth < 4 {
		barAreaWidth = 4
	}
	scale := maxGap
	if scale == 0 {
		scale = 1
	}

	fmt.Fprintf(w, "Gap to fastest  %s\n", util.FormatLapTime(fastest))
	for _, g := range gaps {
		bar := "▏"
		if n := int(math.Round(g.GapMS / scale * float64(barAreaWidth))); n > 0 {
			bar = strings.Repeat("█", min(n, barAreaWidth))
		}
		fmt.Fprintf(w, "  %*d  %-*s  %*s  %*s  %s\n",
			idWidth, g.ID,
			labelWidth, truncate(g.Label, labelWidth),
			lapWidth, util.FormatLapTime(g.LapMS),
			gapWidth, formatGap(g.GapMS),
			bar,
		)
	}
	return nil
}

// formatGap renders a gap in seconds with millisecond precision.
func formatGap(ms float64) string {
	return "+" + strconv.FormatFloat(ms/1000, 'f', 3, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// termWidth returns the terminal width from $COLUMNS, defaulting to 80.
func termWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 20 {
			return n
		}
	}
	return 80
}
