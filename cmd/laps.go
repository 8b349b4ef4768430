package cmd

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/analyze"
	"github.com/derickschaefer/pitwall/internal/browse"
	"github.com/derickschaefer/pitwall/internal/chart"
	"github.com/derickschaefer/pitwall/internal/model"
	"github.com/derickschaefer/pitwall/internal/pipeline"
	"github.com/derickschaefer/pitwall/internal/render"
	"github.com/derickschaefer/pitwall/internal/util"
)

var lapsCmd = &cobra.Command{
	Use:   "laps",
	Short: "Lap-time operators (read setups JSONL from stdin)",
	Long: `Lap-time operators read the JSONL stream written by
'pitwall setups --format jsonl' and print results.

Examples:
  pitwall setups iracing --set class=GT3 --format jsonl | pitwall laps summary
  cat saved.jsonl | pitwall laps sort | pitwall laps chart`,
}

// ─── laps summary ─────────────────────────────────────────────────────────────

var lapsSummaryCmd = &cobra.Command{
	Use:     "summary",
	Short:   "Lap-time statistics: fastest, quartiles, mean, spread",
	Example: `  pitwall setups iracing --format jsonl | pitwall laps summary`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setups, err := readStdinSetups(cmd)
		if err != nil {
			return err
		}
		s := analyze.Summarize(setups)

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		result := newResult(model.KindTable, "laps summary", lapSummaryTable(s), s.Count)
		return render.Render(w, result, resolveFormat(""))
	},
}

// ─── laps sort ────────────────────────────────────────────────────────────────

var lapsSortCmd = &cobra.Command{
	Use:     "sort",
	Short:   "Sort setups by lap time, fastest first (JSONL in, JSONL out)",
	Example: `  cat setups.jsonl | pitwall laps sort > sorted.jsonl`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setups, err := readStdinSetups(cmd)
		if err != nil {
			return err
		}
		browse.SortByLapTime(setups)

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeFn()
		return pipeline.WriteJSONL(w, setups)
	},
}

// ─── laps chart ───────────────────────────────────────────────────────────────

var (
	lapsChartWidth   int
	lapsChartMaxBars int
)

var lapsChartCmd = &cobra.Command{
	Use:     "chart",
	Short:   "Bar chart of each setup's gap to the fastest lap",
	Example: `  pitwall setups iracing --set track=Monza --format jsonl | pitwall laps chart --max-bars 20`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setups, err := readStdinSetups(cmd)
		if err != nil {
			return err
		}
		browse.SortByLapTime(setups)
		return chart.Bar(cmd.OutOrStdout(), analyze.Gaps(setups), chart.BarOptions{
			Width:   lapsChartWidth,
			MaxBars: lapsChartMaxBars,
		})
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(lapsCmd)
	lapsCmd.AddCommand(lapsSummaryCmd)
	lapsCmd.AddCommand(lapsSortCmd)
	lapsCmd.AddCommand(lapsChartCmd)

	lapsChartCmd.Flags().IntVar(&lapsChartWidth, "width", 0, "chart width in columns (default: $COLUMNS or 80)")
	lapsChartCmd.Flags().IntVar(&lapsChartMaxBars, "max-bars", 0, "show at most this many setups, fastest first")
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// lapSummaryTable lays a summary out as metric/value rows.
func lapSummaryTable(s analyze.LapSummary) model.Table {
	return model.Table{
		Headers: []string{"METRIC", "VALUE"},
		Rows: [][]string{
			{"setups", strconv.Itoa(s.Count)},
			{"with lap time", strconv.Itoa(s.Timed)},
			{"without lap time", strconv.Itoa(s.Untimed)},
			{"fastest", util.FormatLapTime(s.Fastest)},
			{"p25", util.FormatLapTime(s.P25)},
			{"median", util.FormatLapTime(s.Median)},
			{"p75", util.FormatLapTime(s.P75)},
			{"slowest", util.FormatLapTime(s.Slowest)},
			{"mean", util.FormatLapTime(s.Mean)},
			{"std dev", formatSeconds(s.Std)},
			{"spread", formatSeconds(s.Spread)},
		},
	}
}

func formatSeconds(ms float64) string {
	if math.IsNaN(ms) {
		return "—"
	}
	return strconv.FormatFloat(ms/1000, 'f', 3, 64) + "s"
}

// readStdinSetups reads the setups stream, warning when stdin is a
// terminal rather than a pipe.
func readStdinSetups(cmd *cobra.Command) ([]model.Setup, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && pipeline.IsTTY(f) && !globalFlags.Quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "reading setups JSONL from the terminal; end input with Ctrl-D")
	}
	return pipeline.ReadSetups(in)
}
