package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/analyze"
	"github.com/derickschaefer/pitwall/internal/chart"
	"github.com/derickschaefer/pitwall/internal/model"
)

var (
	setupsSets   []string
	setupsPage   int
	setupsSelect int64
	setupsStats  bool
	setupsChart  bool
)

var setupsCmd = &cobra.Command{
	Use:   "setups <CATEGORY|URL>",
	Short: "Search setups, sorted by fastest lap",
	Long: `Open a category or a setups deep link, apply filter changes in order,
and list matching setups sorted by lap time (fastest first; setups without
a lap time sort last).

Each --set is applied like a user picking a value: later filters are
re-fetched, options that no longer exist are cleared, and a filter left
with exactly one option is picked automatically. An empty value clears the
filter and every filter chosen after it.

The canonical deep link of the final selection is printed above the table.

--stats replaces the listing with lap-time statistics over every result;
--chart draws the current page as bars of the gap to the fastest lap.`,
	Example: `  pitwall setups iracing
  pitwall setups iracing --set class=GT3 --set car="Ferrari 296 GT3"
  pitwall setups '/setups/iracing/ferrari-296/monza?class=GT3' --page 2
  pitwall setups iracing --set class=GT3 --set car= --format json
  pitwall setups iracing --set class=GT3 --stats
  pitwall setups iracing --set track=Monza --chart`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := parseChanges(setupsSets)
		if err != nil {
			return err
		}
		started := time.Now()
		deps, sess, err := openTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := applyChanges(cmd.Context(), sess, changes); err != nil {
			return err
		}
		switch {
		case len(changes) > 0:
			sess.Search(cmd.Context(), true)
		case !sess.Searched():
			sess.Search(cmd.Context(), false)
		}
		if setupsPage > 0 {
			sess.SetPage(setupsPage)
		}
		if cmd.Flags().Changed("select") && !sess.Select(setupsSelect) {
			return fmt.Errorf("setup %d is not in the results", setupsSelect)
		}

		switch {
		case setupsStats:
			sum := analyze.Summarize(sess.Results())
			result := newResult(model.KindTable, "setups --stats", lapSummaryTable(sum), sum.Count)
			result.Warnings = sessionWarnings(sess)
			return emit(cmd, deps, result, started)
		case setupsChart:
			fmt.Fprintln(cmd.OutOrStdout(), sess.Location())
			return chart.Bar(cmd.OutOrStdout(), analyze.Gaps(sess.PageItems()), chart.BarOptions{})
		}

		view := sess.View()
		result := newResult(model.KindSetupPage, "setups", &view, len(view.Items))
		result.Warnings = sessionWarnings(sess)
		return emit(cmd, deps, result, started)
	},
}

func init() {
	rootCmd.AddCommand(setupsCmd)
	setupsCmd.Flags().StringArrayVar(&setupsSets, "set", nil, "filter change dimension=value, applied in order (repeatable)")
	setupsCmd.Flags().IntVar(&setupsPage, "page", 0, "result page to show (clamped to the last page)")
	setupsCmd.Flags().Int64Var(&setupsSelect, "select", 0, "setup id to show in detail (default: fastest)")
	setupsCmd.Flags().BoolVar(&setupsStats, "stats", false, "show lap-time statistics instead of the listing")
	setupsCmd.Flags().BoolVar(&setupsChart, "chart", false, "chart the page as gaps to the fastest lap")
	setupsCmd.MarkFlagsMutuallyExclusive("stats", "chart")
	_ = setupsCmd.RegisterFlagCompletionFunc("set", completeSetFlag)
}
