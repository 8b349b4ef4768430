package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/model"
)

var filtersSets []string

var filtersCmd = &cobra.Command{
	Use:   "filters <CATEGORY|URL>",
	Short: "Show the cascading filter options",
	Long: `Open a category or deep link, apply --set changes, and show every
filter's current options with the selected value marked.

Filters are listed in the category's cascade order. A filter marked
"locked" still shows the value from the deep link until it is confirmed
by a fresh option list.`,
	Example: `  pitwall filters iracing
  pitwall filters iracing --set class=GT3
  pitwall filters '/setups/iracing/ferrari-296?class=GT3' --format md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := parseChanges(filtersSets)
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
		view := sess.View()
		result := newResult(model.KindOptions, "filters", view.Filters, len(view.Filters))
		result.Warnings = sessionWarnings(sess)
		return emit(cmd, deps, result, started)
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
	filtersCmd.Flags().StringArrayVar(&filtersSets, "set", nil, "filter change dimension=value, applied in order (repeatable)")
	_ = filtersCmd.RegisterFlagCompletionFunc("set", completeSetFlag)
}
