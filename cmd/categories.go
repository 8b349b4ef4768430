package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/model"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"games"},
	Short:   "List storefront categories",
	Long: `List every category (game) the storefront sells setups for.

The slug column is what setups URLs and 'pitwall setups <category>' use.`,
	Example: `  pitwall categories
  pitwall categories --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		started := time.Now()
		cats, err := deps.Client.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		return emit(cmd, deps, newResult(model.KindCategory, "categories", cats, len(cats)), started)
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
