package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/model"
)

var plansCmd = &cobra.Command{
	Use:     "plans",
	Short:   "List subscription plans",
	Example: `  pitwall plans`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		started := time.Now()
		plans, err := deps.Client.ListPlans(cmd.Context())
		if err != nil {
			return err
		}
		return emit(cmd, deps, newResult(model.KindPlan, "plans", plans, len(plans)), started)
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
}
