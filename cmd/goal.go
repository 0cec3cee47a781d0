package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/model"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Select and inspect the calorie goal",
}

var goalSetCmd = &cobra.Command{
	Use:   "set <GOAL>",
	Short: "Set the calorie goal",
	Long: `Set the calorie goal. Valid goals and their daily targets:

  lose_weight   1800 kcal
  maintain      2200 kcal
  gain_muscle   2800 kcal

The new target applies to today and onward; sealed history keeps the
target that was active when each day was recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if !deps.Diet.SetGoal(model.Goal(args[0])) {
			return storeErr("setting goal", deps.Diet.Err())
		}
		goal, target := deps.Diet.Goal()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Goal set to %s (%d kcal/day)\n", goal, target)
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current goal and target",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		goal, target := deps.Diet.Goal()
		printKVTable(cmd.OutOrStdout(), [][]string{
			{"goal", string(goal)},
			{"daily target", fmt.Sprintf("%d kcal", target)},
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalShowCmd)
}
