package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's progress at a glance",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		st := deps.Diet.TodayStats()
		goal, target := deps.Diet.Goal()
		streak := deps.Diet.Streak()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Today (%s) — goal: %s\n\n", deps.Diet.Date(), goal)
		printKVTable(out, [][]string{
			{"meals", fmt.Sprintf("%d/%d completed", st.MealsCompleted, st.TotalMeals)},
			{"calories", fmt.Sprintf("%d / %d kcal (%d remaining)", st.CaloriesConsumed, target, st.CaloriesRemaining)},
			{"water", fmt.Sprintf("%d/%d glasses", st.WaterIntake, st.WaterTarget)},
			{"streak", fmt.Sprintf("%d days (best %d)", streak.CurrentStreak, streak.LongestStreak)},
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
