package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the goal streak",
	Long: `Show the current and longest goal streaks.

A day counts toward a streak when at least 60% of its planned meals were
completed, or consumed calories reached 80% of the daily target. A streak
continues only through qualifying days on consecutive calendar dates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		sd := deps.Diet.Streak()
		out := cmd.OutOrStdout()
		if sd.CurrentStreak == 0 && sd.LongestStreak == 0 {
			fmt.Fprintln(out, "No streak yet. Complete your meals to start one!")
			return nil
		}
		printKVTable(out, [][]string{
			{"current streak", fmt.Sprintf("%d days", sd.CurrentStreak)},
			{"longest streak", fmt.Sprintf("%d days", sd.LongestStreak)},
			{"last active", sd.LastActiveDate},
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streakCmd)
}
