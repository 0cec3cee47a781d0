package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/app"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Track today's water intake",
	Long: `Track glasses of water drunk today. The counter is bounded: it never
drops below zero and never exceeds the daily target (--water-target).`,
}

var waterAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log one glass of water",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if !deps.Diet.AddWater() {
			return storeErr("logging water", deps.Diet.Err())
		}
		printWaterLine(cmd, deps)
		return nil
	},
}

var waterRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Undo one glass of water",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if !deps.Diet.RemoveWater() {
			return storeErr("removing water", deps.Diet.Err())
		}
		printWaterLine(cmd, deps)
		return nil
	},
}

var waterSetCmd = &cobra.Command{
	Use:   "set <GLASSES>",
	Short: "Set today's water count directly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid glass count %q", args[0])
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if !deps.Diet.SetWaterIntake(n) {
			return storeErr("setting water", deps.Diet.Err())
		}
		printWaterLine(cmd, deps)
		return nil
	},
}

var waterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's water progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		printWaterLine(cmd, deps)
		return nil
	},
}

func printWaterLine(cmd *cobra.Command, deps *app.Deps) {
	stats := deps.Diet.TodayStats()
	filled := strings.Repeat("●", stats.WaterIntake)
	empty := strings.Repeat("○", stats.WaterTarget-stats.WaterIntake)
	fmt.Fprintf(cmd.OutOrStdout(), "Water: %s%s  %d/%d glasses\n",
		filled, empty, stats.WaterIntake, stats.WaterTarget)
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd)
	waterCmd.AddCommand(waterRemoveCmd)
	waterCmd.AddCommand(waterSetCmd)
	waterCmd.AddCommand(waterShowCmd)
}
