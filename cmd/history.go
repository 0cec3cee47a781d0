package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/util"
)

var historyFlags struct {
	From string
	To   string
	Last int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List sealed daily logs",
	Example: `  plateful history --last 7
  plateful history --from 2026-08-01 --to 2026-08-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range []string{historyFlags.From, historyFlags.To} {
			if d == "" {
				continue
			}
			if _, err := util.ParseDate(d); err != nil {
				return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", d)
			}
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		logs, err := deps.Diet.History(historyFlags.From, historyFlags.To)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if historyFlags.Last > 0 && len(logs) > historyFlags.Last {
			logs = logs[len(logs)-historyFlags.Last:]
		}
		if len(logs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
			return nil
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"DATE", "MEALS", "DONE %", "KCAL", "TARGET", "WATER", "STREAK DAY"}, func(add func(...string)) {
			for _, l := range logs {
				add(
					l.Date,
					fmt.Sprintf("%d", len(l.Meals)),
					fmt.Sprintf("%.0f", l.GoalsMetPercentage),
					fmt.Sprintf("%d", l.TotalCalories),
					fmt.Sprintf("%d", l.TargetCalories),
					fmt.Sprintf("%d", l.WaterIntake),
					checkbox(l.Qualifies()),
				)
			}
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.From, "from", "", "start date (YYYY-MM-DD, inclusive)")
	f.StringVar(&historyFlags.To, "to", "", "end date (YYYY-MM-DD, inclusive)")
	f.IntVar(&historyFlags.Last, "last", 0, "show only the most recent N days")
}
