package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/model"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Plan and track today's meals",
}

// ─── meal add ─────────────────────────────────────────────────────────────────

var mealAddFlags struct {
	Name     string
	Type     string
	Time     string
	Calories int
	Protein  float64
	Carbs    float64
	Fats     float64
	RecipeID string
}

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a meal to today's plan",
	Example: `  plateful meal add --name "Oatmeal" --type breakfast --calories 350
  plateful meal add --name "Chicken Salad" --calories 520 --protein 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mealAddFlags.Name == "" {
			return fmt.Errorf("--name is required")
		}
		if mealAddFlags.Calories < 0 {
			return fmt.Errorf("--calories must not be negative")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		meal := model.MealLog{
			Name:     mealAddFlags.Name,
			Type:     mealAddFlags.Type,
			Time:     mealAddFlags.Time,
			Calories: mealAddFlags.Calories,
			Protein:  mealAddFlags.Protein,
			Carbs:    mealAddFlags.Carbs,
			Fats:     mealAddFlags.Fats,
		}
		if mealAddFlags.RecipeID != "" {
			meal.HasRecipe = true
			meal.RecipeID = mealAddFlags.RecipeID
		}

		if !deps.Diet.AddMeal(meal) {
			return storeErr("adding meal", deps.Diet.Err())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %q to %s\n", meal.Name, deps.Diet.Date())
		return nil
	},
}

// ─── meal list ────────────────────────────────────────────────────────────────

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		meals := deps.Diet.TodayMeals()
		if len(meals) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No meals planned for today.")
			fmt.Fprintln(cmd.OutOrStdout(), "  Use: plateful meal add --name \"...\" --calories N")
			return nil
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPE", "KCAL", "DONE", "AT"}, func(add func(...string)) {
			for _, m := range meals {
				at := ""
				if m.CompletedAt != nil {
					at = m.CompletedAt.Format("15:04")
				}
				add(shortID(m.ID), truncate(m.Name, 32), m.Type, fmt.Sprintf("%d", m.Calories), checkbox(m.Completed), at)
			}
		})

		stats := deps.Diet.TodayStats()
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d completed  •  %d kcal consumed  •  %s\n",
			stats.MealsCompleted, stats.TotalMeals, stats.CaloriesConsumed, deps.Diet.Date())
		return nil
	},
}

// ─── meal toggle ──────────────────────────────────────────────────────────────

var mealToggleCmd = &cobra.Command{
	Use:   "toggle <ID|NAME>",
	Short: "Toggle a meal's completed state",
	Example: `  plateful meal toggle 1f3a
  plateful meal toggle "Oatmeal"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		id, err := resolveMealID(deps.Diet.TodayMeals(), args[0])
		if err != nil {
			return err
		}
		if !deps.Diet.ToggleMealCompletion(id) {
			return storeErr("toggling meal", deps.Diet.Err())
		}

		stats := deps.Diet.TodayStats()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d/%d meals completed, %d kcal consumed\n",
			stats.MealsCompleted, stats.TotalMeals, stats.CaloriesConsumed)
		return nil
	},
}

// ─── meal clear ───────────────────────────────────────────────────────────────

var mealClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all meals from today's plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if !deps.Diet.SetTodayMeals(nil) {
			return storeErr("clearing meals", deps.Diet.Err())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared today's meals")
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd)
	mealCmd.AddCommand(mealListCmd)
	mealCmd.AddCommand(mealToggleCmd)
	mealCmd.AddCommand(mealClearCmd)

	f := mealAddCmd.Flags()
	f.StringVar(&mealAddFlags.Name, "name", "", "meal name (required)")
	f.StringVar(&mealAddFlags.Type, "type", "snack", "meal type: breakfast|lunch|dinner|snack")
	f.StringVar(&mealAddFlags.Time, "time", "", "planned time, e.g. 08:00")
	f.IntVar(&mealAddFlags.Calories, "calories", 0, "calories")
	f.Float64Var(&mealAddFlags.Protein, "protein", 0, "protein (g)")
	f.Float64Var(&mealAddFlags.Carbs, "carbs", 0, "carbs (g)")
	f.Float64Var(&mealAddFlags.Fats, "fats", 0, "fats (g)")
	f.StringVar(&mealAddFlags.RecipeID, "recipe", "", "linked recipe id")
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// shortID returns the display prefix of a meal ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveMealID matches arg against meal IDs (full or display prefix) and
// then against names (case-insensitive). Ambiguous prefixes are an error.
func resolveMealID(meals []model.MealLog, arg string) (string, error) {
	var matches []string
	for _, m := range meals {
		if m.ID == arg {
			return m.ID, nil
		}
		if strings.HasPrefix(m.ID, arg) {
			matches = append(matches, m.ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous meal id %q matches %d meals", arg, len(matches))
	}
	for _, m := range meals {
		if strings.EqualFold(m.Name, arg) {
			return m.ID, nil
		}
	}
	return "", fmt.Errorf("no meal matching %q (use 'plateful meal list' to see IDs)", arg)
}
