package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plateful/plateful/internal/model"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage saved recipes (requires backend token)",
}

// ─── favorites list ───────────────────────────────────────────────────────────

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		if !deps.Favorites.Refresh(cmd.Context()) {
			return storeErr("loading favorites", deps.Favorites.Err())
		}

		recipes := deps.Favorites.Favorites()
		if len(recipes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved recipes.")
			return nil
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"RECIPE ID", "TITLE", "CUISINE", "KCAL", "COOK"}, func(add func(...string)) {
			for _, r := range recipes {
				add(r.RecipeID, truncate(r.Title, 40), r.Cuisine,
					fmt.Sprintf("%d", r.Nutrition.Calories), r.CookTime)
			}
		})
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d recipes\n", len(recipes))
		return nil
	},
}

// ─── favorites add ────────────────────────────────────────────────────────────

var favAddFlags struct {
	ID         string
	Title      string
	Cuisine    string
	Category   string
	CookTime   string
	Servings   int
	Difficulty string
	Calories   int
}

var favoritesAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Save a recipe to favorites",
	Example: `  plateful favorites add --id rcp_42 --title "Shakshuka" --cuisine "Middle Eastern"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if favAddFlags.ID == "" || favAddFlags.Title == "" {
			return fmt.Errorf("--id and --title are required")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		recipe := model.FavoriteRecipe{
			RecipeID:   favAddFlags.ID,
			Title:      favAddFlags.Title,
			Cuisine:    favAddFlags.Cuisine,
			Category:   favAddFlags.Category,
			CookTime:   favAddFlags.CookTime,
			Servings:   favAddFlags.Servings,
			Difficulty: favAddFlags.Difficulty,
			Nutrition:  model.Nutrition{Calories: favAddFlags.Calories},
		}
		if !deps.Favorites.Add(cmd.Context(), recipe) {
			return storeErr("saving recipe", deps.Favorites.Err())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %q\n", recipe.Title)
		return nil
	},
}

// ─── favorites remove ─────────────────────────────────────────────────────────

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <RECIPE_ID>",
	Short: "Remove a recipe from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		if !deps.Favorites.Remove(cmd.Context(), args[0]) {
			return storeErr("removing recipe", deps.Favorites.Err())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
		return nil
	},
}

// ─── favorites update ─────────────────────────────────────────────────────────

var favUpdateFlags struct {
	Title    string
	Cuisine  string
	Category string
	CookTime string
	Servings int
}

var favoritesUpdateCmd = &cobra.Command{
	Use:     "update <RECIPE_ID>",
	Short:   "Update fields of a saved recipe",
	Example: `  plateful favorites update rcp_42 --title "Shakshuka (spicy)" --servings 4`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.RecipePatch
		if cmd.Flags().Changed("title") {
			patch.Title = &favUpdateFlags.Title
		}
		if cmd.Flags().Changed("cuisine") {
			patch.Cuisine = &favUpdateFlags.Cuisine
		}
		if cmd.Flags().Changed("category") {
			patch.Category = &favUpdateFlags.Category
		}
		if cmd.Flags().Changed("cook-time") {
			patch.CookTime = &favUpdateFlags.CookTime
		}
		if cmd.Flags().Changed("servings") {
			patch.Servings = &favUpdateFlags.Servings
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		if !deps.Favorites.Update(cmd.Context(), args[0], patch) {
			return storeErr("updating recipe", deps.Favorites.Err())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s\n", args[0])
		return nil
	},
}

// ─── favorites check ──────────────────────────────────────────────────────────

var favoritesCheckCmd = &cobra.Command{
	Use:   "check <RECIPE_ID>",
	Short: "Check whether a recipe is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()
		if err := requireRemote(deps); err != nil {
			return err
		}

		if !deps.Favorites.Refresh(cmd.Context()) {
			return storeErr("loading favorites", deps.Favorites.Err())
		}
		if deps.Favorites.IsFavorite(args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is saved\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not saved\n", args[0])
		}
		return nil
	},
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesUpdateCmd)
	favoritesCmd.AddCommand(favoritesCheckCmd)

	af := favoritesAddCmd.Flags()
	af.StringVar(&favAddFlags.ID, "id", "", "recipe id (required)")
	af.StringVar(&favAddFlags.Title, "title", "", "recipe title (required)")
	af.StringVar(&favAddFlags.Cuisine, "cuisine", "", "cuisine")
	af.StringVar(&favAddFlags.Category, "category", "", "category")
	af.StringVar(&favAddFlags.CookTime, "cook-time", "", "cook time, e.g. 35m")
	af.IntVar(&favAddFlags.Servings, "servings", 0, "servings")
	af.StringVar(&favAddFlags.Difficulty, "difficulty", "", "difficulty")
	af.IntVar(&favAddFlags.Calories, "calories", 0, "calories per serving")

	uf := favoritesUpdateCmd.Flags()
	uf.StringVar(&favUpdateFlags.Title, "title", "", "new title")
	uf.StringVar(&favUpdateFlags.Cuisine, "cuisine", "", "new cuisine")
	uf.StringVar(&favUpdateFlags.Category, "category", "", "new category")
	uf.StringVar(&favUpdateFlags.CookTime, "cook-time", "", "new cook time")
	uf.IntVar(&favUpdateFlags.Servings, "servings", 0, "new servings")
}
