// Package model defines the canonical data types used throughout plateful.
// These types are the single source of truth for everything the sync layer
// mirrors from the backend or persists on device: saved recipes, daily meal
// and water tracking, streaks, and the user profile.
package model

import "time"

// ─── Recipe Types ─────────────────────────────────────────────────────────────

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Notes  string `json:"notes,omitempty"`
}

// Instruction is a single numbered step of a recipe.
type Instruction struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
	Duration    string `json:"duration,omitempty"`
	Tips        string `json:"tips,omitempty"`
}

// Nutrition aggregates per-serving nutrition facts for a recipe.
type Nutrition struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

// Substitution describes a suggested ingredient swap.
type Substitution struct {
	Original   string `json:"original"`
	Substitute string `json:"substitute"`
	Ratio      string `json:"ratio,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// FavoriteRecipe is a saved recipe snapshot mirrored from the backend.
// The backend is the source of truth; the local mirror is a cache that is
// replaced or patched only after a successful round trip.
type FavoriteRecipe struct {
	RecipeID      string         `json:"recipeId"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Image         string         `json:"image,omitempty"`
	CookTime      string         `json:"cookTime,omitempty"`
	PrepTime      string         `json:"prepTime,omitempty"`
	Servings      int            `json:"servings,omitempty"`
	Difficulty    string         `json:"difficulty,omitempty"`
	Cuisine       string         `json:"cuisine,omitempty"`
	Category      string         `json:"category,omitempty"`
	Creator       string         `json:"creator,omitempty"`
	Ingredients   []Ingredient   `json:"ingredients,omitempty"`
	Instructions  []Instruction  `json:"instructions,omitempty"`
	Nutrition     Nutrition      `json:"nutrition"`
	Tips          []string       `json:"tips,omitempty"`
	Substitutions []Substitution `json:"substitutions,omitempty"`
}

// RecipePatch is a partial update to a FavoriteRecipe. Nil fields are left
// untouched when the patch is applied.
type RecipePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Image       *string    `json:"image,omitempty"`
	CookTime    *string    `json:"cookTime,omitempty"`
	PrepTime    *string    `json:"prepTime,omitempty"`
	Servings    *int       `json:"servings,omitempty"`
	Difficulty  *string    `json:"difficulty,omitempty"`
	Cuisine     *string    `json:"cuisine,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
}

// Apply merges the non-nil fields of the patch into the recipe.
func (p RecipePatch) Apply(r *FavoriteRecipe) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Image != nil {
		r.Image = *p.Image
	}
	if p.CookTime != nil {
		r.CookTime = *p.CookTime
	}
	if p.PrepTime != nil {
		r.PrepTime = *p.PrepTime
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	if p.Cuisine != nil {
		r.Cuisine = *p.Cuisine
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Nutrition != nil {
		r.Nutrition = *p.Nutrition
	}
}

// ─── Diet Tracking Types ──────────────────────────────────────────────────────

// MealLog is one planned or consumed meal for a day.
// Invariant: CompletedAt is non-nil if and only if Completed is true.
type MealLog struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"` // breakfast|lunch|dinner|snack
	Time        string     `json:"time,omitempty"`
	Calories    int        `json:"calories"`
	Protein     float64    `json:"protein,omitempty"`
	Carbs       float64    `json:"carbs,omitempty"`
	Fats        float64    `json:"fats,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	HasRecipe   bool       `json:"hasRecipe,omitempty"`
	RecipeID    string     `json:"recipeId,omitempty"`
}

// DailyLog is the per-day snapshot keyed by ISO date string. The entry for
// the current day is rewritten after every mutation; past days are frozen at
// rollover.
type DailyLog struct {
	Date               string    `json:"date"` // YYYY-MM-DD
	Meals              []MealLog `json:"meals"`
	WaterIntake        int       `json:"waterIntake"`
	TotalCalories      int       `json:"totalCalories"` // sum of completed meals
	TargetCalories     int       `json:"targetCalories"`
	GoalsMetPercentage float64   `json:"goalsMetPercentage"` // completed/total meals × 100
}

// Qualifies reports whether the day counts toward a streak: at least 60% of
// meals completed, or at least 80% of the calorie target consumed. Integer
// math keeps the 80% boundary exact.
func (l DailyLog) Qualifies() bool {
	if l.GoalsMetPercentage >= 60 {
		return true
	}
	return l.TargetCalories > 0 && 5*l.TotalCalories >= 4*l.TargetCalories
}

// StreakData is the derived streak aggregate, recomputed in full from the
// daily-log history after every write.
type StreakData struct {
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
	LastActiveDate string `json:"lastActiveDate,omitempty"`
}

// TodayStats is the derived read model for the current day.
type TodayStats struct {
	MealsCompleted    int `json:"mealsCompleted"`
	TotalMeals        int `json:"totalMeals"`
	CaloriesConsumed  int `json:"caloriesConsumed"`
	CaloriesRemaining int `json:"caloriesRemaining"`
	WaterIntake       int `json:"waterIntake"`
	WaterTarget       int `json:"waterTarget"`
}

// ─── Goals ────────────────────────────────────────────────────────────────────

// Goal selects a daily calorie target.
type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalMaintain   Goal = "maintain"
	GoalGainMuscle Goal = "gain_muscle"
)

// CalorieTargets maps each goal to its fixed daily calorie target.
var CalorieTargets = map[Goal]int{
	GoalLoseWeight: 1800,
	GoalMaintain:   2200,
	GoalGainMuscle: 2800,
}

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	_, ok := CalorieTargets[g]
	return ok
}

// ─── Profile Types ────────────────────────────────────────────────────────────

// Subscription holds the optional paid-plan fields attached to a Profile.
type Subscription struct {
	Plan      string `json:"plan,omitempty"`
	Status    string `json:"status,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Profile is the user identity/session projection. A fallback Profile with
// only the auth-derived fields populated is synthesized when the backend
// profile is unavailable; that is a designed degrade path, not an error.
type Profile struct {
	ID                string        `json:"id,omitempty"` // backend-assigned
	UID               string        `json:"uid"`          // auth provider UID
	Email             string        `json:"email"`
	UserName          string        `json:"userName"`
	FullName          string        `json:"fullName,omitempty"`
	Bio               string        `json:"bio,omitempty"`
	ProfileImage      string        `json:"profileImage,omitempty"`
	IsProfileComplete bool          `json:"isProfileComplete"`
	IsChef            bool          `json:"isChef"`
	IsPro             bool          `json:"isPro"`
	Subscription      *Subscription `json:"subscription,omitempty"`
}

// ProfilePatch is a partial update to a Profile. Nil fields are left alone.
type ProfilePatch struct {
	UserName     *string `json:"userName,omitempty"`
	FullName     *string `json:"fullName,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// Apply merges the non-nil fields of the patch into the profile.
func (p ProfilePatch) Apply(dst *Profile) {
	if p.UserName != nil {
		dst.UserName = *p.UserName
	}
	if p.FullName != nil {
		dst.FullName = *p.FullName
	}
	if p.Bio != nil {
		dst.Bio = *p.Bio
	}
	if p.ProfileImage != nil {
		dst.ProfileImage = *p.ProfileImage
	}
}
