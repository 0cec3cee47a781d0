package diet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/plateful/plateful/internal/model"
	"github.com/plateful/plateful/internal/store"
)

func openTestDB(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "diet.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// clock is a settable wall clock for forcing rollovers.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T, db *store.Store, c *clock, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(c.now)}, opts...)
	s, err := New(db, opts...)
	if err != nil {
		t.Fatalf("creating diet store: %v", err)
	}
	return s
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.Add(9 * time.Hour) // mid-morning
}

// ─── Meals and calories ───────────────────────────────────────────────────────

func TestToggleDrivesCalorieAccumulator(t *testing.T) {
	db := openTestDB(t)
	c := &clock{t: mustDate("2026-08-31")}
	s := newTestStore(t, db, c)

	meals := []model.MealLog{
		{ID: "a", Name: "Breakfast", Calories: 300},
		{ID: "b", Name: "Lunch", Calories: 400},
		{ID: "c", Name: "Dinner", Calories: 500},
	}
	if !s.SetTodayMeals(meals) {
		t.Fatalf("SetTodayMeals failed: %s", s.Err())
	}

	if !s.ToggleMealCompletion("a") || !s.ToggleMealCompletion("c") {
		t.Fatalf("toggle failed: %s", s.Err())
	}
	st := s.TodayStats()
	if st.CaloriesConsumed != 800 {
		t.Fatalf("consumed = %d, want 800", st.CaloriesConsumed)
	}
	if st.MealsCompleted != 2 || st.TotalMeals != 3 {
		t.Fatalf("completed %d/%d, want 2/3", st.MealsCompleted, st.TotalMeals)
	}

	// Untoggle subtracts.
	if !s.ToggleMealCompletion("c") {
		t.Fatalf("untoggle failed: %s", s.Err())
	}
	if got := s.TodayStats().CaloriesConsumed; got != 300 {
		t.Fatalf("consumed after untoggle = %d, want 300", got)
	}
}

func TestToggleStampsCompletionTime(t *testing.T) {
	db := openTestDB(t)
	c := &clock{t: mustDate("2026-08-31")}
	s := newTestStore(t, db, c)

	s.SetTodayMeals([]model.MealLog{{ID: "a", Name: "Oats", Calories: 350}})
	s.ToggleMealCompletion("a")

	m := s.TodayMeals()[0]
	if !m.Completed || m.CompletedAt == nil {
		t.Fatalf("expected completion stamp, got %+v", m)
	}
	if !m.CompletedAt.Equal(c.t) {
		t.Fatalf("CompletedAt = %v, want clock time %v", m.CompletedAt, c.t)
	}

	s.ToggleMealCompletion("a")
	m = s.TodayMeals()[0]
	if m.Completed || m.CompletedAt != nil {
		t.Fatalf("untoggle must clear the stamp, got %+v", m)
	}
}

func TestToggleUnknownMealFails(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")})

	if s.ToggleMealCompletion("nope") {
		t.Fatalf("toggling a missing meal must fail")
	}
	if s.Err() == "" {
		t.Fatalf("expected a display error")
	}
}

func TestAddMealAssignsID(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")})

	if !s.AddMeal(model.MealLog{Name: "Snack", Calories: 150}) {
		t.Fatalf("AddMeal failed: %s", s.Err())
	}
	meals := s.TodayMeals()
	if len(meals) != 1 || meals[0].ID == "" {
		t.Fatalf("expected generated ID, got %+v", meals)
	}
}

func TestCaloriesRemainingFloorsAtZero(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")})

	s.SetGoal(model.GoalLoseWeight) // 1800
	s.SetTodayMeals([]model.MealLog{{ID: "a", Name: "Feast", Calories: 2500}})
	s.ToggleMealCompletion("a")

	st := s.TodayStats()
	if st.CaloriesRemaining != 0 {
		t.Fatalf("remaining = %d, want 0 when over target", st.CaloriesRemaining)
	}
}

// ─── Water ────────────────────────────────────────────────────────────────────

func TestWaterBounds(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")}, WithWaterTarget(3))

	if s.WaterIntake() != 0 {
		t.Fatalf("water should start at 0")
	}
	// RemoveWater at zero is a successful no-op.
	if !s.RemoveWater() || s.WaterIntake() != 0 {
		t.Fatalf("remove at zero must stay at zero")
	}
	for i := 0; i < 5; i++ {
		s.AddWater()
	}
	if s.WaterIntake() != 3 {
		t.Fatalf("water must cap at target: got %d", s.WaterIntake())
	}
	if !s.SetWaterIntake(99) || s.WaterIntake() != 3 {
		t.Fatalf("set must clamp to target, got %d", s.WaterIntake())
	}
	if !s.SetWaterIntake(-5) || s.WaterIntake() != 0 {
		t.Fatalf("set must clamp at zero, got %d", s.WaterIntake())
	}
}

func TestRestoreClampsWaterToLoweredTarget(t *testing.T) {
	db := openTestDB(t)
	if err := db.PutWaterIntake(8); err != nil {
		t.Fatalf("seeding water: %v", err)
	}

	// The target shrank between runs; the restored count must respect it.
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")}, WithWaterTarget(3))
	if got := s.WaterIntake(); got != 3 {
		t.Fatalf("restored water = %d, want clamp to target 3", got)
	}

	st := s.TodayStats()
	if st.WaterIntake > st.WaterTarget {
		t.Fatalf("intake %d exceeds target %d", st.WaterIntake, st.WaterTarget)
	}
}

// ─── Goal ─────────────────────────────────────────────────────────────────────

func TestSetGoalUpdatesTarget(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")})

	if !s.SetGoal(model.GoalGainMuscle) {
		t.Fatalf("SetGoal failed: %s", s.Err())
	}
	goal, target := s.Goal()
	if goal != model.GoalGainMuscle || target != 2800 {
		t.Fatalf("got %s/%d, want gain_muscle/2800", goal, target)
	}

	if s.SetGoal(model.Goal("bulk_forever")) {
		t.Fatalf("unknown goal must fail")
	}
	goal, _ = s.Goal()
	if goal != model.GoalGainMuscle {
		t.Fatalf("failed set must not change goal, got %s", goal)
	}
}

func TestGoalSurvivesRestart(t *testing.T) {
	db := openTestDB(t)
	c := &clock{t: mustDate("2026-08-31")}
	s := newTestStore(t, db, c)
	s.SetGoal(model.GoalLoseWeight)

	s2 := newTestStore(t, db, c)
	goal, target := s2.Goal()
	if goal != model.GoalLoseWeight || target != 1800 {
		t.Fatalf("restart lost goal: %s/%d", goal, target)
	}
}

// ─── Rollover ─────────────────────────────────────────────────────────────────

func TestRolloverSealsPreviousDay(t *testing.T) {
	db := openTestDB(t)
	c := &clock{t: mustDate("2026-08-30")}
	s := newTestStore(t, db, c)

	s.SetTodayMeals([]model.MealLog{
		{ID: "a", Name: "Breakfast", Calories: 600},
		{ID: "b", Name: "Dinner", Calories: 900},
	})
	s.ToggleMealCompletion("a")
	s.ToggleMealCompletion("b")
	s.SetWaterIntake(4)

	// Next mutation after midnight triggers the rollover.
	c.t = mustDate("2026-08-31")
	if !s.AddWater() {
		t.Fatalf("post-midnight action failed: %s", s.Err())
	}

	if s.Date() != "2026-08-31" {
		t.Fatalf("tracked date = %s, want 2026-08-31", s.Date())
	}

	sealed, found, err := db.GetDailyLog("2026-08-30")
	if err != nil || !found {
		t.Fatalf("previous day not sealed: found=%v err=%v", found, err)
	}
	if sealed.TotalCalories != 1500 || sealed.WaterIntake != 4 {
		t.Fatalf("sealed log wrong: %+v", sealed)
	}
	if sealed.GoalsMetPercentage != 100 {
		t.Fatalf("sealed pct = %v, want 100", sealed.GoalsMetPercentage)
	}

	// New day starts fresh: water reset (then the Add), calories zero,
	// completion flags cleared but the plan itself carries over.
	st := s.TodayStats()
	if st.WaterIntake != 1 {
		t.Fatalf("water after rollover+add = %d, want 1", st.WaterIntake)
	}
	if st.CaloriesConsumed != 0 || st.MealsCompleted != 0 {
		t.Fatalf("accumulators must reset: %+v", st)
	}
	if st.TotalMeals != 2 {
		t.Fatalf("meal plan must carry over, got %d meals", st.TotalMeals)
	}
	for _, m := range s.TodayMeals() {
		if m.Completed || m.CompletedAt != nil {
			t.Fatalf("completion flags must clear on rollover: %+v", m)
		}
	}
}

func TestRolloverSkipsMissedDays(t *testing.T) {
	db := openTestDB(t)
	c := &clock{t: mustDate("2026-08-28")}
	s := newTestStore(t, db, c)

	s.SetTodayMeals([]model.MealLog{{ID: "a", Name: "Oats", Calories: 300}})
	s.ToggleMealCompletion("a")

	// Three days pass without the app opening.
	c.t = mustDate("2026-08-31")
	s.AddWater()

	if s.Date() != "2026-08-31" {
		t.Fatalf("tracked date = %s", s.Date())
	}
	// Only the in-progress day gets sealed; the skipped days have no entries.
	logs, err := db.ListDailyLogs()
	if err != nil {
		t.Fatalf("ListDailyLogs: %v", err)
	}
	for _, l := range logs {
		if l.Date == "2026-08-29" || l.Date == "2026-08-30" {
			t.Fatalf("skipped day %s must not be sealed", l.Date)
		}
	}
	if _, found, _ := db.GetDailyLog("2026-08-28"); !found {
		t.Fatalf("in-progress day must be sealed")
	}
}

// ─── Streaks ──────────────────────────────────────────────────────────────────

func qualifyingLog(date string) model.DailyLog {
	return model.DailyLog{
		Date:               date,
		GoalsMetPercentage: 100,
		TotalCalories:      2200,
		TargetCalories:     2200,
	}
}

func failingLog(date string) model.DailyLog {
	return model.DailyLog{
		Date:               date,
		GoalsMetPercentage: 0,
		TotalCalories:      100,
		TargetCalories:     2200,
	}
}

func TestComputeStreakConsecutiveRun(t *testing.T) {
	logs := []model.DailyLog{
		qualifyingLog("2026-08-29"),
		qualifyingLog("2026-08-30"),
		qualifyingLog("2026-08-31"),
	}
	sd := computeStreak(logs)
	if sd.CurrentStreak != 3 || sd.LongestStreak != 3 {
		t.Fatalf("got current=%d longest=%d, want 3/3", sd.CurrentStreak, sd.LongestStreak)
	}
	if sd.LastActiveDate != "2026-08-31" {
		t.Fatalf("LastActiveDate = %s", sd.LastActiveDate)
	}
}

func TestComputeStreakGapBreaksBothPasses(t *testing.T) {
	// Five qualifying days with a one-day hole: 25,26,27 then 29,30.
	logs := []model.DailyLog{
		qualifyingLog("2026-08-25"),
		qualifyingLog("2026-08-26"),
		qualifyingLog("2026-08-27"),
		qualifyingLog("2026-08-29"),
		qualifyingLog("2026-08-30"),
	}
	sd := computeStreak(logs)
	if sd.CurrentStreak != 2 {
		t.Fatalf("current = %d, want 2 (gap ends the run)", sd.CurrentStreak)
	}
	if sd.LongestStreak != 3 {
		t.Fatalf("longest = %d, want 3 (gap splits history runs too)", sd.LongestStreak)
	}
}

func TestComputeStreakNonQualifyingDayResets(t *testing.T) {
	logs := []model.DailyLog{
		qualifyingLog("2026-08-28"),
		qualifyingLog("2026-08-29"),
		failingLog("2026-08-30"),
		qualifyingLog("2026-08-31"),
	}
	sd := computeStreak(logs)
	if sd.CurrentStreak != 1 {
		t.Fatalf("current = %d, want 1", sd.CurrentStreak)
	}
	if sd.LongestStreak != 2 {
		t.Fatalf("longest = %d, want 2", sd.LongestStreak)
	}
	if sd.LastActiveDate != "2026-08-31" {
		t.Fatalf("LastActiveDate = %s", sd.LastActiveDate)
	}
}

func TestQualifiesBoundaries(t *testing.T) {
	// Exactly 60% of meals completed qualifies.
	atPct := model.DailyLog{GoalsMetPercentage: 60, TotalCalories: 0, TargetCalories: 2200}
	if !atPct.Qualifies() {
		t.Fatalf("60%% must qualify")
	}
	below := model.DailyLog{GoalsMetPercentage: 59.9, TotalCalories: 0, TargetCalories: 2200}
	if below.Qualifies() {
		t.Fatalf("59.9%% with low calories must not qualify")
	}
	// Exactly 80% of target calories qualifies regardless of meal percentage.
	atCal := model.DailyLog{GoalsMetPercentage: 0, TotalCalories: 1760, TargetCalories: 2200}
	if !atCal.Qualifies() {
		t.Fatalf("80%% of calorie target must qualify")
	}
	belowCal := model.DailyLog{GoalsMetPercentage: 0, TotalCalories: 1759, TargetCalories: 2200}
	if belowCal.Qualifies() {
		t.Fatalf("just under 80%% must not qualify")
	}
}

func TestComputeStreakEmptyHistory(t *testing.T) {
	sd := computeStreak(nil)
	if sd.CurrentStreak != 0 || sd.LongestStreak != 0 || sd.LastActiveDate != "" {
		t.Fatalf("empty history must yield zero streaks: %+v", sd)
	}
}

// ─── Notifications ────────────────────────────────────────────────────────────

func TestActionsNotifySubscribers(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")})

	calls := 0
	unsub := s.Subscribe(func() { calls++ })
	defer unsub()

	s.AddWater()
	s.AddMeal(model.MealLog{Name: "Snack", Calories: 100})
	s.SetGoal(model.GoalMaintain)

	if calls != 3 {
		t.Fatalf("expected 3 notifications, got %d", calls)
	}
}

func TestSubscriberSeesPersistedState(t *testing.T) {
	db := openTestDB(t)
	s := newTestStore(t, db, &clock{t: mustDate("2026-08-31")})

	var seen int
	unsub := s.Subscribe(func() {
		// Persist-before-notify: the database already has the new value
		// when the callback runs.
		w, _, err := db.GetWaterIntake()
		if err != nil {
			t.Errorf("reading water in subscriber: %v", err)
		}
		seen = w
	})
	defer unsub()

	s.AddWater()
	if seen != 1 {
		t.Fatalf("subscriber saw water=%d, want 1", seen)
	}
}
