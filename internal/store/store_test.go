package store

import (
	"path/filepath"
	"testing"

	"github.com/plateful/plateful/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "plateful.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "plateful.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("opening store with missing parents: %v", err)
	}
	s.Close()
}

func TestGoalRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, found, err := s.GetGoal(); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}
	if err := s.PutGoal(model.GoalGainMuscle); err != nil {
		t.Fatalf("PutGoal: %v", err)
	}
	g, found, err := s.GetGoal()
	if err != nil || !found {
		t.Fatalf("GetGoal: found=%v err=%v", found, err)
	}
	if g != model.GoalGainMuscle {
		t.Fatalf("got goal %q", g)
	}
}

func TestTodayStateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutTodayDate("2026-08-31"); err != nil {
		t.Fatalf("PutTodayDate: %v", err)
	}
	meals := []model.MealLog{
		{ID: "m1", Name: "Oatmeal", Calories: 350, Completed: true},
		{ID: "m2", Name: "Salad", Calories: 420},
	}
	if err := s.PutTodayMeals(meals); err != nil {
		t.Fatalf("PutTodayMeals: %v", err)
	}
	if err := s.PutWaterIntake(5); err != nil {
		t.Fatalf("PutWaterIntake: %v", err)
	}

	d, found, err := s.GetTodayDate()
	if err != nil || !found || d != "2026-08-31" {
		t.Fatalf("GetTodayDate: %q found=%v err=%v", d, found, err)
	}
	got, found, err := s.GetTodayMeals()
	if err != nil || !found {
		t.Fatalf("GetTodayMeals: found=%v err=%v", found, err)
	}
	if len(got) != 2 || got[0].ID != "m1" || !got[0].Completed || got[1].Calories != 420 {
		t.Fatalf("meals did not survive: %+v", got)
	}
	w, found, err := s.GetWaterIntake()
	if err != nil || !found || w != 5 {
		t.Fatalf("GetWaterIntake: %d found=%v err=%v", w, found, err)
	}
}

func TestDailyLogHistoryOrderAndRange(t *testing.T) {
	s := openTestStore(t)

	// Insert out of order; listing must come back ascending by date.
	for _, date := range []string{"2026-08-30", "2026-08-28", "2026-08-29"} {
		if err := s.PutDailyLog(model.DailyLog{Date: date, TotalCalories: 2000}); err != nil {
			t.Fatalf("PutDailyLog(%s): %v", date, err)
		}
	}

	logs, err := s.ListDailyLogs()
	if err != nil {
		t.Fatalf("ListDailyLogs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(logs))
	}
	for i, want := range []string{"2026-08-28", "2026-08-29", "2026-08-30"} {
		if logs[i].Date != want {
			t.Fatalf("position %d: got %s, want %s", i, logs[i].Date, want)
		}
	}

	ranged, err := s.ListDailyLogsRange("2026-08-29", "2026-08-30")
	if err != nil {
		t.Fatalf("ListDailyLogsRange: %v", err)
	}
	if len(ranged) != 2 || ranged[0].Date != "2026-08-29" {
		t.Fatalf("range query wrong: %+v", ranged)
	}

	open, err := s.ListDailyLogsRange("", "2026-08-28")
	if err != nil {
		t.Fatalf("open-ended range: %v", err)
	}
	if len(open) != 1 || open[0].Date != "2026-08-28" {
		t.Fatalf("open-ended range wrong: %+v", open)
	}
}

func TestPutDailyLogOverwritesSameDate(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutDailyLog(model.DailyLog{Date: "2026-08-31", WaterIntake: 2}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := s.PutDailyLog(model.DailyLog{Date: "2026-08-31", WaterIntake: 6}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	l, found, err := s.GetDailyLog("2026-08-31")
	if err != nil || !found {
		t.Fatalf("GetDailyLog: found=%v err=%v", found, err)
	}
	if l.WaterIntake != 6 {
		t.Fatalf("expected overwrite, got water=%d", l.WaterIntake)
	}
	logs, _ := s.ListDailyLogs()
	if len(logs) != 1 {
		t.Fatalf("same date must stay one entry, got %d", len(logs))
	}
}

func TestProfileCacheLifecycle(t *testing.T) {
	s := openTestStore(t)

	if _, found, _ := s.GetProfile(); found {
		t.Fatalf("profile should start absent")
	}
	p := model.Profile{UID: "u1", Email: "dana@example.com", UserName: "dana", IsProfileComplete: true}
	if err := s.PutProfile(p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}
	got, found, err := s.GetProfile()
	if err != nil || !found {
		t.Fatalf("GetProfile: found=%v err=%v", found, err)
	}
	if got.UserName != "dana" || !got.IsProfileComplete {
		t.Fatalf("profile did not survive: %+v", got)
	}
	if err := s.DeleteProfile(); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if _, found, _ := s.GetProfile(); found {
		t.Fatalf("profile should be gone after delete")
	}
}

func TestClearBucketAndStats(t *testing.T) {
	s := openTestStore(t)

	if err := s.PutDailyLog(model.DailyLog{Date: "2026-08-31"}); err != nil {
		t.Fatalf("PutDailyLog: %v", err)
	}
	if err := s.PutStreak(model.StreakData{CurrentStreak: 3}); err != nil {
		t.Fatalf("PutStreak: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	counts := map[string]int{}
	for _, bs := range stats {
		counts[bs.Name] = bs.Count
	}
	if counts["daily_logs"] != 1 || counts["streaks"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	if err := s.ClearBucket("daily_logs"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	logs, _ := s.ListDailyLogs()
	if len(logs) != 0 {
		t.Fatalf("bucket should be empty after clear")
	}
	// Streak bucket untouched.
	if _, found, _ := s.GetStreak(); !found {
		t.Fatalf("clearing one bucket must not touch others")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plateful.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.PutGoal(model.GoalLoseWeight); err != nil {
		t.Fatalf("PutGoal: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	g, found, err := s2.GetGoal()
	if err != nil || !found || g != model.GoalLoseWeight {
		t.Fatalf("goal lost across reopen: %q found=%v err=%v", g, found, err)
	}
}
