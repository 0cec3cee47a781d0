// Package diet implements daily meal and water tracking with midnight
// rollover, persisted history, and streak computation.
//
// Day-boundary semantics: the store tracks one mutable "today" slot. Every
// mutating action first passes through ensureToday, which — when the wall
// clock has crossed into a new date — seals the in-progress day into the
// daily-log history, resets the accumulators, and advances the tracked date.
// The check lives in exactly one place so every action shares identical
// rollover behavior.
//
// Durability: each mutation persists its slice of state before subscribers
// are notified. Failures surface through the boolean returns and Err, never
// as Go errors from the action API.
package diet

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plateful/plateful/internal/model"
	"github.com/plateful/plateful/internal/state"
	"github.com/plateful/plateful/internal/store"
	"github.com/plateful/plateful/internal/util"
)

// DefaultWaterTarget is the daily water goal in glasses.
const DefaultWaterTarget = 8

// Store tracks today's meals, water, and calorie progress, and derives
// streaks from the persisted daily-log history.
type Store struct {
	db       *store.Store
	log      zerolog.Logger
	notifier *state.Notifier
	now      func() time.Time

	mu            sync.Mutex
	date          string // tracked "today", YYYY-MM-DD
	meals         []model.MealLog
	water         int
	waterTarget   int
	goal          model.Goal
	calorieTarget int
	consumed      int // sum of completed meals' calories
	streak        model.StreakData
	errMsg        string
}

// Option configures a Store during construction.
type Option func(*Store)

// WithClock overrides the wall clock. Tests use this to force rollovers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithWaterTarget overrides the daily water goal.
func WithWaterTarget(glasses int) Option {
	return func(s *Store) {
		if glasses > 0 {
			s.waterTarget = glasses
		}
	}
}

// New creates a diet store, restoring today's working state and the streak
// aggregate from the local database.
func New(db *store.Store, opts ...Option) (*Store, error) {
	s := &Store{
		db:          db,
		log:         zerolog.Nop(),
		notifier:    state.NewNotifier("diet"),
		now:         time.Now,
		waterTarget: DefaultWaterTarget,
		goal:        model.GoalMaintain,
	}
	for _, opt := range opts {
		opt(s)
	}

	if g, found, err := db.GetGoal(); err != nil {
		return nil, err
	} else if found && g.Valid() {
		s.goal = g
	}
	s.calorieTarget = model.CalorieTargets[s.goal]

	if d, found, err := db.GetTodayDate(); err != nil {
		return nil, err
	} else if found {
		s.date = d
	} else {
		s.date = util.FormatDate(s.now())
	}

	if meals, found, err := db.GetTodayMeals(); err != nil {
		return nil, err
	} else if found {
		s.meals = meals
	}
	s.consumed = sumCompletedCalories(s.meals)

	if water, found, err := db.GetWaterIntake(); err != nil {
		return nil, err
	} else if found {
		// The target may have shrunk since the count was persisted; the
		// counter invariant is [0, target].
		if water > s.waterTarget {
			water = s.waterTarget
		}
		if water < 0 {
			water = 0
		}
		s.water = water
	}

	if sd, found, err := db.GetStreak(); err != nil {
		return nil, err
	} else if found {
		s.streak = sd
	}

	return s, nil
}

// Subscribe registers fn to run after every state change.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// ─── Mutating Actions ─────────────────────────────────────────────────────────

// ToggleMealCompletion flips one meal's completed flag, stamps or clears its
// completion time, and recomputes the calorie accumulator.
func (s *Store) ToggleMealCompletion(mealID string) bool {
	ok := s.withToday(func() bool {
		for i := range s.meals {
			if s.meals[i].ID != mealID {
				continue
			}
			if s.meals[i].Completed {
				s.meals[i].Completed = false
				s.meals[i].CompletedAt = nil
			} else {
				at := s.now()
				s.meals[i].Completed = true
				s.meals[i].CompletedAt = &at
			}
			s.consumed = sumCompletedCalories(s.meals)
			return s.persistMealsLocked() && s.resealLocked()
		}
		s.errMsg = "meal not found"
		return false
	})
	s.notifier.Notify()
	return ok
}

// AddWater increments the water counter. A no-op once the target is reached.
func (s *Store) AddWater() bool {
	ok := s.withToday(func() bool {
		if s.water >= s.waterTarget {
			return true
		}
		s.water++
		return s.persistWaterLocked() && s.resealLocked()
	})
	s.notifier.Notify()
	return ok
}

// RemoveWater decrements the water counter. A no-op at zero.
func (s *Store) RemoveWater() bool {
	ok := s.withToday(func() bool {
		if s.water <= 0 {
			return true
		}
		s.water--
		return s.persistWaterLocked() && s.resealLocked()
	})
	s.notifier.Notify()
	return ok
}

// SetWaterIntake sets the counter directly, clamped to [0, target].
func (s *Store) SetWaterIntake(glasses int) bool {
	ok := s.withToday(func() bool {
		if glasses < 0 {
			glasses = 0
		}
		if glasses > s.waterTarget {
			glasses = s.waterTarget
		}
		s.water = glasses
		return s.persistWaterLocked() && s.resealLocked()
	})
	s.notifier.Notify()
	return ok
}

// SetTodayMeals replaces today's meal list. Meals without an ID are assigned
// one.
func (s *Store) SetTodayMeals(meals []model.MealLog) bool {
	ok := s.withToday(func() bool {
		s.meals = make([]model.MealLog, len(meals))
		copy(s.meals, meals)
		for i := range s.meals {
			if s.meals[i].ID == "" {
				s.meals[i].ID = uuid.NewString()
			}
		}
		s.consumed = sumCompletedCalories(s.meals)
		return s.persistMealsLocked() && s.resealLocked()
	})
	s.notifier.Notify()
	return ok
}

// AddMeal appends one meal to today's list.
func (s *Store) AddMeal(meal model.MealLog) bool {
	ok := s.withToday(func() bool {
		if meal.ID == "" {
			meal.ID = uuid.NewString()
		}
		s.meals = append(s.meals, meal)
		s.consumed = sumCompletedCalories(s.meals)
		return s.persistMealsLocked() && s.resealLocked()
	})
	s.notifier.Notify()
	return ok
}

// SetGoal selects the calorie goal. Persists the goal only — no reseal, the
// new target applies from the next resealing write.
func (s *Store) SetGoal(goal model.Goal) bool {
	s.mu.Lock()
	if !goal.Valid() {
		s.errMsg = "unknown goal"
		s.mu.Unlock()
		s.notifier.Notify()
		return false
	}
	s.goal = goal
	s.calorieTarget = model.CalorieTargets[goal]
	ok := true
	if err := s.db.PutGoal(goal); err != nil {
		s.errMsg = "could not save goal"
		s.log.Warn().Err(err).Msg("diet: persisting goal failed")
		ok = false
	} else {
		s.errMsg = ""
	}
	s.mu.Unlock()
	s.notifier.Notify()
	return ok
}

// withToday runs fn under the store lock after the rollover check. fn reports
// whether the action (including persistence) succeeded.
func (s *Store) withToday(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureTodayLocked()
	ok := fn()
	if ok {
		s.errMsg = ""
	}
	return ok
}

// ─── Rollover ─────────────────────────────────────────────────────────────────

// ensureTodayLocked seals the in-progress day and opens a fresh slot when the
// wall-clock date has moved past the tracked date. Completion flags are
// cleared so the calorie accumulator invariant (consumed == sum of completed
// meals) holds for the new day.
func (s *Store) ensureTodayLocked() {
	today := util.FormatDate(s.now())
	if s.date == today {
		return
	}

	s.log.Info().Str("from", s.date).Str("to", today).Msg("diet: day rollover")
	s.sealLocked()

	s.date = today
	s.water = 0
	s.consumed = 0
	for i := range s.meals {
		s.meals[i].Completed = false
		s.meals[i].CompletedAt = nil
	}

	var errs util.MultiError
	errs.Add(s.db.PutTodayDate(s.date))
	errs.Add(s.db.PutTodayMeals(s.meals))
	errs.Add(s.db.PutWaterIntake(s.water))
	if err := errs.Err(); err != nil {
		s.errMsg = "could not save day rollover"
		s.log.Warn().Err(err).Msg("diet: persisting rollover failed")
	}
}

// sealLocked writes the tracked day's snapshot into the history and
// recomputes the streak aggregate from the full history.
func (s *Store) sealLocked() bool {
	entry := s.dailyLogLocked()
	if err := s.db.PutDailyLog(entry); err != nil {
		s.errMsg = "could not save daily log"
		s.log.Warn().Err(err).Msg("diet: persisting daily log failed")
		return false
	}

	logs, err := s.db.ListDailyLogs()
	if err != nil {
		s.errMsg = "could not read history"
		s.log.Warn().Err(err).Msg("diet: reading history failed")
		return false
	}
	s.streak = computeStreak(logs)
	if err := s.db.PutStreak(s.streak); err != nil {
		s.errMsg = "could not save streak"
		s.log.Warn().Err(err).Msg("diet: persisting streak failed")
		return false
	}
	return true
}

// resealLocked is sealLocked under its action-facing name: every mutation of
// today's slot rewrites today's history entry.
func (s *Store) resealLocked() bool {
	return s.sealLocked()
}

// dailyLogLocked builds the snapshot for the tracked day.
func (s *Store) dailyLogLocked() model.DailyLog {
	meals := make([]model.MealLog, len(s.meals))
	copy(meals, s.meals)

	completed := 0
	for _, m := range meals {
		if m.Completed {
			completed++
		}
	}
	pct := 0.0
	if len(meals) > 0 {
		pct = float64(completed) / float64(len(meals)) * 100
	}

	return model.DailyLog{
		Date:               s.date,
		Meals:              meals,
		WaterIntake:        s.water,
		TotalCalories:      s.consumed,
		TargetCalories:     s.calorieTarget,
		GoalsMetPercentage: pct,
	}
}

// ─── Persistence helpers ──────────────────────────────────────────────────────

func (s *Store) persistMealsLocked() bool {
	if err := s.db.PutTodayMeals(s.meals); err != nil {
		s.errMsg = "could not save meals"
		s.log.Warn().Err(err).Msg("diet: persisting meals failed")
		return false
	}
	return true
}

func (s *Store) persistWaterLocked() bool {
	if err := s.db.PutWaterIntake(s.water); err != nil {
		s.errMsg = "could not save water intake"
		s.log.Warn().Err(err).Msg("diet: persisting water failed")
		return false
	}
	return true
}

// ─── Reads ────────────────────────────────────────────────────────────────────

// TodayStats derives the current day's read model. Pure — no rollover, no
// persistence.
func (s *Store) TodayStats() model.TodayStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for _, m := range s.meals {
		if m.Completed {
			completed++
		}
	}
	remaining := s.calorieTarget - s.consumed
	if remaining < 0 {
		remaining = 0
	}
	return model.TodayStats{
		MealsCompleted:    completed,
		TotalMeals:        len(s.meals),
		CaloriesConsumed:  s.consumed,
		CaloriesRemaining: remaining,
		WaterIntake:       s.water,
		WaterTarget:       s.waterTarget,
	}
}

// TodayMeals returns a copy of today's meal list.
func (s *Store) TodayMeals() []model.MealLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MealLog, len(s.meals))
	copy(out, s.meals)
	return out
}

// Date returns the tracked "today" date.
func (s *Store) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Goal returns the selected goal and its calorie target.
func (s *Store) Goal() (model.Goal, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goal, s.calorieTarget
}

// WaterIntake returns today's water count.
func (s *Store) WaterIntake() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.water
}

// Streak returns the derived streak aggregate.
func (s *Store) Streak() model.StreakData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// History lists persisted daily logs between from and to (inclusive, ISO
// dates, empty for open ends).
func (s *Store) History(from, to string) ([]model.DailyLog, error) {
	return s.db.ListDailyLogsRange(from, to)
}

// Err returns the display message from the most recent failed action, or ""
// after a success.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ─── Streak computation ───────────────────────────────────────────────────────

// computeStreak recomputes the aggregate from the full history. Both passes
// enforce the same rule: a run continues only through qualifying days exactly
// one calendar day apart. A gap greater than one day, or a non-qualifying
// day, terminates the run.
func computeStreak(logs []model.DailyLog) model.StreakData {
	if len(logs) == 0 {
		return model.StreakData{}
	}

	// Most recent first.
	sorted := make([]model.DailyLog, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	var sd model.StreakData

	// Current streak: walk from the most recent log while days qualify and
	// stay adjacent.
	for i, l := range sorted {
		if !l.Qualifies() {
			break
		}
		if i > 0 && util.DaysBetween(l.Date, sorted[i-1].Date) > 1 {
			break
		}
		sd.CurrentStreak++
	}

	// Longest streak: maximum adjacent qualifying run anywhere in history.
	run := 0
	for i, l := range sorted {
		switch {
		case !l.Qualifies():
			run = 0
		case run > 0 && util.DaysBetween(l.Date, sorted[i-1].Date) == 1:
			run++
		default:
			run = 1
		}
		if run > sd.LongestStreak {
			sd.LongestStreak = run
		}
	}

	for _, l := range sorted {
		if l.Qualifies() {
			sd.LastActiveDate = l.Date
			break
		}
	}
	return sd
}

func sumCompletedCalories(meals []model.MealLog) int {
	total := 0
	for _, m := range meals {
		if m.Completed {
			total += m.Calories
		}
	}
	return total
}
